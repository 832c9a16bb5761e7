package res

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DataURL(t *testing.T) {
	l := NewLoader("")
	tests := []struct {
		ref  string
		mime string
		kind Kind
		data string
	}{
		{"data:text/css,p%20%7B%20color%3A%20red%20%7D", "text/css", KindStylesheet, "p { color: red }"},
		{"data:image/png;base64,aGVsbG8=", "image/png", KindImage, "hello"},
		{"data:,plain", "text/plain", KindOther, "plain"},
	}
	for _, tt := range tests {
		r, err := l.Load(context.Background(), tt.ref)
		if err != nil {
			t.Fatalf("Load(%q): %v", tt.ref, err)
		}
		if r.MimeType != tt.mime || r.Kind != tt.kind || r.String() != tt.data {
			t.Errorf("Load(%q) = %s %s %q", tt.ref, r.MimeType, r.Kind, r.String())
		}
	}
}

func TestLoad_LocalRelativeToBase(t *testing.T) {
	dir := t.TempDir()
	body := filepath.Join(dir, "report.md")
	if err := os.WriteFile(body, []byte("# title"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "report.css"), []byte("h1{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(body)
	r, err := l.Load(context.Background(), "report.css")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if r.Kind != KindStylesheet || r.String() != "h1{}" {
		t.Errorf("got %s %q", r.Kind, r.String())
	}
	md, err := l.Load(context.Background(), body)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if md.Kind != KindMarkdown {
		t.Errorf("kind = %s, want markdown", md.Kind)
	}
}

func TestLoad_CacheAndInvalidate(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.html")
	if err := os.WriteFile(p, []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := NewLoader(dir)
	ctx := context.Background()
	if r, _ := l.Load(ctx, "a.html"); r.String() != "one" {
		t.Fatalf("first load = %q", r.String())
	}
	if err := os.WriteFile(p, []byte("two"), 0o644); err != nil {
		t.Fatal(err)
	}
	if r, _ := l.Load(ctx, "a.html"); r.String() != "one" {
		t.Errorf("cached load = %q, want one", r.String())
	}
	l.Invalidate()
	if r, _ := l.Load(ctx, "a.html"); r.String() != "two" {
		t.Errorf("after Invalidate = %q, want two", r.String())
	}
}

func TestLoad_SearchPaths(t *testing.T) {
	assets := t.TempDir()
	if err := os.WriteFile(filepath.Join(assets, "logo.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := NewLoader(t.TempDir())
	if _, err := l.Load(context.Background(), "logo.png"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	l.AddSearchPath(assets)
	r, err := l.LoadImage(context.Background(), "logo.png")
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if r.Ref != filepath.Join(assets, "logo.png") {
		t.Errorf("ref = %s", r.Ref)
	}
}

func TestLoad_Remote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/assets/site.css":
			w.Header().Set("Content-Type", "text/css; charset=utf-8")
			w.Write([]byte("body{}"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := NewLoader(srv.URL + "/docs/index.html")
	r, err := l.Load(context.Background(), "../assets/site.css")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if r.Kind != KindStylesheet || r.String() != "body{}" {
		t.Errorf("got %s %q", r.Kind, r.String())
	}
	if _, err := l.Load(context.Background(), "missing.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, err := l.LoadImage(context.Background(), "../assets/site.css"); err == nil {
		t.Error("LoadImage accepted a stylesheet")
	}
}
