package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/gompdf/folio/internal/pagination"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// units returns n break units of the given height
func units(n int, height string) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString(`<div data-break-unit style="height:` + height + `"></div>`)
	}
	return b.String()
}

func testConverter(opts ...Option) *Converter {
	base := []Option{
		WithPageSize(400, 500),
		WithMargins(0, 0, 0, 0),
		WithSafetyBuffer(12),
		WithBreakEpsilon(6),
		WithLogger(quiet),
	}
	return New(append(base, opts...)...)
}

func TestConverter_Paginate(t *testing.T) {
	doc := Document{
		Header: `<div style="height:50pt"></div>`,
		Body:   units(10, "100pt"),
		Footer: `<div style="height:30pt"></div>`,
	}
	res, err := testConverter().Paginate(context.Background(), doc)
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}

	if !res.Plan.Settled {
		t.Fatal("plan not settled")
	}
	if got := res.Plan.Metrics.ContentArea(); got != 408 {
		t.Errorf("content area = %v, want 408", got)
	}
	want := []pagination.PageRange{{Start: 0, End: 406}, {Start: 406, End: 806}, {Start: 806, End: 1000}}
	if len(res.Plan.Ranges) != len(want) {
		t.Fatalf("ranges = %v, want %v", res.Plan.Ranges, want)
	}
	for i := range want {
		if res.Plan.Ranges[i] != want[i] {
			t.Errorf("range %d = %v, want %v", i, res.Plan.Ranges[i], want[i])
		}
	}
	if len(res.Pages) != 3 {
		t.Fatalf("pages = %d, want 3", len(res.Pages))
	}
	if got := res.Pages[1].Offset; got != 50-406 {
		t.Errorf("page 2 offset = %v, want %v", got, 50-406)
	}
	if got := res.Pages[2].Footer.Y; got != 470 {
		t.Errorf("footer y = %v, want 470", got)
	}
}

func TestConverter_NoFrames(t *testing.T) {
	res, err := testConverter().Paginate(context.Background(), Document{Body: units(3, "100pt")})
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if res.Plan.Metrics.HeaderHeight != 0 || res.Plan.Metrics.FooterHeight != 0 {
		t.Errorf("frames measured as %v/%v, want 0/0", res.Plan.Metrics.HeaderHeight, res.Plan.Metrics.FooterHeight)
	}
	if res.Plan.PageCount() != 1 {
		t.Errorf("pages = %d, want 1", res.Plan.PageCount())
	}
}

func TestConverter_EmptyFrameIsAbsent(t *testing.T) {
	doc := Document{Header: `<div></div>`, Body: units(1, "10pt")}
	res, err := testConverter().Paginate(context.Background(), doc)
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if !res.Plan.Settled {
		t.Error("an empty header kept the plan unsettled")
	}
}

func TestConverter_EmptyBody(t *testing.T) {
	_, err := testConverter().Paginate(context.Background(), Document{})
	if !errors.Is(err, ErrEmptyDocument) {
		t.Errorf("err = %v, want ErrEmptyDocument", err)
	}
}

func TestConverter_MarginsTooLarge(t *testing.T) {
	c := testConverter(WithMargins(300, 0, 300, 0))
	if _, err := c.Paginate(context.Background(), Document{Body: "<p>x</p>"}); err == nil {
		t.Error("expected an error for margins larger than the page")
	}
}

func TestConverter_Frame(t *testing.T) {
	tests := []struct {
		name        string
		orientation PageOrientation
		w, h        float64
		wantW       float64
	}{
		{"portrait keeps", PageOrientationPortrait, 400, 500, 400},
		{"portrait swaps", PageOrientationPortrait, 500, 400, 400},
		{"landscape swaps", PageOrientationLandscape, 400, 500, 500},
		{"empty is portrait", "", 500, 400, 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testConverter(WithPageSize(tt.w, tt.h), WithPageOrientation(tt.orientation))
			if got := c.Frame().PageWidth; got != tt.wantW {
				t.Errorf("width = %v, want %v", got, tt.wantW)
			}
		})
	}
}

func TestConverter_StylesheetsApplyToAllParts(t *testing.T) {
	doc := Document{
		Header:      `<div class="band"></div>`,
		Body:        `<style>.row { height: 40pt }</style><div class="row"></div>`,
		Stylesheets: []string{`.band { height: 25pt }`},
	}
	res, err := testConverter().Paginate(context.Background(), doc)
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if got := res.Plan.Metrics.HeaderHeight; got != 25 {
		t.Errorf("header height = %v, want 25", got)
	}
	if got := res.Plan.TotalHeight(); got != 40 {
		t.Errorf("body height = %v, want 40", got)
	}
}

func TestConverter_Markdown(t *testing.T) {
	res, err := testConverter().Paginate(context.Background(), Document{
		Body:     "# Title\n\nSome text.\n",
		Markdown: true,
	})
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if res.Plan.TotalHeight() <= 0 {
		t.Error("markdown body has no height")
	}
}

func TestConverter_Convert(t *testing.T) {
	c := testConverter(WithValidate(true), WithTitle("Report"))
	var buf bytes.Buffer
	res, err := c.Convert(context.Background(), Document{
		Header: `<p>Header</p>`,
		Body:   units(10, "100pt"),
		Footer: `<p>Footer</p>`,
	}, &buf)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	pdfCtx, err := pdfapi.ReadValidateAndOptimize(bytes.NewReader(buf.Bytes()), model.NewDefaultConfiguration())
	if err != nil {
		t.Fatalf("read PDF: %v", err)
	}
	if pdfCtx.PageCount != res.Plan.PageCount() {
		t.Errorf("PDF pages = %d, plan pages = %d", pdfCtx.PageCount, res.Plan.PageCount())
	}
}

func TestConverter_ConvertCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	if _, err := testConverter().Convert(ctx, Document{Body: "<p>x</p>"}, &buf); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestConverter_ConvertFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}
	src := Sources{
		Body:        write("report.md", "# Report\n\nBody text.\n"),
		Footer:      write("footer.html", `<p>page footer</p>`),
		Stylesheets: []string{write("extra.css", `p { margin: 0 }`)},
	}
	out := filepath.Join(dir, "out.pdf")

	res, err := testConverter().ConvertFile(context.Background(), src, out)
	if err != nil {
		t.Fatalf("ConvertFile: %v", err)
	}
	if res.Plan.Metrics.FooterHeight <= 0 {
		t.Error("footer was not measured")
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if err := Validate(data); err != nil {
		t.Error(err)
	}
}

func TestConverter_ConvertBytes(t *testing.T) {
	data, err := testConverter().ConvertBytes(context.Background(), []byte("<h1>Hello</h1>"))
	if err != nil {
		t.Fatalf("ConvertBytes: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("output does not start with a PDF header: %q", data[:min(8, len(data))])
	}
}

func TestValidate_Rejects(t *testing.T) {
	if err := Validate([]byte("not a pdf")); err == nil {
		t.Error("expected an error")
	}
}

func TestSources_Paths(t *testing.T) {
	src := Sources{Body: "a.html", Footer: "f.html", Stylesheets: []string{"https://x/y.css", "s.css"}}
	got := src.Paths()
	want := []string{"a.html", "f.html", "s.css"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Paths() = %v, want %v", got, want)
	}
}
