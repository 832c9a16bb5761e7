// Package res loads the sources a document is assembled from: HTML and
// Markdown bodies, header and footer fragments, stylesheets and images.
// References are local paths, http(s) URLs or data URLs, resolved against a
// base location.
package res

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned when a reference resolves to nothing
var ErrNotFound = errors.New("resource not found")

// Kind classifies a loaded resource
type Kind int

const (
	KindOther Kind = iota
	KindImage
	KindStylesheet
	KindHTML
	KindMarkdown
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindStylesheet:
		return "stylesheet"
	case KindHTML:
		return "html"
	case KindMarkdown:
		return "markdown"
	}
	return "other"
}

// Resource represents a loaded resource
type Resource struct {
	Ref      string
	Kind     Kind
	MimeType string
	Data     []byte
}

// Reader returns a reader over the resource data
func (r *Resource) Reader() *bytes.Reader {
	return bytes.NewReader(r.Data)
}

// String returns the resource data as text
func (r *Resource) String() string {
	return string(r.Data)
}

// Loader resolves and caches resources. It is safe for concurrent use.
type Loader struct {
	// Base is a file path, directory or URL relative references resolve
	// against
	Base string

	client      *http.Client
	searchPaths []string

	mu    sync.RWMutex
	cache map[string]*Resource
}

// NewLoader creates a loader rooted at base
func NewLoader(base string) *Loader {
	return &Loader{
		Base:   base,
		client: &http.Client{Timeout: 30 * time.Second},
		cache:  make(map[string]*Resource),
	}
}

// AddSearchPath adds a directory tried when a local file is missing
func (l *Loader) AddSearchPath(dir string) {
	l.searchPaths = append(l.searchPaths, dir)
}

// Invalidate drops every cached resource. Live sessions call it before a
// reload so edited files are read again.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	l.cache = make(map[string]*Resource)
	l.mu.Unlock()
}

// Load loads a resource
func (l *Loader) Load(ctx context.Context, ref string) (*Resource, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("failed to load resource: %w", ErrNotFound)
	}

	l.mu.RLock()
	if r, ok := l.cache[ref]; ok {
		l.mu.RUnlock()
		return r, nil
	}
	l.mu.RUnlock()

	var (
		r   *Resource
		err error
	)
	if strings.HasPrefix(ref, "data:") {
		r, err = parseDataURL(ref)
	} else {
		var resolved string
		resolved, err = l.Resolve(ref)
		if err == nil {
			if isRemote(resolved) {
				r, err = l.loadRemote(ctx, resolved)
			} else {
				r, err = l.loadLocal(resolved)
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", shorten(ref), err)
	}

	l.mu.Lock()
	l.cache[ref] = r
	l.mu.Unlock()
	return r, nil
}

// LoadImage loads a resource and checks that it is an image
func (l *Loader) LoadImage(ctx context.Context, ref string) (*Resource, error) {
	r, err := l.Load(ctx, ref)
	if err != nil {
		return nil, err
	}
	if r.Kind != KindImage {
		return nil, fmt.Errorf("resource is not an image: %s (%s)", shorten(ref), r.MimeType)
	}
	return r, nil
}

// Resolve returns the absolute path or URL a reference points to
func (l *Loader) Resolve(ref string) (string, error) {
	if isRemote(ref) || filepath.IsAbs(ref) {
		return ref, nil
	}
	if isRemote(l.Base) {
		base, err := url.Parse(l.Base)
		if err != nil {
			return "", err
		}
		rel, err := url.Parse(ref)
		if err != nil {
			return "", err
		}
		return base.ResolveReference(rel).String(), nil
	}
	dir := l.Base
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		dir = filepath.Dir(dir)
	}
	return filepath.Join(dir, ref), nil
}

func isRemote(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// parseDataURL parses an RFC 2397 data URL such as data:image/png;base64,...
func parseDataURL(u string) (*Resource, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(u, "data:"), ",")
	if !ok {
		return nil, errors.New("invalid data URL")
	}

	mimeType := "text/plain"
	isBase64 := false
	for i, part := range strings.Split(meta, ";") {
		part = strings.TrimSpace(part)
		switch {
		case i == 0 && part != "":
			mimeType = part
		case strings.EqualFold(part, "base64"):
			isBase64 = true
		}
	}

	var data []byte
	if isBase64 {
		d, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 data URL: %w", err)
		}
		data = d
	} else if d, err := url.PathUnescape(payload); err == nil {
		data = []byte(d)
	} else {
		data = []byte(payload)
	}

	return &Resource{Ref: u, Data: data, MimeType: mimeType, Kind: kindOf(mimeType, "")}, nil
}

func (l *Loader) loadRemote(ctx context.Context, u string) (*Resource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	mimeType, _, _ := strings.Cut(resp.Header.Get("Content-Type"), ";")
	if mimeType == "" || mimeType == "application/octet-stream" || mimeType == "text/plain" {
		mimeType = mimeFromPath(u)
	}
	return &Resource{Ref: u, Data: data, MimeType: mimeType, Kind: kindOf(mimeType, u)}, nil
}

func (l *Loader) loadLocal(path string) (*Resource, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		for _, dir := range l.searchPaths {
			alt := filepath.Join(dir, filepath.Base(path))
			if d, aerr := os.ReadFile(alt); aerr == nil {
				data, err, path = d, nil, alt
				break
			}
		}
		if err != nil {
			return nil, ErrNotFound
		}
	}
	if err != nil {
		return nil, err
	}
	mimeType := mimeFromPath(path)
	return &Resource{Ref: path, Data: data, MimeType: mimeType, Kind: kindOf(mimeType, path)}, nil
}

func mimeFromPath(p string) string {
	if u, err := url.Parse(p); err == nil && isRemote(p) {
		p = u.Path
	}
	switch strings.ToLower(filepath.Ext(p)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".tiff", ".tif":
		return "image/tiff"
	case ".bmp":
		return "image/bmp"
	case ".css":
		return "text/css"
	case ".html", ".htm", ".xhtml":
		return "text/html"
	case ".md", ".markdown":
		return "text/markdown"
	}
	return "application/octet-stream"
}

func kindOf(mimeType, path string) Kind {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return KindImage
	case mimeType == "text/css":
		return KindStylesheet
	case mimeType == "text/html":
		return KindHTML
	case mimeType == "text/markdown" || mimeType == "text/x-markdown":
		return KindMarkdown
	}
	if path != "" {
		if m := mimeFromPath(path); m != "application/octet-stream" && m != mimeType {
			return kindOf(m, "")
		}
	}
	return KindOther
}

// shorten keeps data URLs out of error messages
func shorten(ref string) string {
	if strings.HasPrefix(ref, "data:") && len(ref) > 32 {
		return ref[:32] + "..."
	}
	return ref
}
