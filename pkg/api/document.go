package api

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	xhtml "golang.org/x/net/html"

	"github.com/gompdf/folio/internal/parser/html"
	"github.com/gompdf/folio/internal/res"
)

var (
	// ErrEmptyDocument is returned when a document has no body source
	ErrEmptyDocument = errors.New("document has no body")
	// ErrClosed is returned by a Session after Close
	ErrClosed = errors.New("session is closed")
)

// Document is the set of sources a paginated document is built from. The
// header and footer are repeated on every page; the body flows across pages.
type Document struct {
	Body   string
	Header string
	Footer string
	// Stylesheets are extra author stylesheets applied to all three parts
	Stylesheets []string
	// Markdown marks Body as Markdown rather than HTML
	Markdown bool
	// Base resolves relative image and stylesheet references. It may be a
	// file, a directory or a URL.
	Base string
}

// Sources names the files (or URLs) a document is read from. Empty header
// and footer paths mean the document has none.
type Sources struct {
	Body        string
	Header      string
	Footer      string
	Stylesheets []string
	// Markdown forces Markdown for the body regardless of its extension
	Markdown bool
}

// Paths returns every local path in s, for change watching
func (s Sources) Paths() []string {
	var out []string
	for _, p := range append([]string{s.Body, s.Header, s.Footer}, s.Stylesheets...) {
		if p != "" && !strings.Contains(p, "://") {
			out = append(out, p)
		}
	}
	return out
}

// ReadDocument loads the sources into a Document. A body ending in .md or
// .markdown is treated as Markdown.
func ReadDocument(ctx context.Context, src Sources, searchPaths ...string) (Document, error) {
	if src.Body == "" {
		return Document{}, ErrEmptyDocument
	}
	loader := res.NewLoader(src.Body)
	for _, p := range searchPaths {
		loader.AddSearchPath(p)
	}

	read := func(ref string) (string, res.Kind, error) {
		if ref == "" {
			return "", res.KindOther, nil
		}
		r, err := loader.Load(ctx, absolute(ref))
		if err != nil {
			return "", res.KindOther, err
		}
		return r.String(), r.Kind, nil
	}

	doc := Document{Base: absolute(src.Body)}
	var (
		kind res.Kind
		err  error
	)
	if doc.Body, kind, err = read(src.Body); err != nil {
		return Document{}, fmt.Errorf("failed to read body: %w", err)
	}
	doc.Markdown = src.Markdown || kind == res.KindMarkdown
	if doc.Header, _, err = read(src.Header); err != nil {
		return Document{}, fmt.Errorf("failed to read header: %w", err)
	}
	if doc.Footer, _, err = read(src.Footer); err != nil {
		return Document{}, fmt.Errorf("failed to read footer: %w", err)
	}
	for _, s := range src.Stylesheets {
		css, _, err := read(s)
		if err != nil {
			return Document{}, fmt.Errorf("failed to read stylesheet: %w", err)
		}
		doc.Stylesheets = append(doc.Stylesheets, css)
	}
	return doc, nil
}

func absolute(ref string) string {
	if strings.Contains(ref, ":") && !filepath.IsAbs(ref) && len(ref) > 2 && ref[1] != ':' {
		return ref
	}
	if abs, err := filepath.Abs(ref); err == nil {
		return abs
	}
	return ref
}

// collectDocumentStylesheets walks the tree in document order and returns
// the author stylesheets it references: <link rel="stylesheet"> targets and
// inline <style> blocks.
func collectDocumentStylesheets(ctx context.Context, n *html.Node, loader *res.Loader, warn func(msg string, args ...any)) []string {
	var styles []string

	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		if cur == nil {
			return
		}
		if cur.Type == xhtml.ElementNode {
			switch cur.Tag() {
			case "link":
				rel, _ := cur.AttrValue("rel")
				href, _ := cur.AttrValue("href")
				if href != "" && strings.Contains(strings.ToLower(rel), "stylesheet") {
					if r, err := loader.Load(ctx, href); err == nil {
						styles = append(styles, r.String())
					} else {
						warn("api: stylesheet skipped", "href", href, "error", err)
					}
				}
			case "style":
				if css := strings.TrimSpace(cur.Text()); css != "" {
					styles = append(styles, css)
				}
			}
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return styles
}
