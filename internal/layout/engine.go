// Package layout turns a styled HTML tree into positioned boxes. The result
// is a rendered tree in the sense of the geometry package: every box reports
// its bounds and whether it is an atomic break unit.
package layout

import (
	"fmt"
	"log/slog"
	"strings"

	xhtml "golang.org/x/net/html"

	"github.com/gompdf/folio/internal/parser/html"
	"github.com/gompdf/folio/internal/style"
)

// Options represents options for the layout engine
type Options struct {
	// Width is the available content width in points
	Width float64
}

// Engine represents the layout engine
type Engine struct {
	options  Options
	styles   map[*html.Node]style.ComputedStyle
	computed map[*html.Node]style.ComputedStyle
	logger   *slog.Logger
}

// NewEngine creates a new layout engine sized for A4 with 36pt margins
func NewEngine() *Engine {
	return &Engine{
		options: Options{Width: 595.28 - 72},
		logger:  slog.Default(),
	}
}

// SetOptions sets the options for the layout engine
func (e *Engine) SetOptions(options Options) {
	e.options = options
}

// Options returns the current options
func (e *Engine) Options() Options {
	return e.options
}

// SetStyles sets the declared styles produced by the style engine
func (e *Engine) SetStyles(styles map[*html.Node]style.ComputedStyle) {
	e.styles = styles
	e.computed = nil
}

// SetLogger replaces the engine logger
func (e *Engine) SetLogger(l *slog.Logger) {
	if l != nil {
		e.logger = l
	}
}

// Layout lays out the <body> of doc (or the whole tree when it has none) with
// its top-left corner at the origin. The body's own margins are ignored; page
// margins belong to the renderer.
func (e *Engine) Layout(doc *html.Document) (*BlockBox, error) {
	if doc == nil || doc.Root == nil {
		return nil, fmt.Errorf("failed to lay out document: no content")
	}
	e.computed = make(map[*html.Node]style.ComputedStyle)

	body := doc.Root.Find("body")
	if body == nil {
		body = doc.Root
	}
	root := newBlockBox(body, e.styleOf(body), e.options.Width)
	root.Margin = Edges{}
	root.Width = e.options.Width
	e.layoutBlock(root)

	e.logger.Debug("layout: done", "width", root.Width, "height", root.Height, "boxes", countBoxes(root))
	return root, nil
}

// styleOf returns the inherited style of n, with font sizes made absolute.
func (e *Engine) styleOf(n *html.Node) style.ComputedStyle {
	if n == nil {
		return nil
	}
	if n.Type != xhtml.ElementNode {
		return e.styleOf(n.Parent)
	}
	if st, ok := e.computed[n]; ok {
		return st
	}
	parent := e.styleOf(n.Parent)
	own := e.styles[n]
	st := style.Inherit(parent, own)
	if p, ok := own["font-size"]; ok {
		p.Value = fmt.Sprintf("%gpt", resolveFontSize(p.Value, fontSize(parent)))
		st["font-size"] = p
	}
	if e.computed != nil {
		e.computed[n] = st
	}
	return st
}

// skipped elements produce no boxes
var skipped = map[string]bool{
	"head": true, "title": true, "meta": true, "link": true,
	"script": true, "style": true, "template": true, "noscript": true,
}

var blockTags = map[string]bool{
	"html": true, "body": true, "div": true, "p": true, "section": true,
	"article": true, "header": true, "footer": true, "main": true, "nav": true,
	"aside": true, "figure": true, "figcaption": true, "blockquote": true,
	"pre": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "ul": true, "ol": true, "li": true, "dl": true, "dt": true,
	"dd": true, "table": true, "thead": true, "tbody": true, "tfoot": true,
	"tr": true, "hr": true, "address": true, "form": true, "fieldset": true,
	"caption": true,
}

// isBlock reports whether an element generates a block box
func isBlock(tag string, st style.ComputedStyle) bool {
	switch st.Get("display") {
	case "block", "list-item", "table", "table-row", "table-row-group", "flex", "grid":
		return true
	case "inline", "inline-block":
		return false
	}
	return blockTags[tag]
}

// layoutBlock lays out the children of b inside its content box and sets
// b.Height. b's position and width must already be set.
func (e *Engine) layoutBlock(b *BlockBox) {
	if b.Node.IsElement("tr") {
		e.layoutRow(b)
		return
	}
	f := &flow{
		engine: e,
		parent: b,
		x:      b.ContentX(),
		width:  b.ContentWidth(),
		top:    b.ContentY(),
		y:      b.ContentY(),
	}
	for c := b.Node.FirstChild; c != nil; c = c.NextSibling {
		f.add(c)
	}
	f.flushInline()

	content := f.y + f.margin - f.top
	if h := parseLength(b.Style.Get("height"), 0, fontSize(b.Style), 0); h > 0 {
		content = h
	}
	if mh := parseLength(b.Style.Get("min-height"), 0, fontSize(b.Style), 0); content < mh {
		content = mh
	}
	b.Height = content + b.Padding.Vertical() + b.Border.Vertical()
}

// listMarker returns the marker for a list item, or "" for anything else.
func listMarker(li *html.Node, st style.ComputedStyle) string {
	if !li.IsElement("li") {
		return ""
	}
	kind := st.Get("list-style-type")
	if kind == "none" {
		return ""
	}
	if li.Parent.IsElement("ol") || kind == "decimal" {
		n := 1
		for s := li.PrevSibling; s != nil; s = s.PrevSibling {
			if s.IsElement("li") {
				n++
			}
		}
		return fmt.Sprintf("%d.", n)
	}
	return "•"
}

func countBoxes(b Box) int {
	n := 1
	for _, c := range b.ChildNodes() {
		if cb, ok := c.(Box); ok {
			n += countBoxes(cb)
		}
	}
	return n
}

func hasContent(s string) bool {
	return strings.TrimSpace(s) != ""
}
