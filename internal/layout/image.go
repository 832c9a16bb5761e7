package layout

import (
	"strconv"
	"strings"

	"github.com/gompdf/folio/internal/geometry"
	"github.com/gompdf/folio/internal/parser/html"
	"github.com/gompdf/folio/internal/style"
)

// defaultImageSize is used when neither CSS nor attributes size an image
const defaultImageSize = 40.0

// ImageBox represents an <img> element. Images are placed on their own line
// and never split.
type ImageBox struct {
	Node   *html.Node
	Style  style.ComputedStyle
	Margin Edges

	X      float64
	Y      float64
	Width  float64
	Height float64

	// Src is the raw attribute value, resolved by the renderer
	Src string
}

func newImageBox(node *html.Node, st style.ComputedStyle, containerWidth float64) *ImageBox {
	fs := fontSize(st)
	b := &ImageBox{
		Node:   node,
		Style:  st,
		Margin: edges(st, "margin", "", containerWidth, fs),
	}
	b.Src, _ = node.AttrValue("src")

	b.Width = dimension(node, st, "width", containerWidth, fs)
	b.Height = dimension(node, st, "height", containerWidth, fs)
	switch {
	case b.Width <= 0 && b.Height <= 0:
		b.Width, b.Height = defaultImageSize, defaultImageSize
	case b.Width <= 0:
		b.Width = b.Height
	case b.Height <= 0:
		b.Height = b.Width
	}
	if b.Width > containerWidth && containerWidth > 0 {
		b.Height *= containerWidth / b.Width
		b.Width = containerWidth
	}
	return b
}

// dimension reads a size from CSS first and falls back to the HTML attribute.
func dimension(node *html.Node, st style.ComputedStyle, name string, container, fs float64) float64 {
	if v := st.Get(name); v != "" {
		return parseLength(v, container, fs, 0)
	}
	if v, ok := node.AttrValue(name); ok {
		v = strings.TrimSpace(v)
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		return parseLength(v, container, fs, 0)
	}
	return 0
}

func (b *ImageBox) Bounds() geometry.Rect {
	return geometry.Rect{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height}
}

func (b *ImageBox) BreakUnit() bool               { return true }
func (b *ImageBox) ChildNodes() []geometry.Node   { return nil }
func (b *ImageBox) GetNode() *html.Node           { return b.Node }
func (b *ImageBox) GetStyle() style.ComputedStyle { return b.Style }

func (b *ImageBox) Translate(dx, dy float64) {
	b.X += dx
	b.Y += dy
}
