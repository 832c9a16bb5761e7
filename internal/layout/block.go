package layout

import (
	"github.com/gompdf/folio/internal/geometry"
	"github.com/gompdf/folio/internal/parser/html"
	"github.com/gompdf/folio/internal/style"
)

// BlockBox represents a block-level box. X, Y, Width and Height describe the
// border box; margins sit outside it.
type BlockBox struct {
	Node  *html.Node
	Style style.ComputedStyle

	X      float64
	Y      float64
	Width  float64
	Height float64

	Margin  Edges
	Padding Edges
	Border  Edges

	Children []Box

	// Unit marks the box as an atomic break unit
	Unit bool
	// Marker is the list marker drawn left of a list item ("•", "3.")
	Marker string
}

// newBlockBox resolves the box model of an element against the width of its
// containing block.
func newBlockBox(node *html.Node, st style.ComputedStyle, containerWidth float64) *BlockBox {
	fs := fontSize(st)
	b := &BlockBox{
		Node:    node,
		Style:   st,
		Margin:  edges(st, "margin", "", containerWidth, fs),
		Padding: edges(st, "padding", "", containerWidth, fs),
		Border:  edges(st, "border", "-width", containerWidth, fs),
	}
	b.Unit = st.BreakInsideAvoid()
	if v, ok := node.AttrValue("data-break-unit"); ok && v != "false" {
		b.Unit = true
	}
	return b
}

func (b *BlockBox) Bounds() geometry.Rect {
	return geometry.Rect{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height}
}

func (b *BlockBox) BreakUnit() bool {
	return b.Unit
}

func (b *BlockBox) ChildNodes() []geometry.Node {
	out := make([]geometry.Node, len(b.Children))
	for i, c := range b.Children {
		out[i] = c
	}
	return out
}

func (b *BlockBox) GetNode() *html.Node           { return b.Node }
func (b *BlockBox) GetStyle() style.ComputedStyle { return b.Style }

func (b *BlockBox) Translate(dx, dy float64) {
	b.X += dx
	b.Y += dy
	for _, c := range b.Children {
		c.Translate(dx, dy)
	}
}

// ContentX returns the left edge of the content box
func (b *BlockBox) ContentX() float64 {
	return b.X + b.Border.Left + b.Padding.Left
}

// ContentY returns the top edge of the content box
func (b *BlockBox) ContentY() float64 {
	return b.Y + b.Border.Top + b.Padding.Top
}

// ContentWidth returns the width of the content box
func (b *BlockBox) ContentWidth() float64 {
	return max(0, b.Width-b.Border.Horizontal()-b.Padding.Horizontal())
}
