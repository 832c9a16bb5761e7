package layout

import (
	"github.com/gompdf/folio/internal/geometry"
	"github.com/gompdf/folio/internal/parser/html"
	"github.com/gompdf/folio/internal/style"
)

// Box represents a laid-out element, text run or image. Coordinates are in
// points relative to the top-left corner of the laid-out fragment.
type Box interface {
	geometry.Node
	GetNode() *html.Node
	GetStyle() style.ComputedStyle
	// Translate moves the box and everything inside it
	Translate(dx, dy float64)
}

// Edges holds the four sides of a margin, padding or border
type Edges struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// Horizontal returns left + right
func (e Edges) Horizontal() float64 {
	return e.Left + e.Right
}

// Vertical returns top + bottom
func (e Edges) Vertical() float64 {
	return e.Top + e.Bottom
}

var (
	_ Box = (*BlockBox)(nil)
	_ Box = (*TextBox)(nil)
	_ Box = (*ImageBox)(nil)
)
