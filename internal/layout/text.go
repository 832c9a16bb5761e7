package layout

import (
	"github.com/gompdf/folio/internal/geometry"
	"github.com/gompdf/folio/internal/parser/html"
	"github.com/gompdf/folio/internal/style"
)

// TextBox is one run of text on a single line. Y and Height span the whole
// line box; Baseline is where the glyphs sit.
type TextBox struct {
	Style    style.ComputedStyle
	Text     string
	FontSize float64

	X        float64
	Y        float64
	Width    float64
	Height   float64
	Baseline float64
}

func (t *TextBox) Bounds() geometry.Rect {
	return geometry.Rect{X: t.X, Y: t.Y, Width: t.Width, Height: t.Height}
}

// BreakUnit is false; the enclosing block decides where text may break.
func (t *TextBox) BreakUnit() bool             { return false }
func (t *TextBox) ChildNodes() []geometry.Node { return nil }
func (t *TextBox) GetNode() *html.Node         { return nil }

func (t *TextBox) GetStyle() style.ComputedStyle { return t.Style }

func (t *TextBox) Translate(dx, dy float64) {
	t.X += dx
	t.Y += dy
	t.Baseline += dy
}
