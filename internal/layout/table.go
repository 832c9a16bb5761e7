package layout

import (
	"strconv"
	"strings"

	"github.com/gompdf/folio/internal/parser/html"
)

// colSpec is one cell's contribution to the column grid
type colSpec struct {
	width float64
	span  int
}

// layoutRow places the <td>/<th> children of a row side by side and stretches
// them to the tallest cell.
func (e *Engine) layoutRow(row *BlockBox) {
	cells := e.cellsOf(row.Node)
	widths := e.columnWidths(row.Node, cells, row.ContentWidth())

	x, top, h := row.ContentX(), row.ContentY(), 0.0
	boxes := make([]*BlockBox, 0, len(cells))
	for i, c := range cells {
		cb := newBlockBox(c, e.styleOf(c), row.ContentWidth())
		cb.Margin = Edges{}
		cb.X, cb.Y, cb.Width = x, top, widths[i]
		e.layoutBlock(cb)
		row.Children = append(row.Children, cb)
		boxes = append(boxes, cb)
		x += widths[i]
		h = max(h, cb.Height)
	}
	for _, cb := range boxes {
		cb.Height = h
	}
	row.Height = h + row.Padding.Vertical() + row.Border.Vertical()
}

func (e *Engine) cellsOf(tr *html.Node) []*html.Node {
	var cells []*html.Node
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if (c.IsElement("td") || c.IsElement("th")) && e.styleOf(c).Get("display") != "none" {
			cells = append(cells, c)
		}
	}
	return cells
}

// columnWidths returns the width of each cell in row. Declared widths on the
// table's first row win so that every row shares the same grid; columns left
// undeclared split what remains evenly.
func (e *Engine) columnWidths(row *html.Node, cells []*html.Node, total float64) []float64 {
	specs, cols := e.rowSpecs(cells, total)
	if cols == 0 {
		return nil
	}
	grid := columns(specs, cols, total)
	if head := firstRow(row); head != nil && head != row {
		if hs, hc := e.rowSpecs(e.cellsOf(head), total); hc == cols {
			grid = columns(hs, hc, total)
		}
	}

	out := make([]float64, len(specs))
	idx := 0
	for i, s := range specs {
		for j := 0; j < s.span && idx < cols; j++ {
			out[i] += grid[idx]
			idx++
		}
	}
	return out
}

func (e *Engine) rowSpecs(cells []*html.Node, total float64) ([]colSpec, int) {
	specs := make([]colSpec, 0, len(cells))
	cols := 0
	for _, c := range cells {
		span := 1
		if v, ok := c.AttrValue("colspan"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 1 {
				span = n
			}
		}
		st := e.styleOf(c)
		specs = append(specs, colSpec{width: dimension(c, st, "width", total, fontSize(st)), span: span})
		cols += span
	}
	return specs, cols
}

// columns spreads cell specs over a grid of cols columns
func columns(specs []colSpec, cols int, total float64) []float64 {
	grid := make([]float64, cols)
	idx := 0
	declared := 0.0
	for _, s := range specs {
		share := 0.0
		if s.width > 0 {
			share = s.width / float64(s.span)
		}
		for j := 0; j < s.span && idx < cols; j++ {
			grid[idx] = share
			declared += share
			idx++
		}
	}

	free := 0
	for _, w := range grid {
		if w == 0 {
			free++
		}
	}
	if free > 0 {
		each := max(0, total-declared) / float64(free)
		for i, w := range grid {
			if w == 0 {
				grid[i] = each
			}
		}
	}
	return grid
}

// firstRow returns the first row of the table containing tr, preferring the
// header group.
func firstRow(tr *html.Node) *html.Node {
	t := tr.Parent
	for t != nil && !t.IsElement("table") {
		t = t.Parent
	}
	if t == nil {
		return nil
	}
	if thead := t.Find("thead"); thead != nil {
		if r := thead.Find("tr"); r != nil {
			return r
		}
	}
	return t.Find("tr")
}
