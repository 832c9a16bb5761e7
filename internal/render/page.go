// Package render turns a pagination plan into page views: where the header,
// the body viewport and the footer go on each sheet, and how far the shared
// body tree must be shifted so the right slice shows through the viewport.
//
// Page views never copy or split the body. Every page shows the same tree
// through its own window.
package render

import (
	"fmt"

	"github.com/gompdf/folio/internal/geometry"
	"github.com/gompdf/folio/internal/pagination"
)

// Margins are the blank borders of the sheet, in points
type Margins struct {
	Top    float64 `json:"top" yaml:"top"`
	Right  float64 `json:"right" yaml:"right"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
	Left   float64 `json:"left" yaml:"left"`
}

// Frame is the sheet geometry shared by every page
type Frame struct {
	PageWidth  float64
	PageHeight float64
	Margins    Margins
}

// ContentWidth returns the width available between the side margins
func (f Frame) ContentWidth() float64 {
	return max(0, f.PageWidth-f.Margins.Left-f.Margins.Right)
}

// PrintableHeight returns the height available between the top and bottom
// margins. This is the page height the metrics prober works with.
func (f Frame) PrintableHeight() float64 {
	return max(0, f.PageHeight-f.Margins.Top-f.Margins.Bottom)
}

// PageView is one printed page
type PageView struct {
	Index int                  `json:"index"`
	Range pagination.PageRange `json:"range"`
	// Header, Viewport and Footer are sheet coordinates
	Header   geometry.Rect `json:"header"`
	Viewport geometry.Rect `json:"viewport"`
	Footer   geometry.Rect `json:"footer"`
	// Offset is added to body Y coordinates so that Range.Start lands on the
	// top of the viewport
	Offset float64 `json:"offset"`
}

// Key identifies the page by index and range
func (v PageView) Key() string {
	return fmt.Sprintf("%d:%g-%g", v.Index, v.Range.Start, v.Range.End)
}

// Compose builds one view per page range. An unsettled plan yields its single
// placeholder page with an empty viewport.
func Compose(plan *pagination.Plan, frame Frame) []PageView {
	if plan == nil {
		plan = pagination.Placeholder()
	}
	m := plan.Metrics
	x, top := frame.Margins.Left, frame.Margins.Top
	w := frame.ContentWidth()

	views := make([]PageView, 0, len(plan.Ranges))
	for i, r := range plan.Ranges {
		v := PageView{
			Index:  i,
			Range:  r,
			Header: geometry.Rect{X: x, Y: top, Width: w, Height: m.HeaderHeight},
			Footer: geometry.Rect{
				X:      x,
				Y:      top + m.PageHeight - m.FooterHeight,
				Width:  w,
				Height: m.FooterHeight,
			},
		}
		v.Viewport = geometry.Rect{X: x, Y: top + m.HeaderHeight, Width: w}
		if plan.Settled {
			v.Viewport.Height = r.Height()
		}
		v.Offset = v.Viewport.Y - r.Start
		views = append(views, v)
	}
	return views
}
