// Package geometry defines the measurement contract shared by the layout
// engine, the browser measurer and the pagination pipeline. Everything that
// paginates works against these interfaces, never against a concrete
// rendering backend.
package geometry

// Rect is an axis-aligned box in points. Y grows downwards.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Bottom returns the bottom edge of the rectangle
func (r Rect) Bottom() float64 {
	return r.Y + r.Height
}

// SameSize reports whether two rectangles have the same width and height
func (r Rect) SameSize(o Rect) bool {
	return r.Width == o.Width && r.Height == o.Height
}

// Handle is anything whose rendered box can be read. A zero height means the
// element has not been laid out yet.
type Handle interface {
	Bounds() Rect
}

// Node is a Handle that is part of a rendered tree.
type Node interface {
	Handle
	// BreakUnit reports whether the node is an atomic unit that must not be
	// split across pages.
	BreakUnit() bool
	ChildNodes() []Node
}

// Observer delivers size-change notifications for a handle until the
// returned function is called.
type Observer interface {
	OnGeometryChange(h Handle, fn func()) (unsubscribe func())
}

// ObserverFunc adapts a function to the Observer interface
type ObserverFunc func(h Handle, fn func()) func()

// OnGeometryChange calls f(h, fn)
func (f ObserverFunc) OnGeometryChange(h Handle, fn func()) func() {
	return f(h, fn)
}

// Walk visits n and its descendants in document order.
func Walk(n Node, fn func(Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.ChildNodes() {
		Walk(c, fn)
	}
}

// Height returns h's height; a nil handle has none.
func Height(h Handle) float64 {
	if h == nil {
		return 0
	}
	return h.Bounds().Height
}
