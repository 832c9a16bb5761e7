// Package metrics measures the page framing costs and derives the content
// budget available to the body on each page.
package metrics

import (
	"log/slog"
	"math"

	"github.com/gompdf/folio/internal/geometry"
)

// DefaultSafetyBuffer is the margin reserved above the footer so body content
// never touches it.
const DefaultSafetyBuffer = 12.0

// PageMetrics holds the fixed page height and the measured frame heights.
type PageMetrics struct {
	PageHeight         float64 `json:"page_height"`
	HeaderHeight       float64 `json:"header_height"`
	FooterHeight       float64 `json:"footer_height"`
	FooterSafetyBuffer float64 `json:"footer_safety_buffer"`
}

// ContentArea returns the vertical space left for the body on one page. It is
// never less than 1.
func (m PageMetrics) ContentArea() float64 {
	return math.Max(1, m.PageHeight-m.HeaderHeight-m.FooterHeight-m.FooterSafetyBuffer)
}

// Probe reads the header, footer and body handles once and returns the page
// metrics. ok is false while any of the three still reports no height; the
// caller is expected to retry on the next geometry change. A nil header or
// footer means the document has no such frame and costs nothing.
func Probe(pageHeight, safetyBuffer float64, header, footer, body geometry.Handle) (PageMetrics, bool) {
	hh := geometry.Height(header)
	fh := geometry.Height(footer)
	bh := geometry.Height(body)
	if (header != nil && hh <= 0) || (footer != nil && fh <= 0) || bh <= 0 {
		return PageMetrics{}, false
	}
	return PageMetrics{
		PageHeight:         pageHeight,
		HeaderHeight:       hh,
		FooterHeight:       fh,
		FooterSafetyBuffer: math.Max(0, safetyBuffer),
	}, true
}

// Prober carries the page constants so callers only pass handles.
type Prober struct {
	PageHeight   float64
	SafetyBuffer float64
	Logger       *slog.Logger
}

// NewProber creates a prober for the given printable page height
func NewProber(pageHeight float64) *Prober {
	return &Prober{
		PageHeight:   pageHeight,
		SafetyBuffer: DefaultSafetyBuffer,
		Logger:       slog.Default(),
	}
}

// Probe measures the three frames. See the package-level Probe.
func (p *Prober) Probe(header, footer, body geometry.Handle) (PageMetrics, bool) {
	m, ok := Probe(p.PageHeight, p.SafetyBuffer, header, footer, body)
	if !ok {
		p.logger().Debug("metrics: geometry not measured yet",
			"header", geometry.Height(header),
			"footer", geometry.Height(footer),
			"body", geometry.Height(body))
		return m, false
	}
	if m.PageHeight-m.HeaderHeight-m.FooterHeight-m.FooterSafetyBuffer < 1 {
		p.logger().Warn("metrics: frames leave no room for content",
			"page_height", m.PageHeight, "header", m.HeaderHeight, "footer", m.FooterHeight)
	}
	return m, true
}

func (p *Prober) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}
