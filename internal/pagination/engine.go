package pagination

import (
	"log/slog"

	"github.com/gompdf/folio/internal/geometry"
	"github.com/gompdf/folio/internal/metrics"
)

// Options represents options for the pagination engine
type Options struct {
	// PageHeight is the printable height of one sheet
	PageHeight   float64
	SafetyBuffer float64
	BreakEpsilon float64
}

// Plan is one consistent pagination result. Plans are immutable once built.
type Plan struct {
	Metrics    metrics.PageMetrics `json:"metrics"`
	Candidates []float64           `json:"candidates"`
	Ranges     []PageRange         `json:"ranges"`
	// Forced lists the indices of ranges whose end had to be cut inside content.
	Forced []int `json:"forced,omitempty"`
	// Settled is false for the placeholder plan produced while geometry is
	// still unmeasured.
	Settled bool `json:"settled"`
}

// Placeholder returns the one-page, empty plan used while the document is
// still settling.
func Placeholder() *Plan {
	return &Plan{
		Candidates: []float64{0},
		Ranges:     []PageRange{{Start: 0, End: 1}},
	}
}

// PageCount returns the number of pages in the plan
func (p *Plan) PageCount() int {
	if p == nil {
		return 0
	}
	return len(p.Ranges)
}

// TotalHeight returns the body height the plan covers
func (p *Plan) TotalHeight() float64 {
	if p == nil || len(p.Ranges) == 0 {
		return 0
	}
	return p.Ranges[len(p.Ranges)-1].End
}

// Engine runs probe, break collection and packing as one pass
type Engine struct {
	options Options
	logger  *slog.Logger
}

// NewEngine creates a new pagination engine
func NewEngine() *Engine {
	return &Engine{
		options: Options{
			PageHeight:   841.89 - 72, // A4 with half-inch margins
			SafetyBuffer: metrics.DefaultSafetyBuffer,
			BreakEpsilon: DefaultBreakEpsilon,
		},
		logger: slog.Default(),
	}
}

// SetOptions sets the options for the pagination engine
func (e *Engine) SetOptions(options Options) {
	e.options = options
}

// Options returns the current options
func (e *Engine) Options() Options {
	return e.options
}

// SetLogger sets the logger used for pagination diagnostics
func (e *Engine) SetLogger(logger *slog.Logger) {
	if logger != nil {
		e.logger = logger
	}
}

// Plan measures the frames and the body and packs the body into pages. When
// any frame is not laid out yet it returns the placeholder plan.
func (e *Engine) Plan(header, footer geometry.Handle, body geometry.Node) *Plan {
	prober := &metrics.Prober{
		PageHeight:   e.options.PageHeight,
		SafetyBuffer: e.options.SafetyBuffer,
		Logger:       e.logger,
	}
	var bodyHandle geometry.Handle
	if body != nil {
		bodyHandle = body
	}
	m, ok := prober.Probe(header, footer, bodyHandle)
	if !ok {
		return Placeholder()
	}

	candidates := CollectBreaks(body, e.options.BreakEpsilon)
	total := body.Bounds().Height
	ranges := Pack(total, m.ContentArea(), candidates)

	plan := &Plan{
		Metrics:    m,
		Candidates: candidates,
		Ranges:     ranges,
		Forced:     forced(ranges, candidates),
		Settled:    true,
	}
	for _, i := range plan.Forced {
		e.logger.Warn("pagination: unit taller than one page was cut",
			"page", i+1, "at", ranges[i].End, "content_area", m.ContentArea())
	}
	e.logger.Debug("pagination: planned",
		"pages", len(ranges), "candidates", len(candidates),
		"body_height", total, "content_area", m.ContentArea())
	return plan
}
