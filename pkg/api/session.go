package api

import (
	"bytes"
	"context"
	"sync"

	"github.com/gompdf/folio/internal/geometry"
	"github.com/gompdf/folio/internal/layout"
	"github.com/gompdf/folio/internal/pagination"
	"github.com/gompdf/folio/internal/reflow"
	"github.com/gompdf/folio/internal/render"
)

// Session keeps a document open and repaginates it whenever the geometry of
// its header, footer or body changes. Reload swaps in new content; readers
// always see the last settled plan together with the trees it was built
// from.
type Session struct {
	conv  *Converter
	coord *reflow.Coordinator

	mu        sync.RWMutex
	doc       *built
	published snapshot
	refreshed snapshot
	changed   chan struct{}
	closed    bool

	pdfMu  sync.Mutex
	pdfFor *pagination.Plan
	pdf    []byte
}

// snapshot pairs a plan with the layout it measured
type snapshot struct {
	plan *pagination.Plan
	doc  *built
}

// liveFrame reads the current tree of one frame each time it is asked
type liveFrame struct {
	s    *Session
	pick func(*built) *layout.BlockBox
}

func (f liveFrame) Bounds() geometry.Rect {
	f.s.mu.RLock()
	b := f.pick(f.s.doc)
	f.s.mu.RUnlock()
	if b == nil {
		return geometry.Rect{}
	}
	return b.Bounds()
}

// OpenSession lays out doc and starts watching it. The first plan is
// published once the settle delay has passed; until then Plan returns the
// placeholder.
func (c *Converter) OpenSession(ctx context.Context, doc Document) (*Session, error) {
	b, err := c.build(ctx, doc)
	if err != nil {
		return nil, err
	}

	s := &Session{
		conv:      c,
		doc:       b,
		published: snapshot{plan: pagination.Placeholder()},
		changed:   make(chan struct{}),
	}
	s.coord = reflow.New(s.refresh, reflow.NewPollObserver(c.options.PollInterval), reflow.Options{
		Settle:   c.options.Settle,
		Debounce: c.options.Debounce,
		Logger:   c.logger,
	})
	s.coord.OnRefresh(s.publish)
	s.coord.Open(ctx,
		liveFrame{s, func(b *built) *layout.BlockBox { return b.header }},
		liveFrame{s, func(b *built) *layout.BlockBox { return b.footer }},
		liveFrame{s, func(b *built) *layout.BlockBox { return b.body }},
	)
	return s, nil
}

func (s *Session) refresh(ctx context.Context) (*pagination.Plan, error) {
	s.mu.RLock()
	b := s.doc
	s.mu.RUnlock()

	plan := s.conv.plan(b)

	s.mu.Lock()
	s.refreshed = snapshot{plan: plan, doc: b}
	s.mu.Unlock()
	return plan, nil
}

// publish runs on the coordinator goroutine right after refresh
func (s *Session) publish(plan *pagination.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refreshed.plan != plan {
		return
	}
	s.published = s.refreshed
	close(s.changed)
	s.changed = make(chan struct{})
}

// Reload lays out doc and replaces the session content. The plan follows
// after the debounce window.
func (s *Session) Reload(ctx context.Context, doc Document) error {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return ErrClosed
	}

	b, err := s.conv.build(ctx, doc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.doc = b
	s.mu.Unlock()
	s.coord.Trigger()
	return nil
}

// Plan returns the last published plan. It is the placeholder until the
// document has settled.
func (s *Session) Plan() *pagination.Plan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.published.plan
}

// Pages returns the page views of the last published plan
func (s *Session) Pages() []render.PageView {
	return render.Compose(s.Plan(), s.conv.Frame())
}

// Stats returns the reflow counters
func (s *Session) Stats() reflow.Stats {
	return s.coord.Stats()
}

// WaitSettled blocks until a settled plan for the current content has been
// published, or ctx is done.
func (s *Session) WaitSettled(ctx context.Context) (*pagination.Plan, error) {
	for {
		s.mu.RLock()
		pub, cur, ch, closed := s.published, s.doc, s.changed, s.closed
		s.mu.RUnlock()
		if pub.plan.Settled && pub.doc == cur {
			return pub.plan, nil
		}
		if closed {
			return nil, ErrClosed
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ch:
		}
	}
}

// PDF renders the last published plan. The bytes are reused until a new plan
// is published.
func (s *Session) PDF(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	pub, cur, closed := s.published, s.doc, s.closed
	s.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}

	s.pdfMu.Lock()
	defer s.pdfMu.Unlock()
	if s.pdfFor == pub.plan && s.pdf != nil {
		return s.pdf, nil
	}

	b := pub.doc
	if b == nil {
		b = cur
	}
	var buf bytes.Buffer
	if err := s.conv.render(ctx, &buf, b, render.Compose(pub.plan, b.frame)); err != nil {
		return nil, err
	}
	s.pdfFor, s.pdf = pub.plan, buf.Bytes()
	return s.pdf, nil
}

// Close stops watching the document. The last plan stays readable.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.changed)
	s.changed = make(chan struct{})
	s.mu.Unlock()

	s.coord.Close()
	return nil
}
