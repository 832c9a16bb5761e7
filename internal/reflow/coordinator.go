// Package reflow keeps a pagination plan in step with the geometry it was
// computed from. A Coordinator waits for the first layout to settle, then
// recomputes the plan whenever an observed handle changes size, debouncing
// bursts of changes into a single refresh.
//
// Typical usage:
//
//	c := reflow.New(session.refresh, reflow.NewPollObserver(0), reflow.Options{})
//	c.Open(ctx, header, footer, body)
//	defer c.Close()
//	plan := c.Current()
package reflow

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gompdf/folio/internal/geometry"
	"github.com/gompdf/folio/internal/pagination"
)

// RefreshFunc measures the current geometry and returns a fresh plan
type RefreshFunc func(ctx context.Context) (*pagination.Plan, error)

// Options tunes the coordinator
type Options struct {
	// Settle is the delay between Open and the first refresh. Default: 150ms.
	Settle time.Duration
	// Debounce is the quiet period after a change before the plan is
	// recomputed. Further changes during the window restart it. Default: 100ms.
	Debounce time.Duration
	// Logger overrides the default slog logger.
	Logger *slog.Logger
}

func (o *Options) defaults() {
	if o.Settle <= 0 {
		o.Settle = 150 * time.Millisecond
	}
	if o.Debounce <= 0 {
		o.Debounce = 100 * time.Millisecond
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Stats are point-in-time counters.
type Stats struct {
	Triggers  int64 `json:"triggers"`
	Refreshes int64 `json:"refreshes"`
	Errors    int64 `json:"errors"`
}

// Coordinator owns the published plan. All refreshes run on a single loop
// goroutine, so the refresh function never runs concurrently with itself.
type Coordinator struct {
	refresh RefreshFunc
	obs     geometry.Observer
	opts    Options

	plan atomic.Pointer[pagination.Plan]

	mu        sync.Mutex
	open      bool
	kick      chan struct{}
	cancel    context.CancelFunc
	done      chan struct{}
	unsubs    []func()
	listeners []func(*pagination.Plan)

	triggers  atomic.Int64
	refreshes atomic.Int64
	errors    atomic.Int64
}

// New creates a closed coordinator holding the placeholder plan. obs may be
// nil, in which case only Trigger schedules refreshes.
func New(refresh RefreshFunc, obs geometry.Observer, opts Options) *Coordinator {
	opts.defaults()
	c := &Coordinator{refresh: refresh, obs: obs, opts: opts}
	c.plan.Store(pagination.Placeholder())
	return c
}

// Current returns the last published plan. It never returns nil.
func (c *Coordinator) Current() *pagination.Plan {
	return c.plan.Load()
}

// OnRefresh registers fn to receive every newly published plan. fn runs on
// the coordinator goroutine and must not call Close.
func (c *Coordinator) OnRefresh(fn func(*pagination.Plan)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Stats returns the current counters.
func (c *Coordinator) Stats() Stats {
	return Stats{
		Triggers:  c.triggers.Load(),
		Refreshes: c.refreshes.Load(),
		Errors:    c.errors.Load(),
	}
}

// Open subscribes to size changes of every handle and starts the loop. The
// first refresh runs once the settle delay has passed. Opening an open
// coordinator does nothing.
func (c *Coordinator) Open(ctx context.Context, handles ...geometry.Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	c.open = true
	c.cancel = cancel
	c.kick = make(chan struct{}, 1)
	c.done = make(chan struct{})
	if c.obs != nil {
		for _, h := range handles {
			if h != nil {
				c.unsubs = append(c.unsubs, c.obs.OnGeometryChange(h, c.Trigger))
			}
		}
	}

	c.opts.Logger.Debug("reflow: opened", "handles", len(handles), "settle", c.opts.Settle, "debounce", c.opts.Debounce)
	go c.loop(ctx, c.kick, c.done)
}

// Trigger schedules a refresh after the debounce window. Calls made while a
// refresh is already pending collapse into it. Trigger on a closed
// coordinator is a no-op.
func (c *Coordinator) Trigger() {
	c.mu.Lock()
	open, kick := c.open, c.kick
	c.mu.Unlock()
	if !open {
		return
	}
	c.triggers.Add(1)
	select {
	case kick <- struct{}{}:
	default:
	}
}

// Close unsubscribes from every handle, drops any pending refresh and waits
// for the loop to exit. The last plan stays readable and the coordinator may
// be opened again.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return
	}
	c.open = false
	unsubs, cancel, done := c.unsubs, c.cancel, c.done
	c.unsubs = nil
	c.mu.Unlock()

	for _, unsubscribe := range unsubs {
		if unsubscribe != nil {
			unsubscribe()
		}
	}
	cancel()
	<-done
	c.opts.Logger.Debug("reflow: closed")
}

func (c *Coordinator) loop(ctx context.Context, kick <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	var timer *time.Timer
	var timerC <-chan time.Time
	arm := func(d time.Duration) {
		if timer != nil {
			timer.Stop()
		}
		timer = time.NewTimer(d)
		timerC = timer.C
	}
	// Kicks before the first refresh never pull it ahead of the settle delay.
	settleAt := time.Now().Add(c.opts.Settle)
	settled := false
	arm(c.opts.Settle)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case <-kick:
			d := c.opts.Debounce
			if !settled {
				d = max(time.Until(settleAt), d)
			}
			arm(d)

		case <-timerC:
			timerC = nil
			settled = true
			c.run(ctx)
		}
	}
}

func (c *Coordinator) run(ctx context.Context) {
	log := c.opts.Logger
	start := time.Now()

	plan, err := c.refresh(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		c.errors.Add(1)
		log.Warn("reflow: refresh failed, keeping previous plan", "error", err)
		return
	}
	if plan == nil {
		plan = pagination.Placeholder()
	}
	if !plan.Settled && c.plan.Load().Settled {
		log.Debug("reflow: geometry not measured, keeping previous plan")
		return
	}

	c.plan.Store(plan)
	c.refreshes.Add(1)
	log.Debug("reflow: plan published",
		"pages", plan.PageCount(), "settled", plan.Settled, "took", time.Since(start))

	c.mu.Lock()
	listeners := slices.Clone(c.listeners)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(plan)
	}
}
