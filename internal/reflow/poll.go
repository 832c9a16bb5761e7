package reflow

import (
	"sync"
	"time"

	"github.com/gompdf/folio/internal/geometry"
)

// DefaultPollInterval is how often a PollObserver samples its handles
const DefaultPollInterval = 250 * time.Millisecond

// PollObserver is a geometry.Observer for backends that cannot push size
// notifications. It samples Bounds of every subscribed handle on a ticker and
// fires when the width or height differs from the previous sample. Position
// changes alone are ignored.
type PollObserver struct {
	interval time.Duration

	mu   sync.Mutex
	subs map[int]*subscription
	next int
	stop chan struct{}
}

type subscription struct {
	handle geometry.Handle
	fn     func()
	last   geometry.Rect
}

// NewPollObserver creates an observer sampling at interval, or at
// DefaultPollInterval when interval is not positive.
func NewPollObserver(interval time.Duration) *PollObserver {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &PollObserver{interval: interval, subs: make(map[int]*subscription)}
}

// OnGeometryChange implements geometry.Observer. The sampling goroutine runs
// only while at least one subscription is live.
func (p *PollObserver) OnGeometryChange(h geometry.Handle, fn func()) func() {
	p.mu.Lock()
	id := p.next
	p.next++
	p.subs[id] = &subscription{handle: h, fn: fn, last: h.Bounds()}
	if p.stop == nil {
		p.stop = make(chan struct{})
		go p.run(p.stop)
	}
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			delete(p.subs, id)
			if len(p.subs) == 0 && p.stop != nil {
				close(p.stop)
				p.stop = nil
			}
		})
	}
}

func (p *PollObserver) run(stop <-chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.poll()
		}
	}
}

// poll samples every handle once and calls the callbacks of the ones that
// changed size, outside the lock.
func (p *PollObserver) poll() {
	p.mu.Lock()
	subs := make([]*subscription, 0, len(p.subs))
	for _, s := range p.subs {
		subs = append(subs, s)
	}
	p.mu.Unlock()

	var fire []func()
	for _, s := range subs {
		cur := s.handle.Bounds()
		p.mu.Lock()
		if !cur.SameSize(s.last) {
			s.last = cur
			fire = append(fire, s.fn)
		}
		p.mu.Unlock()
	}
	for _, fn := range fire {
		fn()
	}
}
