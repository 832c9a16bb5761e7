package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/gompdf/folio/internal/geometry"
	"github.com/gompdf/folio/internal/pagination"
	"github.com/gompdf/folio/internal/reflow"
)

// Node is one element of a measured subtree. Snapshots are taken in a single
// round trip, so the whole tree is consistent with one layout.
type Node struct {
	Tag      string  `json:"tag"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	W        float64 `json:"w"`
	H        float64 `json:"h"`
	Unit     bool    `json:"unit"`
	Children []*Node `json:"children,omitempty"`
}

func (n *Node) Bounds() geometry.Rect {
	return geometry.Rect{X: n.X, Y: n.Y, Width: n.W, Height: n.H}
}

func (n *Node) BreakUnit() bool { return n.Unit }

func (n *Node) ChildNodes() []geometry.Node {
	out := make([]geometry.Node, len(n.Children))
	for i, c := range n.Children {
		out[i] = c
	}
	return out
}

var _ geometry.Node = (*Node)(nil)

// snapshotScript mirrors the break units of the layout engine: elements
// styled break-inside: avoid, elements carrying data-break-unit, and the
// tags the default stylesheet marks.
const snapshotScript = `(sel) => {
	const units = new Set(['TR','LI','H1','H2','H3','H4','H5','H6','P','FIGURE','BLOCKQUOTE','PRE','IMG']);
	const isUnit = (el) => {
		const cs = getComputedStyle(el);
		if (cs.breakInside === 'avoid' || cs.breakInside === 'avoid-page' || cs.pageBreakInside === 'avoid') return true;
		const attr = el.getAttribute('data-break-unit');
		if (attr !== null && attr !== 'false') return true;
		return units.has(el.tagName) || el.classList.contains('signature');
	};
	const walk = (el) => {
		const r = el.getBoundingClientRect();
		const n = {tag: el.tagName.toLowerCase(), x: r.left + window.scrollX, y: r.top + window.scrollY, w: r.width, h: r.height, unit: isUnit(el)};
		const kids = [];
		for (const c of el.children) {
			if (getComputedStyle(c).display === 'none') continue;
			kids.push(walk(c));
		}
		if (kids.length) n.children = kids;
		return n;
	};
	const root = document.querySelector(sel);
	if (!root) return 'null';
	return JSON.stringify(walk(root));
}`

// Snapshot measures the subtree under selector. It returns nil when nothing
// matches.
func (p *Page) Snapshot(ctx context.Context, selector string) (*Node, error) {
	var n *Node
	if err := p.eval(ctx, snapshotScript, &n, selector); err != nil {
		return nil, fmt.Errorf("failed to snapshot %s: %w", selector, err)
	}
	if n != nil {
		n.Unit = false
	}
	return n, nil
}

// Plan measures a page built by Assemble and packs its body with engine.
func (p *Page) Plan(ctx context.Context, engine *pagination.Engine) (*pagination.Plan, error) {
	var nodes [3]*Node
	for i, sel := range []string{HeaderSelector, BodySelector, FooterSelector} {
		n, err := p.Snapshot(ctx, sel)
		if err != nil {
			return nil, err
		}
		nodes[i] = n
	}
	return planSnapshot(engine, nodes[0], nodes[1], nodes[2]), nil
}

// planSnapshot packs measured frames. A nil header or footer is absent. A
// frame that exists but has no height yet is unmeasured, so the plan is the
// placeholder until it lays out.
func planSnapshot(engine *pagination.Engine, header, body, footer *Node) *pagination.Plan {
	if body == nil {
		return pagination.Placeholder()
	}
	frames := [2]geometry.Handle{}
	for i, n := range []*Node{header, footer} {
		if n == nil {
			continue
		}
		if n.H <= 0 {
			return pagination.Placeholder()
		}
		frames[i] = n
	}
	return engine.Plan(frames[0], frames[1], body)
}

// Measure keeps a reflow.Coordinator on the live frames until the layout
// settles and returns the first settled plan. Web fonts and images that land
// after load show up as size changes and trigger a fresh plan.
func (p *Page) Measure(ctx context.Context, engine *pagination.Engine, poll time.Duration, opts reflow.Options) (*pagination.Plan, error) {
	handles := []geometry.Handle{p.Element(BodySelector)}
	for _, sel := range []string{HeaderSelector, FooterSelector} {
		ok, err := p.Has(ctx, sel)
		if err != nil {
			return nil, fmt.Errorf("failed to find %s: %w", sel, err)
		}
		if ok {
			handles = append(handles, p.Element(sel))
		}
	}

	c := reflow.New(func(ctx context.Context) (*pagination.Plan, error) {
		return p.Plan(ctx, engine)
	}, reflow.NewPollObserver(poll), opts)
	settled := make(chan *pagination.Plan, 1)
	c.OnRefresh(func(plan *pagination.Plan) {
		if !plan.Settled {
			return
		}
		select {
		case settled <- plan:
		default:
		}
	})
	c.Open(ctx, handles...)
	defer c.Close()

	select {
	case plan := <-settled:
		return plan, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to measure: layout did not settle: %w", ctx.Err())
	}
}
