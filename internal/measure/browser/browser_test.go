package browser

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/gompdf/folio/internal/geometry"
	"github.com/gompdf/folio/internal/pagination"
	"github.com/gompdf/folio/internal/reflow"
)

func TestAssemble(t *testing.T) {
	got := Assemble("<p>H</p>", "<p>B</p>", "", []string{"p > b { color: red }", "x</style>"})
	for _, want := range []string{
		`<div id="folio-header"><p>H</p></div>`,
		`<div id="folio-body"><p>B</p></div>`,
		"p > b { color: red }",
		`x<\/style>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Assemble() missing %q", want)
		}
	}
	if strings.Contains(got, "folio-footer") {
		t.Error("empty footer was emitted")
	}
}

func TestNode_Tree(t *testing.T) {
	root := &Node{H: 100, Children: []*Node{
		{Y: 0, H: 40, Unit: true},
		{Y: 40, H: 60, Children: []*Node{{Y: 40, H: 60, Unit: true}}},
	}}
	var units int
	geometry.Walk(root, func(n geometry.Node) {
		if n.BreakUnit() {
			units++
		}
	})
	if units != 2 {
		t.Errorf("units = %d, want 2", units)
	}
	if got := pagination.CollectBreaks(root, 0); len(got) != 3 || got[1] != 40 {
		t.Errorf("CollectBreaks = %v", got)
	}
}

func TestPlanSnapshot(t *testing.T) {
	body := &Node{H: 1000}
	for i := 0; i < 10; i++ {
		body.Children = append(body.Children, &Node{Y: float64(i * 100), H: 100, Unit: true})
	}
	e := pagination.NewEngine()
	e.SetOptions(pagination.Options{PageHeight: 500, SafetyBuffer: 12, BreakEpsilon: 6})

	tests := []struct {
		name           string
		header, footer *Node
		body           *Node
		settled        bool
		pages          int
	}{
		{"no frames", nil, nil, body, true, 3},
		{"both frames", &Node{H: 50}, &Node{H: 30}, body, true, 3},
		{"header not laid out", &Node{H: 0}, &Node{H: 30}, body, false, 1},
		{"footer not laid out", &Node{H: 50}, &Node{H: 0}, body, false, 1},
		{"no body", nil, nil, nil, false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := planSnapshot(e, tt.header, tt.body, tt.footer)
			if plan.Settled != tt.settled || plan.PageCount() != tt.pages {
				t.Errorf("plan settled=%v pages=%d, want settled=%v pages=%d",
					plan.Settled, plan.PageCount(), tt.settled, tt.pages)
			}
		})
	}
}

func newMeasurer(t *testing.T) *Measurer {
	t.Helper()
	if !Available() {
		t.Skip("no local Chrome found")
	}
	m, err := New(context.Background(), Config{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	if err != nil {
		t.Skipf("browser unavailable: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestPage_Plan(t *testing.T) {
	m := newMeasurer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var body strings.Builder
	for i := 0; i < 10; i++ {
		body.WriteString(`<div data-break-unit style="height:100px"></div>`)
	}
	content := Assemble(`<div style="height:50px"></div>`, body.String(), `<div style="height:30px"></div>`, nil)
	page, err := m.Open(ctx, content, 400)
	if err != nil {
		t.Fatal(err)
	}
	defer page.Close()

	if h := page.Element(BodySelector).Bounds().Height; h != 1000 {
		t.Errorf("body height = %v, want 1000", h)
	}
	if ok, err := page.Has(ctx, "#nope"); err != nil || ok {
		t.Errorf("Has(#nope) = %v, %v", ok, err)
	}

	e := pagination.NewEngine()
	e.SetOptions(pagination.Options{PageHeight: 500, SafetyBuffer: 12, BreakEpsilon: 6})
	plan, err := page.Plan(ctx, e)
	if err != nil {
		t.Fatal(err)
	}
	if !plan.Settled || plan.PageCount() != 3 {
		t.Errorf("plan = %+v, want 3 settled pages", plan)
	}
	if plan.Ranges[0].End != 406 {
		t.Errorf("first page ends at %v, want 406", plan.Ranges[0].End)
	}

	measured, err := page.Measure(ctx, e, 20*time.Millisecond, reflow.Options{
		Settle:   20 * time.Millisecond,
		Debounce: 10 * time.Millisecond,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !measured.Settled || measured.PageCount() != 3 {
		t.Errorf("Measure() = %+v, want 3 settled pages", measured)
	}
}
