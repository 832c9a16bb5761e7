package render

import (
	"testing"

	"github.com/gompdf/folio/internal/metrics"
	"github.com/gompdf/folio/internal/pagination"
)

func TestCompose(t *testing.T) {
	plan := &pagination.Plan{
		Metrics: metrics.PageMetrics{
			PageHeight:         400,
			HeaderHeight:       50,
			FooterHeight:       40,
			FooterSafetyBuffer: 10,
		},
		Ranges:  []pagination.PageRange{{Start: 0, End: 295}, {Start: 295, End: 595}},
		Settled: true,
	}
	frame := Frame{
		PageWidth:  300,
		PageHeight: 440,
		Margins:    Margins{Top: 20, Right: 20, Bottom: 20, Left: 20},
	}

	views := Compose(plan, frame)
	if len(views) != 2 {
		t.Fatalf("got %d views, want 2", len(views))
	}
	tests := []struct {
		key    string
		height float64
		offset float64
	}{
		{"0:0-295", 295, 70},
		{"1:295-595", 300, -225},
	}
	for i, tt := range tests {
		v := views[i]
		if v.Key() != tt.key {
			t.Errorf("view %d key = %s, want %s", i, v.Key(), tt.key)
		}
		if v.Header.Y != 20 || v.Header.Height != 50 || v.Header.Width != 260 {
			t.Errorf("view %d header = %+v", i, v.Header)
		}
		if v.Viewport.Y != 70 || v.Viewport.Height != tt.height {
			t.Errorf("view %d viewport = %+v", i, v.Viewport)
		}
		if v.Offset != tt.offset {
			t.Errorf("view %d offset = %.1f, want %.1f", i, v.Offset, tt.offset)
		}
		if v.Footer.Y != 380 || v.Footer.Height != 40 {
			t.Errorf("view %d footer = %+v", i, v.Footer)
		}
		// range start lands on the viewport top
		if got := v.Range.Start + v.Offset; got != v.Viewport.Y {
			t.Errorf("view %d: start maps to %.1f, want %.1f", i, got, v.Viewport.Y)
		}
		// the footer never overlaps the viewport
		if v.Viewport.Bottom() > v.Footer.Y {
			t.Errorf("view %d: viewport ends at %.1f below the footer top %.1f", i, v.Viewport.Bottom(), v.Footer.Y)
		}
	}
}

func TestCompose_Placeholder(t *testing.T) {
	views := Compose(pagination.Placeholder(), Frame{PageWidth: 100, PageHeight: 100})
	if len(views) != 1 {
		t.Fatalf("got %d views, want 1", len(views))
	}
	if views[0].Viewport.Height != 0 {
		t.Errorf("placeholder viewport height = %.1f, want 0", views[0].Viewport.Height)
	}
	if got := Compose(nil, Frame{}); len(got) != 1 {
		t.Errorf("nil plan gave %d views", len(got))
	}
}

func TestFrame(t *testing.T) {
	f := Frame{PageWidth: 595.28, PageHeight: 841.89, Margins: Margins{36, 36, 36, 36}}
	if got := f.ContentWidth(); got != 595.28-72 {
		t.Errorf("ContentWidth = %v", got)
	}
	if got := f.PrintableHeight(); got != 841.89-72 {
		t.Errorf("PrintableHeight = %v", got)
	}
}
