package metrics

import (
	"testing"

	"github.com/gompdf/folio/internal/geometry"
)

type box float64

func (b box) Bounds() geometry.Rect { return geometry.Rect{Width: 500, Height: float64(b)} }

func TestProbe(t *testing.T) {
	m, ok := Probe(800, 12, box(60), box(40), box(2000))
	if !ok {
		t.Fatal("Probe: expected measured geometry")
	}
	if m.HeaderHeight != 60 || m.FooterHeight != 40 || m.PageHeight != 800 {
		t.Fatalf("unexpected metrics %+v", m)
	}
	if got := m.ContentArea(); got != 688 {
		t.Errorf("ContentArea = %.1f, want 688", got)
	}
}

func TestProbe_SkipsUnmeasured(t *testing.T) {
	tests := []struct {
		name                 string
		header, footer, body geometry.Handle
	}{
		{"header", box(0), box(40), box(100)},
		{"footer", box(60), box(0), box(100)},
		{"body", box(60), box(40), box(0)},
		{"nil body", box(60), box(40), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := Probe(800, 12, tt.header, tt.footer, tt.body); ok {
				t.Error("Probe reported measured geometry")
			}
		})
	}
}

func TestProbe_AbsentFrames(t *testing.T) {
	m, ok := Probe(800, 0, nil, nil, box(100))
	if !ok {
		t.Fatal("absent header and footer should not block measurement")
	}
	if got := m.ContentArea(); got != 800 {
		t.Errorf("ContentArea = %.1f, want 800", got)
	}
}

func TestContentArea_NeverBelowOne(t *testing.T) {
	m := PageMetrics{PageHeight: 100, HeaderHeight: 80, FooterHeight: 30, FooterSafetyBuffer: 12}
	if got := m.ContentArea(); got != 1 {
		t.Errorf("ContentArea = %.1f, want 1", got)
	}
}

func TestProber_NegativeBufferIgnored(t *testing.T) {
	p := NewProber(500)
	p.SafetyBuffer = -5
	m, ok := p.Probe(box(10), box(10), box(10))
	if !ok {
		t.Fatal("expected measured geometry")
	}
	if m.FooterSafetyBuffer != 0 || m.ContentArea() != 480 {
		t.Errorf("unexpected metrics %+v", m)
	}
}
