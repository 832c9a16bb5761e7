package style

import (
	"testing"

	"github.com/gompdf/folio/internal/parser/css"
	"github.com/gompdf/folio/internal/parser/html"
)

func computeFor(t *testing.T, doc, sheet string) (map[*html.Node]ComputedStyle, *html.Document) {
	t.Helper()
	d, err := html.NewParser().ParseString(doc)
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	e := NewStyleEngine(nil)
	if sheet != "" {
		s, err := css.NewParser().ParseString(sheet)
		if err != nil {
			t.Fatalf("parse css: %v", err)
		}
		e.AddStylesheet(s)
	}
	return e.ComputeStyles(d), d
}

func TestCascade_SpecificityAndOrigin(t *testing.T) {
	styles, doc := computeFor(t,
		`<div id="sig" class="box" style="margin-top: 9px">x</div>`,
		`#sig { color: #111111 } .box { color: #222222; margin-top: 1px } div { color: #333333 }`)
	div := doc.Root.Find("div")
	st := styles[div]
	if got := st.Get("color"); got != "#111111" {
		t.Errorf("color = %q, want the id rule to win", got)
	}
	if got := st.Get("margin-top"); got != "9px" {
		t.Errorf("margin-top = %q, want the inline declaration to win", got)
	}
}

func TestCascade_ImportantBeatsInline(t *testing.T) {
	styles, doc := computeFor(t, `<p style="color: red">x</p>`, `p { color: blue !important }`)
	if got := styles[doc.Root.Find("p")].Get("color"); got != "blue" {
		t.Errorf("color = %q, want blue", got)
	}
}

func TestCascade_BreakUnitsFromUserAgent(t *testing.T) {
	styles, doc := computeFor(t,
		`<table><tr><td>a</td></tr></table><div class="signature">s</div><div>plain</div>`, "")
	if !styles[doc.Root.Find("tr")].BreakInsideAvoid() {
		t.Error("tr should be a break unit")
	}
	var sig, plain *html.Node
	for n := doc.Root.Find("div"); n != nil; n = n.NextSibling {
		if n.HasClass("signature") {
			sig = n
		} else if n.Tag() == "div" {
			plain = n
		}
	}
	if !styles[sig].BreakInsideAvoid() {
		t.Error(".signature should be a break unit")
	}
	if styles[plain].BreakInsideAvoid() {
		t.Error("plain div should not be a break unit")
	}
}

func TestCascade_BorderShorthand(t *testing.T) {
	styles, doc := computeFor(t, `<div>x</div>`, `div { border: 2px solid #ff0000 }`)
	st := styles[doc.Root.Find("div")]
	if st.Get("border-left-width") != "2px" || st.Get("border-color") != "#ff0000" {
		t.Errorf("shorthand not expanded: %v", st)
	}
}

func TestInherit(t *testing.T) {
	parent := ComputedStyle{
		"color":      {Name: "color", Value: "red"},
		"margin-top": {Name: "margin-top", Value: "10px"},
	}
	own := ComputedStyle{"font-weight": {Name: "font-weight", Value: "bold"}}
	got := Inherit(parent, own)
	if got.Get("color") != "red" || got.Get("font-weight") != "bold" {
		t.Errorf("Inherit = %v", got)
	}
	if got.Get("margin-top") != "" {
		t.Error("margins must not inherit")
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
		ok   bool
	}{
		{"#fff", Color{255, 255, 255}, true},
		{"#102030", Color{16, 32, 48}, true},
		{"rgb(1, 2, 3)", Color{1, 2, 3}, true},
		{"Navy", Color{0, 0, 128}, true},
		{"transparent", Color{}, false},
		{"#12", Color{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseColor(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseColor(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
