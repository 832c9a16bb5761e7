package layout

import (
	"math"
	"testing"

	"github.com/gompdf/folio/internal/parser/html"
	"github.com/gompdf/folio/internal/style"
)

func layoutHTML(t *testing.T, src string, width float64) *BlockBox {
	t.Helper()
	doc, err := html.NewParser().ParseString(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	e := NewEngine()
	e.SetOptions(Options{Width: width})
	e.SetStyles(style.NewStyleEngine(nil).ComputeStyles(doc))
	root, err := e.Layout(doc)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	return root
}

// findAll returns the boxes generated by elements with the given tag
func findAll(b Box, tag string) []Box {
	var out []Box
	if b.GetNode().IsElement(tag) {
		out = append(out, b)
	}
	for _, c := range b.ChildNodes() {
		out = append(out, findAll(c.(Box), tag)...)
	}
	return out
}

func textBoxes(b Box) []*TextBox {
	var out []*TextBox
	if tb, ok := b.(*TextBox); ok {
		out = append(out, tb)
	}
	for _, c := range b.ChildNodes() {
		out = append(out, textBoxes(c.(Box))...)
	}
	return out
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestLayout_MarginsCollapse(t *testing.T) {
	root := layoutHTML(t, `<body>
		<p style="margin: 10pt 0; line-height: 20pt">a</p>
		<p style="margin: 10pt 0; line-height: 20pt">b</p>
	</body>`, 300)

	ps := findAll(root, "p")
	if len(ps) != 2 {
		t.Fatalf("got %d paragraphs, want 2", len(ps))
	}
	r1, r2 := ps[0].Bounds(), ps[1].Bounds()
	if !near(r1.Y, 10) || !near(r1.Height, 20) {
		t.Errorf("first p = %+v, want y=10 h=20", r1)
	}
	if !near(r2.Y, 40) {
		t.Errorf("second p y = %.2f, want 40", r2.Y)
	}
	if !near(root.Height, 70) {
		t.Errorf("body height = %.2f, want 70", root.Height)
	}
	if root.X != 0 || root.Y != 0 {
		t.Errorf("body should sit at the origin, got (%.1f, %.1f)", root.X, root.Y)
	}
}

func TestLayout_WrapsAtSpaces(t *testing.T) {
	root := layoutHTML(t, `<p style="margin: 0; line-height: 10pt">aaa bbb ccc</p>`, 30)

	tbs := textBoxes(root)
	if len(tbs) != 3 {
		t.Fatalf("got %d lines, want 3", len(tbs))
	}
	for i, tb := range tbs {
		if !near(tb.Y, float64(i)*10) {
			t.Errorf("line %d y = %.2f, want %d", i, tb.Y, i*10)
		}
		if tb.Width <= 0 || tb.Width > 30 {
			t.Errorf("line %d width = %.2f, want within (0, 30]", i, tb.Width)
		}
		if tb.Baseline <= tb.Y || tb.Baseline > tb.Y+tb.Height {
			t.Errorf("line %d baseline %.2f outside its line box", i, tb.Baseline)
		}
	}
	if got := findAll(root, "p")[0].Bounds().Height; !near(got, 30) {
		t.Errorf("p height = %.2f, want 30", got)
	}
}

func TestLayout_InlineRunsShareLine(t *testing.T) {
	root := layoutHTML(t, `<p style="margin: 0">plain <b>bold</b> tail</p>`, 400)
	tbs := textBoxes(root)
	if len(tbs) != 3 {
		t.Fatalf("got %d runs, want 3", len(tbs))
	}
	for _, tb := range tbs[1:] {
		if tb.Y != tbs[0].Y {
			t.Errorf("run %q on a different line", tb.Text)
		}
	}
	if tbs[1].Text != " bold" && tbs[1].Text != "bold" {
		t.Errorf("middle run = %q", tbs[1].Text)
	}
	if tbs[1].X < tbs[0].X+tbs[0].Width {
		t.Error("runs overlap")
	}
	if fam, st := ResolveFont(tbs[1].Style); fam != "Helvetica" || st != "B" {
		t.Errorf("bold run font = %s %q", fam, st)
	}
}

func TestLayout_BreakUnits(t *testing.T) {
	root := layoutHTML(t, `<div data-break-unit>x</div><div>y</div><p>z</p>`, 300)
	divs := findAll(root, "div")
	if !divs[0].BreakUnit() {
		t.Error("data-break-unit div should be a unit")
	}
	if divs[1].BreakUnit() {
		t.Error("plain div should not be a unit")
	}
	if !findAll(root, "p")[0].BreakUnit() {
		t.Error("paragraphs avoid breaks by default")
	}
	for _, tb := range textBoxes(root) {
		if tb.BreakUnit() {
			t.Error("text boxes are never units")
		}
	}
}

func TestLayout_TableRow(t *testing.T) {
	root := layoutHTML(t, `<table style="margin: 0"><tr>
		<td style="padding: 0; border: 0">a</td>
		<td style="padding: 0; border: 0">a<br>b</td>
	</tr></table>`, 200)

	rows := findAll(root, "tr")
	if len(rows) != 1 {
		t.Fatalf("got %d rows", len(rows))
	}
	row := rows[0]
	if !row.BreakUnit() {
		t.Error("rows are break units")
	}
	cells := findAll(row, "td")
	if len(cells) != 2 {
		t.Fatalf("got %d cells", len(cells))
	}
	c1, c2 := cells[0].Bounds(), cells[1].Bounds()
	if !near(c1.Width, 100) || !near(c2.Width, 100) {
		t.Errorf("cell widths = %.1f, %.1f; want 100 each", c1.Width, c2.Width)
	}
	if !near(c2.X, c1.X+100) {
		t.Errorf("second cell x = %.1f", c2.X)
	}
	want := 2 * 11 * 1.3
	if !near(c1.Height, want) || !near(c2.Height, want) {
		t.Errorf("cell heights = %.2f, %.2f; want both %.2f", c1.Height, c2.Height, want)
	}
	if !near(row.Bounds().Height, want) {
		t.Errorf("row height = %.2f, want %.2f", row.Bounds().Height, want)
	}
}

func TestLayout_HeaderDrivesColumns(t *testing.T) {
	root := layoutHTML(t, `<table>
		<thead><tr><th style="width: 50pt">h</th><th>h</th></tr></thead>
		<tbody><tr><td>x</td><td>y</td></tr></tbody>
	</table>`, 200)
	tds := findAll(root, "td")
	if len(tds) != 2 {
		t.Fatalf("got %d cells", len(tds))
	}
	if w := tds[0].Bounds().Width; !near(w, 50) {
		t.Errorf("first column = %.1f, want 50", w)
	}
	if w := tds[1].Bounds().Width; !near(w, 150) {
		t.Errorf("second column = %.1f, want 150", w)
	}
}

func TestLayout_ListMarkers(t *testing.T) {
	root := layoutHTML(t, `<ol><li>a</li><li>b</li></ol><ul><li>c</li></ul>`, 300)
	lis := findAll(root, "li")
	want := []string{"1.", "2.", "•"}
	if len(lis) != len(want) {
		t.Fatalf("got %d items", len(lis))
	}
	for i, li := range lis {
		if got := li.(*BlockBox).Marker; got != want[i] {
			t.Errorf("item %d marker = %q, want %q", i, got, want[i])
		}
		if li.Bounds().X != 24 {
			t.Errorf("item %d x = %.1f, want list padding 24", i, li.Bounds().X)
		}
	}
}

func TestLayout_DisplayNoneAndImages(t *testing.T) {
	root := layoutHTML(t, `<div style="display: none">gone</div><img src="logo.png" width="100" height="50">`, 60)
	if len(findAll(root, "div")) != 0 {
		t.Error("display:none produced a box")
	}
	if len(root.Children) != 1 {
		t.Fatalf("got %d children, want the image only", len(root.Children))
	}
	img, ok := root.Children[0].(*ImageBox)
	if !ok {
		t.Fatalf("child is %T", root.Children[0])
	}
	if !near(img.Width, 60) || !near(img.Height, 30) {
		t.Errorf("image = %.1fx%.1f, want scaled to 60x30", img.Width, img.Height)
	}
	if img.Src != "logo.png" || !img.BreakUnit() {
		t.Errorf("unexpected image box %+v", img)
	}
}

func TestBlockBox_Translate(t *testing.T) {
	root := layoutHTML(t, `<p style="margin: 0">x</p>`, 100)
	tb := textBoxes(root)[0]
	y, base := tb.Y, tb.Baseline
	root.Translate(5, 7)
	if root.X != 5 || root.Y != 7 {
		t.Errorf("root at (%.1f, %.1f)", root.X, root.Y)
	}
	if !near(tb.Y, y+7) || !near(tb.Baseline, base+7) {
		t.Error("descendants not moved")
	}
}

func TestParseLength(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"12px", 12},
		{"12pt", 12},
		{"1in", 72},
		{"25.4mm", 72},
		{"2.54cm", 72},
		{"50%", 100},
		{"2em", 20},
		{"2rem", 24},
		{"auto", -1},
		{"bogus", -1},
		{"0", 0},
		{"thin", 0.5},
		{"7", 7},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseLength(tt.in, 200, 10, -1); !near(got, tt.want) {
				t.Errorf("parseLength(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseBoxShorthand(t *testing.T) {
	tests := []struct {
		in   string
		want Edges
	}{
		{"4pt", Edges{4, 4, 4, 4}},
		{"1pt 2pt", Edges{1, 2, 1, 2}},
		{"1pt 2pt 3pt", Edges{1, 2, 3, 2}},
		{"1pt 2pt 3pt 4pt", Edges{1, 2, 3, 4}},
		{"", Edges{}},
	}
	for _, tt := range tests {
		if got := parseBoxShorthand(tt.in, 100, 10); got != tt.want {
			t.Errorf("parseBoxShorthand(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestResolveFontSize(t *testing.T) {
	if got := resolveFontSize("2em", 11); got != 22 {
		t.Errorf("2em of 11 = %v", got)
	}
	if got := resolveFontSize("150%", 10); got != 15 {
		t.Errorf("150%% of 10 = %v", got)
	}
	if got := resolveFontSize("garbage", 9); got != 9 {
		t.Errorf("garbage should inherit, got %v", got)
	}
}
