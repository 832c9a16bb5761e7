package layout

import (
	"strings"
	"unicode"

	xhtml "golang.org/x/net/html"

	"github.com/gompdf/folio/internal/parser/html"
	"github.com/gompdf/folio/internal/style"
)

// flow stacks the children of one block vertically. Inline content is
// buffered as runs until the next block-level child or the end of the block.
type flow struct {
	engine *Engine
	parent *BlockBox
	x      float64
	width  float64
	top    float64
	// y is the bottom edge of the last placed box
	y float64
	// margin is the bottom margin of the last block, collapsed with the next
	// top margin
	margin float64
	runs   []inlineRun
}

// inlineRun represents a run of text sharing one style
type inlineRun struct {
	text  string
	style style.ComputedStyle
	br    bool
}

func (f *flow) add(n *html.Node) {
	switch n.Type {
	case xhtml.TextNode:
		f.runs = append(f.runs, inlineRun{text: n.Data, style: f.engine.styleOf(n.Parent)})
		return
	case xhtml.ElementNode:
	default:
		return
	}

	tag := n.Tag()
	st := f.engine.styleOf(n)
	if skipped[tag] || st.Get("display") == "none" {
		return
	}
	switch {
	case tag == "br":
		f.runs = append(f.runs, inlineRun{style: st, br: true})
	case tag == "img":
		f.flushInline()
		f.placeImage(n, st)
	case isBlock(tag, st):
		f.flushInline()
		f.placeBlock(n, st)
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f.add(c)
		}
	}
}

func (f *flow) placeBlock(n *html.Node, st style.ComputedStyle) {
	b := newBlockBox(n, st, f.width)
	b.Marker = listMarker(n, st)
	b.X = f.x + b.Margin.Left
	b.Y = f.y + max(f.margin, b.Margin.Top)
	b.Width = max(0, f.width-b.Margin.Horizontal())
	if w := parseLength(st.Get("width"), f.width, fontSize(st), 0); w > 0 {
		if st.Get("box-sizing") != "border-box" {
			w += b.Padding.Horizontal() + b.Border.Horizontal()
		}
		b.Width = min(w, b.Width)
	}

	f.engine.layoutBlock(b)
	f.parent.Children = append(f.parent.Children, b)
	f.y = b.Y + b.Height
	f.margin = b.Margin.Bottom
}

func (f *flow) placeImage(n *html.Node, st style.ComputedStyle) {
	img := newImageBox(n, st, f.width)
	img.X = f.x + img.Margin.Left
	img.Y = f.y + max(f.margin, img.Margin.Top)
	switch f.parent.Style.Get("text-align") {
	case "center":
		img.X = f.x + max(0, (f.width-img.Width)/2)
	case "right", "end":
		img.X = f.x + max(0, f.width-img.Width-img.Margin.Right)
	}
	f.parent.Children = append(f.parent.Children, img)
	f.y = img.Y + img.Height
	f.margin = img.Margin.Bottom
}

// token is a measured word, collapsed space or forced line break
type token struct {
	text  string
	run   int
	style style.ComputedStyle
	fs    float64
	lh    float64
	width float64
	space bool
	br    bool
}

// flushInline wraps the buffered runs into line boxes.
func (f *flow) flushInline() {
	runs := f.runs
	f.runs = nil
	if !anyContent(runs) {
		return
	}

	y := f.y + f.margin
	f.margin = 0
	align := f.parent.Style.Get("text-align")
	for _, line := range breakLines(tokenize(runs), f.width) {
		y = f.placeLine(line, y, align)
	}
	f.y = y
}

func anyContent(runs []inlineRun) bool {
	for _, r := range runs {
		if r.br || hasContent(r.text) {
			return true
		}
	}
	return false
}

func preformatted(st style.ComputedStyle) bool {
	switch st.Get("white-space") {
	case "pre", "pre-wrap", "pre-line":
		return true
	}
	return false
}

func tokenize(runs []inlineRun) []token {
	var out []token
	for i, r := range runs {
		fs := fontSize(r.style)
		base := token{run: i, style: r.style, fs: fs, lh: lineHeight(r.style, fs)}
		if r.br {
			tk := base
			tk.br = true
			out = append(out, tk)
			continue
		}
		if preformatted(r.style) {
			for j, line := range strings.Split(r.text, "\n") {
				if j > 0 {
					tk := base
					tk.br = true
					out = append(out, tk)
				}
				if line == "" {
					continue
				}
				tk := base
				tk.text = strings.ReplaceAll(line, "\t", "    ")
				tk.width = measureTextWidth(tk.text, fs, r.style)
				out = append(out, tk)
			}
			continue
		}
		for _, t := range splitTokens(r.text) {
			tk := base
			tk.text = t
			tk.space = t == " "
			tk.width = measureTextWidth(t, fs, r.style)
			out = append(out, tk)
		}
	}
	return out
}

// breakLines fills lines greedily. Lines only break at collapsed whitespace or
// forced breaks; a word wider than the line gets a line of its own.
func breakLines(tokens []token, maxWidth float64) [][]token {
	var lines [][]token
	var line []token
	width := 0.0
	var pending *token

	emit := func() {
		lines = append(lines, line)
		line = nil
		width = 0
	}

	for i := range tokens {
		tk := tokens[i]
		switch {
		case tk.br:
			line = append(line, tk)
			emit()
			pending = nil
		case tk.space:
			if len(line) > 0 {
				pending = &tokens[i]
			}
		default:
			if pending != nil {
				if width+pending.width+tk.width > maxWidth {
					emit()
				} else {
					line = append(line, *pending)
					width += pending.width
				}
				pending = nil
			}
			line = append(line, tk)
			width += tk.width
		}
	}
	if len(line) > 0 {
		emit()
	}
	return lines
}

// placeLine emits one TextBox per run on the line and returns the bottom of
// the line box.
func (f *flow) placeLine(line []token, y float64, align string) float64 {
	maxFs, maxLh, width := 0.0, 0.0, 0.0
	for _, tk := range line {
		maxFs = max(maxFs, tk.fs)
		maxLh = max(maxLh, tk.lh)
		width += tk.width
	}
	if maxLh <= 0 {
		return y
	}
	baseline := y + (maxLh-maxFs)/2 + 0.8*maxFs

	x := f.x
	switch align {
	case "right", "end":
		x += max(0, f.width-width)
	case "center":
		x += max(0, (f.width-width)/2)
	}

	var cur *TextBox
	curRun := -1
	for _, tk := range line {
		if tk.br {
			continue
		}
		if cur == nil || tk.run != curRun {
			cur = &TextBox{
				Style:    tk.style,
				FontSize: tk.fs,
				X:        x,
				Y:        y,
				Height:   maxLh,
				Baseline: baseline,
			}
			curRun = tk.run
			f.parent.Children = append(f.parent.Children, cur)
		}
		cur.Text += tk.text
		cur.Width += tk.width
		x += tk.width
	}
	return y + maxLh
}

// splitTokens splits text into words and single collapsed spaces
func splitTokens(s string) []string {
	var tokens []string
	var cur strings.Builder
	lastSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if cur.Len() > 0 {
				tokens = append(tokens, cur.String())
				cur.Reset()
			}
			if !lastSpace {
				tokens = append(tokens, " ")
			}
			lastSpace = true
			continue
		}
		cur.WriteRune(r)
		lastSpace = false
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens
}
