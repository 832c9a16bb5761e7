package layout

import (
	"strconv"
	"strings"

	"github.com/gompdf/folio/internal/style"
)

const (
	// DefaultFontSize applies when no rule sets a font size
	DefaultFontSize = 12.0
	// rootFontSize is the reference for rem units
	rootFontSize = 12.0
)

// units maps absolute CSS units to points. px is taken as a point.
var units = []struct {
	suffix string
	factor float64
}{
	{"px", 1},
	{"pt", 1},
	{"pc", 12},
	{"in", 72},
	{"cm", 72 / 2.54},
	{"mm", 72 / 25.4},
}

// parseLength parses a CSS length. Percentages resolve against container and
// em against fontSize. Anything unparseable yields def.
func parseLength(value string, container, fontSize, def float64) float64 {
	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "", "auto", "none", "normal":
		return def
	case "0":
		return 0
	case "thin":
		return 0.5
	case "medium":
		return 1
	case "thick":
		return 2
	}

	num := func(s string) (float64, bool) {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}

	if s, ok := strings.CutSuffix(v, "%"); ok {
		if f, ok := num(s); ok {
			return container * f / 100
		}
		return def
	}
	// rem before em, both end in "em"
	if s, ok := strings.CutSuffix(v, "rem"); ok {
		if f, ok := num(s); ok {
			return f * rootFontSize
		}
		return def
	}
	if s, ok := strings.CutSuffix(v, "em"); ok {
		if f, ok := num(s); ok {
			return f * fontSize
		}
		return def
	}
	for _, u := range units {
		if s, ok := strings.CutSuffix(v, u.suffix); ok {
			if f, ok := num(s); ok {
				return f * u.factor
			}
			return def
		}
	}
	if f, ok := num(v); ok {
		return f
	}
	return def
}

// parseBoxShorthand parses one to four values in CSS order and returns
// (top, right, bottom, left).
func parseBoxShorthand(value string, container, fontSize float64) Edges {
	parts := strings.Fields(value)
	to := func(s string) float64 { return parseLength(s, container, fontSize, 0) }
	switch len(parts) {
	case 0:
		return Edges{}
	case 1:
		a := to(parts[0])
		return Edges{a, a, a, a}
	case 2:
		tb, rl := to(parts[0]), to(parts[1])
		return Edges{tb, rl, tb, rl}
	case 3:
		r := to(parts[1])
		return Edges{to(parts[0]), r, to(parts[2]), r}
	default:
		return Edges{to(parts[0]), to(parts[1]), to(parts[2]), to(parts[3])}
	}
}

// edges resolves prefix-side-suffix longhands (margin-top, border-top-width)
// over the prefix shorthand. Negative values are clamped to zero.
func edges(st style.ComputedStyle, prefix, suffix string, container, fontSize float64) Edges {
	var e Edges
	if suffix == "" {
		e = parseBoxShorthand(st.Get(prefix), container, fontSize)
	}
	for _, side := range []struct {
		name string
		dst  *float64
	}{
		{"top", &e.Top}, {"right", &e.Right}, {"bottom", &e.Bottom}, {"left", &e.Left},
	} {
		if v := st.Get(prefix + "-" + side.name + suffix); v != "" {
			*side.dst = parseLength(v, container, fontSize, 0)
		}
		*side.dst = max(0, *side.dst)
	}
	return e
}

// fontSize returns the resolved font size of a computed style
func fontSize(st style.ComputedStyle) float64 {
	fs := parseLength(st.Get("font-size"), DefaultFontSize, DefaultFontSize, DefaultFontSize)
	if fs <= 0 {
		return DefaultFontSize
	}
	return fs
}

// lineHeight returns the line box height for a run of text
func lineHeight(st style.ComputedStyle, fs float64) float64 {
	v := st.Get("line-height")
	if v == "" || v == "normal" {
		return 1.2 * fs
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f * fs
	}
	if lh := parseLength(v, fs, fs, 1.2*fs); lh > 0 {
		return lh
	}
	return 1.2 * fs
}

// resolveFontSize turns a declared font size into an absolute one given the
// parent's font size.
func resolveFontSize(value string, parent float64) float64 {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "smaller":
		return parent / 1.2
	case "larger":
		return parent * 1.2
	case "small":
		return 10
	case "medium":
		return DefaultFontSize
	case "large":
		return 14
	case "x-large":
		return 18
	}
	fs := parseLength(value, parent, parent, parent)
	if fs <= 0 {
		return parent
	}
	return fs
}
