package style

import (
	"strings"

	"github.com/gompdf/folio/internal/parser/css"
	"github.com/gompdf/folio/internal/parser/html"
	xhtml "golang.org/x/net/html"
)

// Specificity represents the specificity of a CSS selector
type Specificity struct {
	ID      int
	Class   int
	Element int
}

// StyleProperty represents a computed style property
type StyleProperty struct {
	Name        string
	Value       string
	Important   bool
	Source      Source
	Specificity Specificity
}

// Source represents the source of a style property
type Source int

const (
	SourceUserAgent Source = iota
	SourceAuthor
	SourceInline
)

// ComputedStyle represents the computed style for an element
type ComputedStyle map[string]StyleProperty

// Get returns the trimmed value of a property, or "" when unset
func (cs ComputedStyle) Get(name string) string {
	if cs == nil {
		return ""
	}
	return strings.TrimSpace(cs[name].Value)
}

// BreakInsideAvoid reports whether the element asked not to be split
// across pages.
func (cs ComputedStyle) BreakInsideAvoid() bool {
	for _, name := range []string{"break-inside", "page-break-inside"} {
		switch strings.ToLower(cs.Get(name)) {
		case "avoid", "avoid-page":
			return true
		}
	}
	return false
}

// inherited lists the properties children take from their parent when they
// do not set them.
var inherited = map[string]bool{
	"color":           true,
	"font-family":     true,
	"font-size":       true,
	"font-style":      true,
	"font-weight":     true,
	"line-height":     true,
	"text-align":      true,
	"white-space":     true,
	"direction":       true,
	"list-style-type": true,
}

// Inherit returns the style of an element whose own declarations are own and
// whose parent computed to parent.
func Inherit(parent, own ComputedStyle) ComputedStyle {
	out := make(ComputedStyle, len(own)+len(inherited))
	for k, v := range parent {
		if inherited[k] {
			out[k] = v
		}
	}
	for k, v := range own {
		out[k] = v
	}
	return out
}

// StyleEngine handles the CSS cascade and style computation
type StyleEngine struct {
	userAgentStyles *css.Stylesheet
	authorStyles    []*css.Stylesheet
}

// NewStyleEngine creates a style engine. A nil user-agent sheet selects the
// built-in one.
func NewStyleEngine(userAgent *css.Stylesheet) *StyleEngine {
	if userAgent == nil {
		userAgent = DefaultUserAgentStyles()
	}
	return &StyleEngine{userAgentStyles: userAgent}
}

// AddStylesheet adds an author stylesheet to the style engine
func (e *StyleEngine) AddStylesheet(stylesheet *css.Stylesheet) {
	if stylesheet != nil {
		e.authorStyles = append(e.authorStyles, stylesheet)
	}
}

// ComputeStyles computes the declared (not inherited) styles for all elements
// in the document
func (e *StyleEngine) ComputeStyles(doc *html.Document) map[*html.Node]ComputedStyle {
	result := make(map[*html.Node]ComputedStyle)
	if doc != nil {
		e.computeStylesRecursive(doc.Root, result)
	}
	return result
}

func (e *StyleEngine) computeStylesRecursive(node *html.Node, result map[*html.Node]ComputedStyle) {
	if node == nil {
		return
	}

	if node.Type == xhtml.ElementNode {
		result[node] = e.computeStyleForElement(node)
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		e.computeStylesRecursive(child, result)
	}
}

func (e *StyleEngine) computeStyleForElement(node *html.Node) ComputedStyle {
	style := make(ComputedStyle)

	e.applyStylesheet(style, node, e.userAgentStyles, SourceUserAgent)
	for _, stylesheet := range e.authorStyles {
		e.applyStylesheet(style, node, stylesheet, SourceAuthor)
	}
	if v, ok := node.AttrValue("style"); ok {
		applyDeclarations(style, css.ParseDeclarations(v), Specificity{ID: 1}, SourceInline)
	}

	return style
}

func (e *StyleEngine) applyStylesheet(style ComputedStyle, node *html.Node, stylesheet *css.Stylesheet, source Source) {
	for _, rule := range stylesheet.Rules {
		for _, selector := range rule.Selectors {
			if selectorMatches(node, selector) {
				applyDeclarations(style, rule.Declarations, calculateSpecificity(selector), source)
			}
		}
	}
}

// applyDeclarations applies declarations in cascade order: importance, then
// origin, then specificity, then source order.
func applyDeclarations(style ComputedStyle, declarations []*css.Declaration, specificity Specificity, source Source) {
	for _, decl := range declarations {
		for _, d := range expandShorthand(decl) {
			existing, exists := style[d.Property]
			if exists && !wins(d.Important, source, specificity, existing) {
				continue
			}
			style[d.Property] = StyleProperty{
				Name:        d.Property,
				Value:       d.Value,
				Important:   d.Important,
				Source:      source,
				Specificity: specificity,
			}
		}
	}
}

func wins(important bool, source Source, spec Specificity, existing StyleProperty) bool {
	if important != existing.Important {
		return important
	}
	if source != existing.Source {
		return source > existing.Source
	}
	return compareSpecificity(spec, existing.Specificity) >= 0
}

// expandShorthand splits the border and background shorthands into the
// longhands the layout engine and renderer read.
func expandShorthand(decl *css.Declaration) []*css.Declaration {
	mk := func(prop, val string) *css.Declaration {
		return &css.Declaration{Property: prop, Value: val, Important: decl.Important}
	}
	switch decl.Property {
	case "border", "border-top", "border-right", "border-bottom", "border-left":
		width, color := "", ""
		for _, part := range strings.Fields(decl.Value) {
			switch {
			case part == "none" || part == "0":
				width = "0"
			case isLength(part):
				width = part
			case strings.HasPrefix(part, "#") || strings.HasPrefix(part, "rgb") || isColorName(part):
				color = part
			}
		}
		if width == "" {
			width = "1px"
		}
		sides := []string{"top", "right", "bottom", "left"}
		if decl.Property != "border" {
			sides = []string{strings.TrimPrefix(decl.Property, "border-")}
		}
		out := []*css.Declaration{}
		for _, s := range sides {
			out = append(out, mk("border-"+s+"-width", width))
		}
		if color != "" {
			out = append(out, mk("border-color", color))
		}
		return out
	case "border-width":
		out := []*css.Declaration{}
		for _, s := range []string{"top", "right", "bottom", "left"} {
			out = append(out, mk("border-"+s+"-width", decl.Value))
		}
		return out
	case "background":
		for _, part := range strings.Fields(decl.Value) {
			if strings.HasPrefix(part, "#") || strings.HasPrefix(part, "rgb") || isColorName(part) {
				return []*css.Declaration{mk("background-color", part)}
			}
		}
		return nil
	}
	return []*css.Declaration{decl}
}

func isLength(s string) bool {
	for _, unit := range []string{"px", "pt", "em", "rem", "mm", "cm", "in"} {
		if strings.HasSuffix(s, unit) {
			return true
		}
	}
	switch s {
	case "thin", "medium", "thick":
		return true
	}
	return false
}

func isColorName(s string) bool {
	_, ok := namedColors[strings.ToLower(s)]
	return ok
}

// selectorMatches checks if an element matches a descendant selector chain
func selectorMatches(node *html.Node, selector string) bool {
	parts := strings.Fields(selector)
	if len(parts) == 0 || node == nil {
		return false
	}
	if !matchCompoundSelector(node, parts[len(parts)-1]) {
		return false
	}

	current := node.Parent
	for i := len(parts) - 2; i >= 0; i-- {
		found := false
		for anc := current; anc != nil; anc = anc.Parent {
			if anc.Type == xhtml.ElementNode && matchCompoundSelector(anc, parts[i]) {
				found = true
				current = anc.Parent
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// matchCompoundSelector matches tag, #id and .class combinations such as
// tr, .signature or div#sig.block. Attributes and pseudo-classes never match.
func matchCompoundSelector(node *html.Node, sel string) bool {
	if node == nil || node.Type != xhtml.ElementNode || sel == "" {
		return false
	}
	if strings.ContainsAny(sel, "[:>+~") {
		return false
	}

	var wantTag, wantID string
	var wantClasses []string

	i := 0
	if sel[0] != '.' && sel[0] != '#' {
		j := strings.IndexAny(sel, ".#")
		if j < 0 {
			j = len(sel)
		}
		wantTag = sel[:j]
		i = j
	}
	for i < len(sel) {
		j := i + 1
		for j < len(sel) && sel[j] != '.' && sel[j] != '#' {
			j++
		}
		if sel[i] == '#' {
			wantID = sel[i+1 : j]
		} else {
			wantClasses = append(wantClasses, sel[i+1:j])
		}
		i = j
	}

	if wantTag != "" && wantTag != "*" && !strings.EqualFold(wantTag, node.Data) {
		return false
	}
	if wantID != "" {
		if id, ok := node.AttrValue("id"); !ok || id != wantID {
			return false
		}
	}
	for _, c := range wantClasses {
		if !node.HasClass(c) {
			return false
		}
	}
	return true
}

// calculateSpecificity calculates the specificity of a CSS selector
func calculateSpecificity(selector string) Specificity {
	var s Specificity
	for _, part := range strings.Fields(selector) {
		s.ID += strings.Count(part, "#")
		s.Class += strings.Count(part, ".")
		if part != "" && part[0] != '.' && part[0] != '#' && part[0] != '*' {
			s.Element++
		}
	}
	return s
}

// compareSpecificity compares two specificities
func compareSpecificity(a, b Specificity) int {
	if a.ID != b.ID {
		return a.ID - b.ID
	}
	if a.Class != b.Class {
		return a.Class - b.Class
	}
	return a.Element - b.Element
}
