package css

import (
	"errors"
	"io"
	"strings"
)

// ErrUnbalanced is returned for a stylesheet whose braces do not match
var ErrUnbalanced = errors.New("unbalanced braces in stylesheet")

// Parser represents a CSS parser
type Parser struct{}

// Rule represents a CSS rule
type Rule struct {
	Selectors    []string
	Declarations []*Declaration
}

// Declaration represents a CSS declaration (property-value pair)
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Stylesheet represents a parsed CSS stylesheet
type Stylesheet struct {
	Rules []*Rule
}

// NewParser creates a new CSS parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseString parses CSS from a string
func (p *Parser) ParseString(content string) (*Stylesheet, error) {
	return p.Parse(strings.NewReader(content))
}

// Parse parses CSS from an io.Reader. At-rules (@page, @media, @font-face)
// are skipped; paged layout is configured through options instead.
func (p *Parser) Parse(r io.Reader) (*Stylesheet, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	blocks, err := splitRules(removeComments(string(content)))
	if err != nil {
		return nil, err
	}

	sheet := &Stylesheet{}
	for _, b := range blocks {
		if strings.HasPrefix(b.prelude, "@") {
			continue
		}
		selectors := parseSelectors(b.prelude)
		if len(selectors) == 0 {
			continue
		}
		sheet.Rules = append(sheet.Rules, &Rule{
			Selectors:    selectors,
			Declarations: ParseDeclarations(b.body),
		})
	}
	return sheet, nil
}

// parseSelectors parses CSS selectors
func parseSelectors(selectorStr string) []string {
	selectors := strings.Split(selectorStr, ",")
	result := make([]string, 0, len(selectors))

	for _, selector := range selectors {
		selector = strings.TrimSpace(selector)
		if selector != "" {
			result = append(result, selector)
		}
	}

	return result
}

// ParseDeclarations parses the body of a rule or a style attribute
func ParseDeclarations(declarationsStr string) []*Declaration {
	declarationStrings := strings.Split(declarationsStr, ";")
	result := make([]*Declaration, 0, len(declarationStrings))

	for _, declStr := range declarationStrings {
		property, value, ok := strings.Cut(declStr, ":")
		if !ok {
			continue
		}
		property = strings.ToLower(strings.TrimSpace(property))
		value = strings.TrimSpace(value)
		if property == "" {
			continue
		}

		important := false
		if v, found := strings.CutSuffix(value, "!important"); found {
			important = true
			value = strings.TrimSpace(v)
		}

		result = append(result, &Declaration{
			Property:  property,
			Value:     value,
			Important: important,
		})
	}

	return result
}

// removeComments removes CSS comments
func removeComments(content string) string {
	var result strings.Builder
	for {
		start := strings.Index(content, "/*")
		if start < 0 {
			result.WriteString(content)
			break
		}
		result.WriteString(content[:start])
		end := strings.Index(content[start+2:], "*/")
		if end < 0 {
			break
		}
		content = content[start+2+end+2:]
	}
	return result.String()
}

type block struct {
	prelude string
	body    string
}

// splitRules splits CSS content into top-level blocks. Nested blocks (inside
// @media) stay in the body of their parent and are dropped with it.
func splitRules(content string) ([]block, error) {
	var blocks []block
	depth := 0
	preludeStart, bodyStart := 0, 0

	for i := 0; i < len(content); i++ {
		switch content[i] {
		case '{':
			if depth == 0 {
				bodyStart = i + 1
			}
			depth++
		case '}':
			depth--
			if depth < 0 {
				return nil, ErrUnbalanced
			}
			if depth == 0 {
				blocks = append(blocks, block{
					prelude: strings.TrimSpace(content[preludeStart : bodyStart-1]),
					body:    content[bodyStart:i],
				})
				preludeStart = i + 1
			}
		case ';':
			// statement at-rules such as @import carry no block
			if depth == 0 {
				preludeStart = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, ErrUnbalanced
	}
	return blocks, nil
}
