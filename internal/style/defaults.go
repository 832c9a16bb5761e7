package style

import "github.com/gompdf/folio/internal/parser/css"

// DefaultUserAgentCSS is the built-in stylesheet. Besides the usual element
// defaults it marks the atomic units of a report (rows, list items,
// headings, paragraphs, figures and signature blocks) as unbreakable.
const DefaultUserAgentCSS = `
body { font-family: Helvetica; font-size: 11pt; line-height: 1.3; color: #000000; }
h1 { font-size: 2em; font-weight: bold; margin: 0.67em 0; }
h2 { font-size: 1.5em; font-weight: bold; margin: 0.75em 0; }
h3 { font-size: 1.17em; font-weight: bold; margin: 0.83em 0; }
h4 { font-weight: bold; margin: 1.12em 0; }
h5 { font-size: 0.83em; font-weight: bold; margin: 1.5em 0; }
h6 { font-size: 0.75em; font-weight: bold; margin: 1.67em 0; }
p { margin: 0.6em 0; }
b, strong, th { font-weight: bold; }
i, em { font-style: italic; }
a { color: #0000EE; }
pre, code { font-family: Courier; }
pre { white-space: pre; margin: 0.6em 0; }
blockquote { margin: 0.6em 24pt; }
ul, ol { margin: 0.6em 0; padding-left: 24pt; }
table { margin: 0.6em 0; }
th, td { border: 0.5pt solid #999999; padding: 3pt 4pt; }
th { background-color: #f2f2f2; }
hr { border-top: 0.5pt solid #000000; margin: 6pt 0; }
tr, li, p, h1, h2, h3, h4, h5, h6, figure, blockquote, pre, img { break-inside: avoid; }
.signature, .field { break-inside: avoid; }
`

// DefaultUserAgentStyles returns the parsed built-in stylesheet
func DefaultUserAgentStyles() *css.Stylesheet {
	sheet, err := css.NewParser().ParseString(DefaultUserAgentCSS)
	if err != nil {
		panic("style: built-in stylesheet does not parse: " + err.Error())
	}
	return sheet
}
