package layout

import (
	"strings"
	"sync"

	"codeberg.org/go-pdf/fpdf"

	"github.com/gompdf/folio/internal/style"
)

var (
	measureOnce sync.Once
	measurePDF  *fpdf.Fpdf
	measureTr   func(string) string
	measureMu   sync.Mutex
)

func initMeasurePDF() {
	measurePDF = fpdf.New("P", "pt", "", "")
	measurePDF.SetFont("Helvetica", "", DefaultFontSize)
	measureTr = measurePDF.UnicodeTranslatorFromDescriptor("")
}

// measureTextWidth returns a font-aware width using the core font metrics the
// renderer draws with.
func measureTextWidth(text string, fontSize float64, st style.ComputedStyle) float64 {
	if text == "" || fontSize <= 0 {
		return 0
	}
	measureOnce.Do(initMeasurePDF)
	measureMu.Lock()
	defer measureMu.Unlock()
	fam, sty := ResolveFont(st)
	measurePDF.SetFont(fam, sty, fontSize)
	return measurePDF.GetStringWidth(measureTr(text))
}

// ResolveFont maps CSS font properties to a core PDF font family and style
func ResolveFont(st style.ComputedStyle) (family, fontStyle string) {
	family = "Helvetica"
	if ff := st.Get("font-family"); ff != "" {
		first := strings.Split(ff, ",")[0]
		first = strings.TrimSpace(strings.Trim(strings.TrimSpace(first), "'\""))
		switch strings.ToLower(first) {
		case "times", "times new roman", "serif", "georgia":
			family = "Times"
		case "courier", "courier new", "monospace":
			family = "Courier"
		}
	}
	switch st.Get("font-weight") {
	case "bold", "bolder", "600", "700", "800", "900":
		fontStyle += "B"
	}
	switch st.Get("font-style") {
	case "italic", "oblique":
		fontStyle += "I"
	}
	if strings.Contains(st.Get("text-decoration"), "underline") {
		fontStyle += "U"
	}
	return family, fontStyle
}
