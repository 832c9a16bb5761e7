// Package pdf draws page views with fpdf. Each page repeats the header,
// shows one slice of the shared body tree through a clipped viewport and
// ends with the footer.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"codeberg.org/go-pdf/fpdf"

	"github.com/gompdf/folio/internal/geometry"
	"github.com/gompdf/folio/internal/layout"
	"github.com/gompdf/folio/internal/render"
	"github.com/gompdf/folio/internal/res"
	"github.com/gompdf/folio/internal/style"
)

// Frames are the three laid-out trees, each rooted at the origin. Header and
// Footer may be nil.
type Frames struct {
	Header *layout.BlockBox
	Footer *layout.BlockBox
	Body   *layout.BlockBox
}

// RenderOptions contains document-level options for rendering
type RenderOptions struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
	Creator  string
	// PageWidth and PageHeight are the sheet size in points, already
	// oriented
	PageWidth  float64
	PageHeight float64
}

// Renderer handles rendering to PDF
type Renderer struct {
	// Loader resolves <img> sources. Images are skipped without one.
	Loader *res.Loader
	Logger *slog.Logger
	// RenderBackgrounds controls whether box backgrounds are painted
	RenderBackgrounds bool
	// RenderBorders controls whether box borders are painted
	RenderBorders bool
	// DebugDrawBoxes outlines the viewport and frames on every page
	DebugDrawBoxes bool
}

// NewRenderer creates a new PDF renderer
func NewRenderer(loader *res.Loader) *Renderer {
	return &Renderer{
		Loader:            loader,
		Logger:            slog.Default(),
		RenderBackgrounds: true,
		RenderBorders:     true,
	}
}

// page holds per-document drawing state
type page struct {
	ctx    context.Context
	pdf    *fpdf.Fpdf
	tr     func(string) string
	images map[string]bool
	// clip is the visible vertical band for the tree being drawn
	clipTop, clipBottom float64
}

// Render writes one PDF page per view to w. The layout trees are only read.
func (r *Renderer) Render(ctx context.Context, w io.Writer, views []render.PageView, frames Frames, options RenderOptions) error {
	if options.PageWidth <= 0 || options.PageHeight <= 0 {
		return fmt.Errorf("failed to render: invalid page size %.2fx%.2f", options.PageWidth, options.PageHeight)
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: options.PageWidth, Ht: options.PageHeight},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetTitle(options.Title, true)
	pdf.SetAuthor(options.Author, true)
	pdf.SetSubject(options.Subject, true)
	pdf.SetKeywords(options.Keywords, true)
	pdf.SetCreator(options.Creator, true)
	pdf.SetFont("Helvetica", "", layout.DefaultFontSize)

	pg := &page{
		ctx:    ctx,
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		images: make(map[string]bool),
	}

	for _, v := range views {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("failed to render page %d: %w", v.Index+1, err)
		}
		pdf.AddPage()
		r.drawFrame(pg, frames.Header, v.Header)
		if frames.Body != nil && v.Viewport.Height > 0 {
			vp := v.Viewport
			pdf.ClipRect(vp.X, vp.Y, vp.Width, vp.Height, false)
			pg.clipTop, pg.clipBottom = vp.Y, vp.Bottom()
			r.drawBox(pg, frames.Body, vp.X, v.Offset)
			pdf.ClipEnd()
		}
		r.drawFrame(pg, frames.Footer, v.Footer)
		if r.DebugDrawBoxes {
			drawOutline(pdf, v.Header, 0, 0, 200)
			drawOutline(pdf, v.Viewport, 200, 0, 0)
			drawOutline(pdf, v.Footer, 0, 150, 0)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	r.logger().Debug("pdf: rendered", "pages", len(views))
	return nil
}

func (r *Renderer) drawFrame(pg *page, tree *layout.BlockBox, at geometry.Rect) {
	if tree == nil || at.Height <= 0 {
		return
	}
	pg.clipTop, pg.clipBottom = at.Y, at.Bottom()
	r.drawBox(pg, tree, at.X, at.Y)
}

// drawBox draws b translated by (dx, dy)
func (r *Renderer) drawBox(pg *page, b layout.Box, dx, dy float64) {
	switch box := b.(type) {
	case *layout.BlockBox:
		r.drawBlock(pg, box, dx, dy)
	case *layout.TextBox:
		if visible(pg, box.Bounds(), dy) {
			r.drawText(pg, box, dx, dy)
		}
	case *layout.ImageBox:
		if visible(pg, box.Bounds(), dy) {
			r.drawImage(pg, box, dx, dy)
		}
	default:
		r.logger().Debug("pdf: unknown box type", "type", fmt.Sprintf("%T", b))
	}
}

func visible(pg *page, rect geometry.Rect, dy float64) bool {
	return rect.Y+dy < pg.clipBottom && rect.Bottom()+dy > pg.clipTop
}

func (r *Renderer) drawBlock(pg *page, b *layout.BlockBox, dx, dy float64) {
	pdf := pg.pdf
	x, y := b.X+dx, b.Y+dy

	if r.RenderBackgrounds {
		if c, ok := style.ParseColor(b.Style.Get("background-color")); ok {
			pdf.SetFillColor(c[0], c[1], c[2])
			pdf.Rect(x, y, b.Width, b.Height, "F")
		}
	}
	if r.RenderBorders {
		drawBorders(pdf, b, x, y)
	}
	if b.Marker != "" {
		r.drawMarker(pg, b, dx, dy)
	}
	for _, c := range b.Children {
		r.drawBox(pg, c, dx, dy)
	}
}

// drawBorders strokes each side that has a width
func drawBorders(pdf *fpdf.Fpdf, b *layout.BlockBox, x, y float64) {
	c, ok := style.ParseColor(b.Style.Get("border-color"))
	if !ok {
		c = style.Color{0, 0, 0}
	}
	pdf.SetDrawColor(c[0], c[1], c[2])

	right, bottom := x+b.Width, y+b.Height
	sides := []struct {
		width          float64
		x1, y1, x2, y2 float64
	}{
		{b.Border.Top, x, y + b.Border.Top/2, right, y + b.Border.Top/2},
		{b.Border.Bottom, x, bottom - b.Border.Bottom/2, right, bottom - b.Border.Bottom/2},
		{b.Border.Left, x + b.Border.Left/2, y, x + b.Border.Left/2, bottom},
		{b.Border.Right, right - b.Border.Right/2, y, right - b.Border.Right/2, bottom},
	}
	for _, s := range sides {
		if s.width <= 0 {
			continue
		}
		pdf.SetLineWidth(s.width)
		pdf.Line(s.x1, s.y1, s.x2, s.y2)
	}
}

func setFont(pg *page, st style.ComputedStyle, size float64) {
	fam, fs := layout.ResolveFont(st)
	pg.pdf.SetFont(fam, fs, size)
	c, ok := style.ParseColor(st.Get("color"))
	if !ok {
		c = style.Color{0, 0, 0}
	}
	pg.pdf.SetTextColor(c[0], c[1], c[2])
}

func (r *Renderer) drawText(pg *page, t *layout.TextBox, dx, dy float64) {
	if t.Text == "" {
		return
	}
	if r.RenderBackgrounds {
		if c, ok := style.ParseColor(t.Style.Get("background-color")); ok {
			pg.pdf.SetFillColor(c[0], c[1], c[2])
			pg.pdf.Rect(t.X+dx, t.Y+dy, t.Width, t.Height, "F")
		}
	}
	setFont(pg, t.Style, t.FontSize)
	pg.pdf.Text(t.X+dx, t.Baseline+dy, pg.tr(t.Text))
}

// drawMarker draws a list marker on the baseline of the item's first line
func (r *Renderer) drawMarker(pg *page, b *layout.BlockBox, dx, dy float64) {
	first := firstText(b)
	if first == nil || !visible(pg, first.Bounds(), dy) {
		return
	}
	setFont(pg, b.Style, first.FontSize)
	w := pg.pdf.GetStringWidth(pg.tr(b.Marker))
	pg.pdf.Text(b.X+dx-w-first.FontSize*0.5, first.Baseline+dy, pg.tr(b.Marker))
}

func firstText(b *layout.BlockBox) *layout.TextBox {
	for _, c := range b.Children {
		switch v := c.(type) {
		case *layout.TextBox:
			return v
		case *layout.BlockBox:
			if t := firstText(v); t != nil {
				return t
			}
		}
	}
	return nil
}

func (r *Renderer) drawImage(pg *page, img *layout.ImageBox, dx, dy float64) {
	name, ok := r.registerImage(pg, img.Src)
	if !ok {
		pg.pdf.SetDrawColor(180, 180, 180)
		pg.pdf.SetLineWidth(0.5)
		pg.pdf.Rect(img.X+dx, img.Y+dy, img.Width, img.Height, "D")
		return
	}
	pg.pdf.ImageOptions(name, img.X+dx, img.Y+dy, img.Width, img.Height, false,
		fpdf.ImageOptions{AllowNegativePosition: true}, 0, "")
}

// registerImage loads src once per document. Formats fpdf cannot embed are
// re-encoded as PNG.
func (r *Renderer) registerImage(pg *page, src string) (string, bool) {
	if ok, seen := pg.images[src]; seen {
		return src, ok
	}
	pg.images[src] = false
	if r.Loader == nil || src == "" {
		return "", false
	}

	img, err := r.Loader.LoadImage(pg.ctx, src)
	if err != nil {
		r.logger().Warn("pdf: image skipped", "src", src, "error", err)
		return "", false
	}
	data, typ, err := embeddable(img)
	if err != nil {
		r.logger().Warn("pdf: image skipped", "src", src, "error", err)
		return "", false
	}
	pg.pdf.RegisterImageOptionsReader(src, fpdf.ImageOptions{ImageType: typ}, bytes.NewReader(data))
	if pg.pdf.Err() {
		r.logger().Warn("pdf: image skipped", "src", src, "error", pg.pdf.Error())
		pg.pdf.ClearError()
		return "", false
	}
	pg.images[src] = true
	return src, true
}

func drawOutline(pdf *fpdf.Fpdf, rect geometry.Rect, red, green, blue int) {
	if rect.Height <= 0 {
		return
	}
	pdf.SetDrawColor(red, green, blue)
	pdf.SetLineWidth(0.5)
	pdf.Rect(rect.X, rect.Y, rect.Width, rect.Height, "D")
}

func (r *Renderer) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}
