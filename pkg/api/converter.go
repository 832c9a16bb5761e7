package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/gompdf/folio/internal/geometry"
	"github.com/gompdf/folio/internal/layout"
	"github.com/gompdf/folio/internal/pagination"
	"github.com/gompdf/folio/internal/parser/css"
	"github.com/gompdf/folio/internal/parser/html"
	"github.com/gompdf/folio/internal/render"
	"github.com/gompdf/folio/internal/render/pdf"
	"github.com/gompdf/folio/internal/res"
	"github.com/gompdf/folio/internal/style"
)

// Converter lays out documents, paginates them and renders them to PDF.
// A Converter holds no per-document state and is safe for concurrent use.
type Converter struct {
	options Options
	logger  *slog.Logger
}

// New creates a converter with the default options modified by opts
func New(opts ...Option) *Converter {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return NewWithOptions(options)
}

// NewWithOptions creates a converter with the specified options
func NewWithOptions(options Options) *Converter {
	logger := options.Logger
	if logger == nil {
		level := slog.LevelInfo
		if options.Debug {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	return &Converter{options: options, logger: logger}
}

// Options returns the converter options
func (c *Converter) Options() Options {
	return c.options
}

// WithOption returns a new converter with the specified option set
func (c *Converter) WithOption(option Option) *Converter {
	newOptions := c.options
	newOptions.ResourcePaths = append([]string(nil), c.options.ResourcePaths...)
	option(&newOptions)
	return NewWithOptions(newOptions)
}

// Result is a paginated document
type Result struct {
	Plan  *pagination.Plan  `json:"plan"`
	Pages []render.PageView `json:"pages"`
}

// built is a document laid out once for the converter's sheet
type built struct {
	frame  render.Frame
	loader *res.Loader
	header *layout.BlockBox
	footer *layout.BlockBox
	body   *layout.BlockBox
}

func (b *built) frames() pdf.Frames {
	return pdf.Frames{Header: b.header, Footer: b.footer, Body: b.body}
}

// handleOf keeps a missing frame a nil interface rather than a typed nil
func handleOf(b *layout.BlockBox) geometry.Handle {
	if b == nil {
		return nil
	}
	return b
}

// Frame returns the oriented sheet geometry
func (c *Converter) Frame() render.Frame {
	w, h := c.options.PageWidth, c.options.PageHeight
	switch c.options.PageOrientation {
	case PageOrientationLandscape:
		if w < h {
			w, h = h, w
		}
	default:
		if w > h {
			w, h = h, w
		}
	}
	return render.Frame{
		PageWidth:  w,
		PageHeight: h,
		Margins: render.Margins{
			Top:    c.options.MarginTop,
			Right:  c.options.MarginRight,
			Bottom: c.options.MarginBottom,
			Left:   c.options.MarginLeft,
		},
	}
}

func (c *Converter) paginationEngine(frame render.Frame) *pagination.Engine {
	e := pagination.NewEngine()
	e.SetOptions(pagination.Options{
		PageHeight:   frame.PrintableHeight(),
		SafetyBuffer: c.options.SafetyBuffer,
		BreakEpsilon: c.options.BreakEpsilon,
	})
	e.SetLogger(c.logger)
	return e
}

func (c *Converter) plan(b *built) *pagination.Plan {
	return c.paginationEngine(b.frame).Plan(handleOf(b.header), handleOf(b.footer), b.body)
}

// build parses, styles and lays out the three parts of doc
func (c *Converter) build(ctx context.Context, doc Document) (*built, error) {
	if doc.Body == "" {
		return nil, ErrEmptyDocument
	}

	frame := c.Frame()
	if frame.ContentWidth() <= 0 || frame.PrintableHeight() <= 0 {
		return nil, fmt.Errorf("failed to build document: margins leave no room on a %.2fx%.2f page",
			frame.PageWidth, frame.PageHeight)
	}

	loader := res.NewLoader(doc.Base)
	for _, path := range c.options.ResourcePaths {
		loader.AddSearchPath(path)
	}

	body := doc.Body
	if doc.Markdown {
		var err error
		if body, err = html.FromMarkdown([]byte(body)); err != nil {
			return nil, err
		}
	}

	parser := html.NewParser()
	parser.Sanitize = c.options.Sanitize
	parse := func(part, src string) (*html.Document, error) {
		if src == "" {
			return nil, nil
		}
		d, err := parser.ParseString(src)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s HTML: %w", part, err)
		}
		return d, nil
	}
	headerDoc, err := parse("header", doc.Header)
	if err != nil {
		return nil, err
	}
	footerDoc, err := parse("footer", doc.Footer)
	if err != nil {
		return nil, err
	}
	bodyDoc, err := parse("body", body)
	if err != nil {
		return nil, err
	}

	cssParser := css.NewParser()
	var ua *css.Stylesheet
	if c.options.UserAgentStylesheet != "" {
		if ua, err = cssParser.ParseString(c.options.UserAgentStylesheet); err != nil {
			return nil, fmt.Errorf("failed to parse user agent stylesheet: %w", err)
		}
	}
	styles := style.NewStyleEngine(ua)
	sheets := append([]string(nil), doc.Stylesheets...)
	for _, d := range []*html.Document{headerDoc, bodyDoc, footerDoc} {
		if d != nil {
			sheets = append(sheets, collectDocumentStylesheets(ctx, d.Root, loader, c.logger.Warn)...)
		}
	}
	for _, cssText := range sheets {
		sheet, err := cssParser.ParseString(cssText)
		if err != nil {
			c.logger.Warn("api: stylesheet skipped", "error", err)
			continue
		}
		styles.AddStylesheet(sheet)
	}

	lay := func(d *html.Document) (*layout.BlockBox, error) {
		if d == nil {
			return nil, nil
		}
		e := layout.NewEngine()
		e.SetOptions(layout.Options{Width: frame.ContentWidth()})
		e.SetLogger(c.logger)
		e.SetStyles(styles.ComputeStyles(d))
		box, err := e.Layout(d)
		if err != nil {
			return nil, err
		}
		// a frame with nothing in it costs no space
		if box.Height <= 0 {
			return nil, nil
		}
		return box, nil
	}

	b := &built{frame: frame, loader: loader}
	if b.header, err = lay(headerDoc); err != nil {
		return nil, fmt.Errorf("failed to lay out header: %w", err)
	}
	if b.footer, err = lay(footerDoc); err != nil {
		return nil, fmt.Errorf("failed to lay out footer: %w", err)
	}
	if b.body, err = lay(bodyDoc); err != nil {
		return nil, fmt.Errorf("failed to lay out body: %w", err)
	}
	if b.body == nil {
		return nil, ErrEmptyDocument
	}
	return b, nil
}

// Paginate lays out doc and plans its pages without rendering
func (c *Converter) Paginate(ctx context.Context, doc Document) (*Result, error) {
	b, err := c.build(ctx, doc)
	if err != nil {
		return nil, err
	}
	plan := c.plan(b)
	return &Result{Plan: plan, Pages: render.Compose(plan, b.frame)}, nil
}

// Convert paginates doc and writes the PDF to w
func (c *Converter) Convert(ctx context.Context, doc Document, w io.Writer) (*Result, error) {
	b, err := c.build(ctx, doc)
	if err != nil {
		return nil, err
	}
	plan := c.plan(b)
	pages := render.Compose(plan, b.frame)
	if err := c.render(ctx, w, b, pages); err != nil {
		return nil, err
	}
	return &Result{Plan: plan, Pages: pages}, nil
}

func (c *Converter) render(ctx context.Context, w io.Writer, b *built, pages []render.PageView) error {
	renderer := pdf.NewRenderer(b.loader)
	renderer.Logger = c.logger
	renderer.RenderBackgrounds = c.options.RenderBackgrounds
	renderer.RenderBorders = c.options.RenderBorders
	renderer.DebugDrawBoxes = c.options.DebugDrawBoxes

	opts := pdf.RenderOptions{
		Title:      c.options.Title,
		Author:     c.options.Author,
		Subject:    c.options.Subject,
		Keywords:   c.options.Keywords,
		Creator:    "folio",
		PageWidth:  b.frame.PageWidth,
		PageHeight: b.frame.PageHeight,
	}

	if !c.options.Validate {
		if err := renderer.Render(ctx, w, pages, b.frames(), opts); err != nil {
			return fmt.Errorf("failed to render PDF: %w", err)
		}
		return nil
	}

	var buf bytes.Buffer
	if err := renderer.Render(ctx, &buf, pages, b.frames(), opts); err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	if err := Validate(buf.Bytes()); err != nil {
		return err
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

// Validate checks that data is a well-formed PDF
func Validate(data []byte) error {
	conf := model.NewDefaultConfiguration()
	if err := pdfapi.Validate(bytes.NewReader(data), conf); err != nil {
		return fmt.Errorf("failed to validate PDF: %w", err)
	}
	return nil
}

// ConvertBytes converts an HTML body to PDF bytes
func (c *Converter) ConvertBytes(ctx context.Context, body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := c.Convert(ctx, Document{Body: string(body)}, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ConvertFile reads the sources, converts them and writes the PDF to
// outputPath
func (c *Converter) ConvertFile(ctx context.Context, src Sources, outputPath string) (*Result, error) {
	doc, err := ReadDocument(ctx, src, c.options.ResourcePaths...)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	result, err := c.Convert(ctx, doc, &buf)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	return result, nil
}
