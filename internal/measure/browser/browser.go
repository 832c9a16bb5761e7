// Package browser measures documents in a real Chrome instance through Rod.
// Elements are live handles: every Bounds call asks the browser, so a
// reflow.PollObserver watching them sees fonts loading, images arriving and
// script-driven changes.
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/gompdf/folio/internal/geometry"
)

// Selectors of the three frames in a page built by Assemble
const (
	HeaderSelector = "#folio-header"
	BodySelector   = "#folio-body"
	FooterSelector = "#folio-footer"
)

// Config configures the measurer.
type Config struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local headless Chrome via launcher.
	RemoteURL string
	// Timeout bounds every call into the browser. Default: 10s.
	Timeout time.Duration
	Logger  *slog.Logger
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Measurer owns one browser connection.
type Measurer struct {
	cfg     Config
	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
}

// Available reports whether a local Chrome can be launched
func Available() bool {
	_, ok := launcher.LookPath()
	return ok
}

// New launches Chrome (or connects to a remote instance).
func New(ctx context.Context, cfg Config) (*Measurer, error) {
	cfg.defaults()
	m := &Measurer{cfg: cfg}

	wsURL := cfg.RemoteURL
	if wsURL == "" {
		l := launcher.New().Headless(true).Context(ctx)
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		wsURL = u
		m.lnch = l
		cfg.Logger.Debug("browser: launched local chrome", "url", wsURL)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		m.kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	m.browser = b
	return m, nil
}

// Close shuts the browser down.
func (m *Measurer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var err error
	if m.browser != nil {
		err = m.browser.Close()
		m.browser = nil
	}
	m.kill()
	return err
}

func (m *Measurer) kill() {
	if m.lnch != nil {
		m.lnch.Kill()
		m.lnch = nil
	}
}

// Open loads a document into a new tab whose viewport is width CSS pixels
// wide. One CSS pixel is measured as one point.
func (m *Measurer) Open(ctx context.Context, content string, width float64) (*Page, error) {
	m.mu.Lock()
	b := m.browser
	m.mu.Unlock()
	if b == nil {
		return nil, fmt.Errorf("failed to open page: browser is closed")
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		return nil, fmt.Errorf("failed to create tab: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()
	p := page.Context(callCtx)
	if err := p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             int(width + 0.5),
		Height:            800,
		DeviceScaleFactor: 1,
	}); err != nil {
		page.Close()
		return nil, fmt.Errorf("failed to size viewport: %w", err)
	}
	if err := p.SetDocumentContent(content); err != nil {
		page.Close()
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	if err := p.WaitLoad(); err != nil {
		m.cfg.Logger.Warn("browser: wait load failed", "error", err)
	}
	return &Page{page: page, timeout: m.cfg.Timeout, log: m.cfg.Logger}, nil
}

// Assemble builds one page holding the three frames stacked in their own
// containers, each as wide as the viewport.
func Assemble(header, body, footer string, stylesheets []string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head><meta charset=\"utf-8\"><style>")
	b.WriteString("html,body{margin:0;padding:0}")
	b.WriteString(HeaderSelector + "," + BodySelector + "," + FooterSelector + "{display:flow-root}")
	b.WriteString("</style>")
	for _, css := range stylesheets {
		b.WriteString("<style>")
		b.WriteString(strings.ReplaceAll(css, "</", "<\\/"))
		b.WriteString("</style>")
	}
	b.WriteString("</head><body>")
	for _, part := range []struct{ sel, content string }{
		{HeaderSelector, header},
		{BodySelector, body},
		{FooterSelector, footer},
	} {
		if part.content == "" {
			continue
		}
		fmt.Fprintf(&b, `<div id="%s">%s</div>`, strings.TrimPrefix(part.sel, "#"), part.content)
	}
	b.WriteString("</body></html>")
	return b.String()
}

// Page is an open document.
type Page struct {
	page    *rod.Page
	timeout time.Duration
	log     *slog.Logger
}

// Close closes the tab.
func (p *Page) Close() error {
	return p.page.Close()
}

// Element returns a live handle for the first element matching selector.
// It reports a zero rectangle while the element is missing or not laid out.
func (p *Page) Element(selector string) *Element {
	return &Element{page: p, selector: selector}
}

// Has reports whether selector matches an element
func (p *Page) Has(ctx context.Context, selector string) (bool, error) {
	var found bool
	err := p.eval(ctx, `(sel) => JSON.stringify(document.querySelector(sel) !== null)`, &found, selector)
	return found, err
}

func (p *Page) eval(ctx context.Context, js string, out any, args ...any) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	res, err := p.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return fmt.Errorf("failed to evaluate script: %w", err)
	}
	if err := json.Unmarshal([]byte(res.Value.Str()), out); err != nil {
		return fmt.Errorf("failed to decode script result: %w", err)
	}
	return nil
}

// Element is a live geometry.Handle backed by a DOM element.
type Element struct {
	page     *Page
	selector string
}

type rectJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

const boundsScript = `(sel) => {
	const el = document.querySelector(sel);
	if (!el) return JSON.stringify({x:0,y:0,w:0,h:0});
	const r = el.getBoundingClientRect();
	return JSON.stringify({x:r.left+window.scrollX, y:r.top+window.scrollY, w:r.width, h:r.height});
}`

// Bounds implements geometry.Handle. A failed read is logged and reported as
// an unmeasured element.
func (e *Element) Bounds() geometry.Rect {
	var r rectJSON
	if err := e.page.eval(context.Background(), boundsScript, &r, e.selector); err != nil {
		e.page.log.Debug("browser: bounds unavailable", "selector", e.selector, "error", err)
		return geometry.Rect{}
	}
	return geometry.Rect{X: r.X, Y: r.Y, Width: r.W, Height: r.H}
}
