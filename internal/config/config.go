// Package config reads folio settings from a YAML file and maps them onto
// converter options.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gompdf/folio/internal/render"
	"github.com/gompdf/folio/pkg/api"
)

// Config is the top-level folio configuration.
type Config struct {
	Page        PageConfig       `yaml:"page"`
	Margins     render.Margins   `yaml:"margins"`
	Pagination  PaginationConfig `yaml:"pagination"`
	Reflow      ReflowConfig     `yaml:"reflow"`
	Server      ServerConfig     `yaml:"server"`
	Document    DocumentConfig   `yaml:"document"`
	Sanitize    bool             `yaml:"sanitize"`
	ValidatePDF bool             `yaml:"validate"`
}

// PageConfig selects the sheet. Size names a standard paper size; Width and
// Height override it.
type PageConfig struct {
	Size        string  `yaml:"size"` // A3 | A4 | A5 | Letter | Legal
	Width       float64 `yaml:"width"`
	Height      float64 `yaml:"height"`
	Orientation string  `yaml:"orientation"` // portrait | landscape
}

// PaginationConfig tunes the packer.
type PaginationConfig struct {
	SafetyBuffer float64 `yaml:"safety_buffer"`
	BreakEpsilon float64 `yaml:"break_epsilon"`
}

// ReflowConfig controls live session timings.
type ReflowConfig struct {
	Settle       time.Duration `yaml:"settle"`
	Debounce     time.Duration `yaml:"debounce"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// ServerConfig controls the preview server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DocumentConfig carries PDF metadata and extra stylesheets.
type DocumentConfig struct {
	Title         string   `yaml:"title"`
	Author        string   `yaml:"author"`
	Subject       string   `yaml:"subject"`
	Keywords      string   `yaml:"keywords"`
	Stylesheets   []string `yaml:"stylesheets"`
	ResourcePaths []string `yaml:"resource_paths"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	d := api.DefaultOptions()
	return &Config{
		Page: PageConfig{Size: "A4", Orientation: string(api.PageOrientationPortrait)},
		Margins: render.Margins{
			Top:    d.MarginTop,
			Right:  d.MarginRight,
			Bottom: d.MarginBottom,
			Left:   d.MarginLeft,
		},
		Pagination: PaginationConfig{SafetyBuffer: d.SafetyBuffer, BreakEpsilon: d.BreakEpsilon},
		Reflow:     ReflowConfig{Settle: d.Settle, Debounce: d.Debounce, PollInterval: d.PollInterval},
		Server:     ServerConfig{Addr: ":8088"},
	}
}

// LoadFile reads a YAML configuration file. Keys missing from the file keep
// their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML configuration.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Page.Size == "" && (c.Page.Width <= 0 || c.Page.Height <= 0) {
		c.Page.Size = "A4"
	}
	if c.Page.Orientation == "" {
		c.Page.Orientation = string(api.PageOrientationPortrait)
	}
	if c.Reflow.Settle <= 0 {
		c.Reflow.Settle = 150 * time.Millisecond
	}
	if c.Reflow.Debounce <= 0 {
		c.Reflow.Debounce = 100 * time.Millisecond
	}
	if c.Reflow.PollInterval <= 0 {
		c.Reflow.PollInterval = 250 * time.Millisecond
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8088"
	}
}

// Validate checks that values are usable.
func (c *Config) Validate() error {
	if _, _, err := c.PageSize(); err != nil {
		return err
	}
	switch strings.ToLower(c.Page.Orientation) {
	case "portrait", "landscape":
	default:
		return fmt.Errorf("page.orientation: unsupported value %q (use portrait or landscape)", c.Page.Orientation)
	}
	m := c.Margins
	if m.Top < 0 || m.Right < 0 || m.Bottom < 0 || m.Left < 0 {
		return fmt.Errorf("margins must not be negative")
	}
	if c.Pagination.SafetyBuffer < 0 {
		return fmt.Errorf("pagination.safety_buffer must not be negative")
	}
	if c.Pagination.BreakEpsilon < 0 {
		return fmt.Errorf("pagination.break_epsilon must not be negative")
	}
	return nil
}

// PageSize returns the sheet size in points before orientation is applied.
func (c *Config) PageSize() (width, height float64, err error) {
	if c.Page.Width > 0 && c.Page.Height > 0 {
		return c.Page.Width, c.Page.Height, nil
	}
	w, h, ok := api.PageSize(c.Page.Size)
	if !ok {
		return 0, 0, fmt.Errorf("page.size: unknown paper size %q", c.Page.Size)
	}
	return w, h, nil
}

// Options maps the configuration onto converter options.
func (c *Config) Options() []api.Option {
	w, h, _ := c.PageSize()
	opts := []api.Option{
		api.WithPageSize(w, h),
		api.WithPageOrientation(api.PageOrientation(strings.ToLower(c.Page.Orientation))),
		api.WithMargins(c.Margins.Top, c.Margins.Right, c.Margins.Bottom, c.Margins.Left),
		api.WithSafetyBuffer(c.Pagination.SafetyBuffer),
		api.WithBreakEpsilon(c.Pagination.BreakEpsilon),
		api.WithReflowTimings(c.Reflow.Settle, c.Reflow.Debounce, c.Reflow.PollInterval),
		api.WithSanitize(c.Sanitize),
		api.WithValidate(c.ValidatePDF),
		api.WithTitle(c.Document.Title),
		api.WithAuthor(c.Document.Author),
		api.WithSubject(c.Document.Subject),
		api.WithKeywords(c.Document.Keywords),
	}
	for _, p := range c.Document.ResourcePaths {
		opts = append(opts, api.WithResourcePath(p))
	}
	return opts
}
