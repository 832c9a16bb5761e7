package api

import (
	"log/slog"
	"time"
)

// Options represents configuration options for the paginated renderer
type Options struct {
	// Sheet dimensions in points
	PageWidth  float64
	PageHeight float64
	// Page orientation: portrait or landscape
	PageOrientation PageOrientation

	// Page margins
	MarginTop    float64
	MarginRight  float64
	MarginBottom float64
	MarginLeft   float64

	// SafetyBuffer is the gap kept between body content and the footer
	SafetyBuffer float64
	// BreakEpsilon is added to every break candidate so a page ends just
	// below the unit it closes
	BreakEpsilon float64

	// Sanitize strips scripts and active content from author HTML
	Sanitize bool
	// Validate runs the produced PDF through pdfcpu before returning it
	Validate bool

	// Debug raises logging to debug level when no Logger is set
	Debug bool
	// Logger receives diagnostics. Default: slog.Default().
	Logger *slog.Logger

	// Visual rendering toggles
	RenderBackgrounds bool
	RenderBorders     bool
	// DebugDrawBoxes outlines the header, viewport and footer on every page
	DebugDrawBoxes bool

	// Live session timings
	Settle       time.Duration
	Debounce     time.Duration
	PollInterval time.Duration

	// Resource paths
	ResourcePaths []string

	// Document metadata
	Title    string
	Author   string
	Subject  string
	Keywords string

	// UserAgentStylesheet replaces the built-in stylesheet when set
	UserAgentStylesheet string
}

// Option is a function that modifies Options
type Option func(*Options)

// PageOrientation represents page orientation
type PageOrientation string

const (
	// PageOrientationPortrait sets the page to portrait orientation
	PageOrientationPortrait PageOrientation = "portrait"
	// PageOrientationLandscape sets the page to landscape orientation
	PageOrientationLandscape PageOrientation = "landscape"
)

// DefaultOptions returns the default options
func DefaultOptions() Options {
	return Options{
		PageWidth:       PageSizeA4Width,
		PageHeight:      PageSizeA4Height,
		PageOrientation: PageOrientationPortrait,

		// half an inch all round
		MarginTop:    36,
		MarginRight:  36,
		MarginBottom: 36,
		MarginLeft:   36,

		SafetyBuffer: 12,
		BreakEpsilon: 6,

		RenderBackgrounds: true,
		RenderBorders:     true,

		Settle:       150 * time.Millisecond,
		Debounce:     100 * time.Millisecond,
		PollInterval: 250 * time.Millisecond,
	}
}

// WithPageSize sets the page size
func WithPageSize(width, height float64) Option {
	return func(o *Options) {
		o.PageWidth = width
		o.PageHeight = height
	}
}

// WithMargins sets the page margins
func WithMargins(top, right, bottom, left float64) Option {
	return func(o *Options) {
		o.MarginTop = top
		o.MarginRight = right
		o.MarginBottom = bottom
		o.MarginLeft = left
	}
}

// WithPageOrientation sets the page orientation
func WithPageOrientation(orientation PageOrientation) Option {
	return func(o *Options) {
		o.PageOrientation = orientation
	}
}

// WithSafetyBuffer sets the gap kept above the footer
func WithSafetyBuffer(points float64) Option {
	return func(o *Options) {
		o.SafetyBuffer = points
	}
}

// WithBreakEpsilon sets the offset added to break candidates
func WithBreakEpsilon(points float64) Option {
	return func(o *Options) {
		o.BreakEpsilon = points
	}
}

// WithSanitize enables HTML sanitizing
func WithSanitize(sanitize bool) Option {
	return func(o *Options) {
		o.Sanitize = sanitize
	}
}

// WithValidate enables PDF validation
func WithValidate(validate bool) Option {
	return func(o *Options) {
		o.Validate = validate
	}
}

// WithDebug sets the debug mode
func WithDebug(debug bool) Option {
	return func(o *Options) {
		o.Debug = debug
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithDebugDrawBoxes outlines page regions
func WithDebugDrawBoxes(draw bool) Option {
	return func(o *Options) {
		o.DebugDrawBoxes = draw
	}
}

// WithReflowTimings sets the live session settle, debounce and poll intervals
func WithReflowTimings(settle, debounce, poll time.Duration) Option {
	return func(o *Options) {
		o.Settle = settle
		o.Debounce = debounce
		o.PollInterval = poll
	}
}

// WithResourcePath adds a path to search for resources
func WithResourcePath(path string) Option {
	return func(o *Options) {
		o.ResourcePaths = append(o.ResourcePaths, path)
	}
}

// WithTitle sets the document title
func WithTitle(title string) Option {
	return func(o *Options) {
		o.Title = title
	}
}

// WithAuthor sets the document author
func WithAuthor(author string) Option {
	return func(o *Options) {
		o.Author = author
	}
}

// WithSubject sets the document subject
func WithSubject(subject string) Option {
	return func(o *Options) {
		o.Subject = subject
	}
}

// WithKeywords sets the document keywords
func WithKeywords(keywords string) Option {
	return func(o *Options) {
		o.Keywords = keywords
	}
}

// WithUserAgentStylesheet replaces the built-in stylesheet
func WithUserAgentStylesheet(stylesheet string) Option {
	return func(o *Options) {
		o.UserAgentStylesheet = stylesheet
	}
}

// Standard page sizes in points (1/72 inch)
const (
	PageSizeA3Width  = 841.89
	PageSizeA3Height = 1190.55
	PageSizeA4Width  = 595.28
	PageSizeA4Height = 841.89
	PageSizeA5Width  = 419.53
	PageSizeA5Height = 595.28

	PageSizeLetterWidth  = 612
	PageSizeLetterHeight = 792
	PageSizeLegalWidth   = 612
	PageSizeLegalHeight  = 1008
)

// WithPageSizeA4 sets the page size to A4
func WithPageSizeA4() Option {
	return WithPageSize(PageSizeA4Width, PageSizeA4Height)
}

// WithPageSizeLetter sets the page size to US Letter
func WithPageSizeLetter() Option {
	return WithPageSize(PageSizeLetterWidth, PageSizeLetterHeight)
}

// WithPageSizeLegal sets the page size to US Legal
func WithPageSizeLegal() Option {
	return WithPageSize(PageSizeLegalWidth, PageSizeLegalHeight)
}

// PageSize looks up a named paper size. ok is false for unknown names.
func PageSize(name string) (width, height float64, ok bool) {
	switch name {
	case "A3", "a3":
		return PageSizeA3Width, PageSizeA3Height, true
	case "A4", "a4":
		return PageSizeA4Width, PageSizeA4Height, true
	case "A5", "a5":
		return PageSizeA5Width, PageSizeA5Height, true
	case "Letter", "letter":
		return PageSizeLetterWidth, PageSizeLetterHeight, true
	case "Legal", "legal":
		return PageSizeLegalWidth, PageSizeLegalHeight, true
	}
	return 0, 0, false
}
