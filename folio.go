// Package folio lays out HTML documents with a repeating header and footer
// and splits the body into pages without cutting through rows, list items
// or other atomic units.
package folio

import (
	"github.com/gompdf/folio/pkg/api"
)

type Converter = api.Converter
type Options = api.Options
type Option = api.Option
type PageOrientation = api.PageOrientation
type Document = api.Document
type Sources = api.Sources
type Result = api.Result
type Session = api.Session

func New(opts ...Option) *Converter             { return api.New(opts...) }
func NewWithOptions(options Options) *Converter { return api.NewWithOptions(options) }
func DefaultOptions() Options                   { return api.DefaultOptions() }

var (
	ReadDocument = api.ReadDocument
	Validate     = api.Validate
	PageSize     = api.PageSize

	ErrEmptyDocument = api.ErrEmptyDocument
	ErrClosed        = api.ErrClosed
)

var (
	WithPageSize            = api.WithPageSize
	WithMargins             = api.WithMargins
	WithPageOrientation     = api.WithPageOrientation
	WithSafetyBuffer        = api.WithSafetyBuffer
	WithBreakEpsilon        = api.WithBreakEpsilon
	WithSanitize            = api.WithSanitize
	WithValidate            = api.WithValidate
	WithDebug               = api.WithDebug
	WithLogger              = api.WithLogger
	WithDebugDrawBoxes      = api.WithDebugDrawBoxes
	WithReflowTimings       = api.WithReflowTimings
	WithResourcePath        = api.WithResourcePath
	WithTitle               = api.WithTitle
	WithAuthor              = api.WithAuthor
	WithSubject             = api.WithSubject
	WithKeywords            = api.WithKeywords
	WithUserAgentStylesheet = api.WithUserAgentStylesheet
	WithPageSizeA4          = api.WithPageSizeA4
	WithPageSizeLetter      = api.WithPageSizeLetter
	WithPageSizeLegal       = api.WithPageSizeLegal
)

const (
	PageSizeA3Width  = api.PageSizeA3Width
	PageSizeA3Height = api.PageSizeA3Height
	PageSizeA4Width  = api.PageSizeA4Width
	PageSizeA4Height = api.PageSizeA4Height
	PageSizeA5Width  = api.PageSizeA5Width
	PageSizeA5Height = api.PageSizeA5Height

	PageSizeLetterWidth  = api.PageSizeLetterWidth
	PageSizeLetterHeight = api.PageSizeLetterHeight
	PageSizeLegalWidth   = api.PageSizeLegalWidth
	PageSizeLegalHeight  = api.PageSizeLegalHeight

	PageOrientationPortrait  = api.PageOrientationPortrait
	PageOrientationLandscape = api.PageOrientationLandscape
)
