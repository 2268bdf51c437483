package hxbind

import (
	"time"

	"go.uber.org/zap"
)

// Default configuration values, applied by Options.withDefaults.
const (
	DefaultDebounceDelay  = 300 * time.Millisecond
	DefaultMaxRetries     = 2
	DefaultRetryBaseDelay = 250 * time.Millisecond
	DefaultMaxCachedPages = 5
	DefaultLimit          = 20
	DefaultHybridAfter    = 3
	DefaultScrollDistance = 200
	DefaultMaxRepeatItems = 10

	DefaultLoadingClass = "hb-loading"
	DefaultErrorClass   = "hb-error"
	DefaultEmptyClass   = "hb-empty-state"
)

// VideoOptions controls the playback attributes MediaResolver places on
// video elements it builds.
type VideoOptions struct {
	// Autoplay starts playback immediately. Implies Muted on most hosts'
	// autoplay policies, but the flag is emitted as declared.
	Autoplay bool

	// HoverPlay emits onmouseover/onmouseout handlers that play and pause
	// the video, for preview-on-hover cards.
	HoverPlay bool

	// Muted, Loop, and Controls map to the corresponding video attributes.
	Muted    bool
	Loop     bool
	Controls bool
}

// Options configures a Registry and the containers it creates.
//
// The zero value is usable: unset fields fall back to the documented
// defaults. Unrecognized declarative attributes are ignored rather than
// rejected, so markup can carry host-specific annotations alongside hb-*.
type Options struct {
	// DebounceDelay is how long filter-control edits coalesce before a
	// reload fires. Default 300ms.
	DebounceDelay time.Duration

	// MaxRetries is the number of retries after the initial provider
	// attempt. Default 2 (so a persistent failure is attempted 3 times).
	// Set negative to disable retries entirely.
	MaxRetries int

	// RetryBaseDelay is the first backoff delay; each subsequent retry
	// waits one additional multiple of it. Default 250ms.
	RetryBaseDelay time.Duration

	// MaxCachedPages bounds the per-container page-cache ring. Default 5.
	MaxCachedPages int

	// ScrollDistance is how close to the end of rendered content, in
	// pixels, a reported scroll position must be to trigger an infinite
	// load. Default 200.
	ScrollDistance int

	// MaxRepeatItems caps clones rendered by a repeat binding when the
	// element declares no hb-repeat-max. Default 10.
	MaxRepeatItems int

	// LoadingClass, ErrorClass and EmptyClass are applied to the container
	// element while loading, in the error state, and when a fetch returns
	// zero records.
	LoadingClass string
	ErrorClass   string
	EmptyClass   string

	// Video configures playback attributes on resolved video elements.
	Video VideoOptions

	// Thumbnailers extends the built-in thumbnail strategies. Strategies
	// are consulted in order before the built-ins.
	Thumbnailers []ThumbnailStrategy

	// StateKey signs the hb-state snapshot token. When empty, a process-
	// local random key is used, which still round-trips within one run.
	StateKey []byte

	// Logger receives template warnings and discarded-response debug
	// output. Default zap.NewNop().
	Logger *zap.Logger
}

// withDefaults returns a copy of o with unset fields replaced by defaults.
func (o Options) withDefaults() Options {
	if o.DebounceDelay <= 0 {
		o.DebounceDelay = DefaultDebounceDelay
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	} else if o.MaxRetries == 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.RetryBaseDelay <= 0 {
		o.RetryBaseDelay = DefaultRetryBaseDelay
	}
	if o.MaxCachedPages <= 0 {
		o.MaxCachedPages = DefaultMaxCachedPages
	}
	if o.ScrollDistance <= 0 {
		o.ScrollDistance = DefaultScrollDistance
	}
	if o.MaxRepeatItems <= 0 {
		o.MaxRepeatItems = DefaultMaxRepeatItems
	}
	if o.LoadingClass == "" {
		o.LoadingClass = DefaultLoadingClass
	}
	if o.ErrorClass == "" {
		o.ErrorClass = DefaultErrorClass
	}
	if o.EmptyClass == "" {
		o.EmptyClass = DefaultEmptyClass
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}
