package sheetcalc

import "github.com/rs/zerolog"

// Default sheet dimensions.
const (
	DefaultWidth  = 10
	DefaultHeight = 20
)

// options holds configuration for a Sheet.
type options struct {
	width     int
	height    int
	provider  Provider
	evaluator Evaluator
	logger    zerolog.Logger
}

func defaultOptions() *options {
	return &options{
		width:    DefaultWidth,
		height:   DefaultHeight,
		provider: noProvider{},
		logger:   zerolog.Nop(),
	}
}

// Option configures a Sheet.
type Option func(*options)

// WithSize sets the initial width (columns) and height (rows) (default: 10x20).
// Non-positive dimensions are ignored.
func WithSize(width, height int) Option {
	return func(o *options) {
		if width > 0 {
			o.width = width
		}
		if height > 0 {
			o.height = height
		}
	}
}

// WithProvider sets the provider used to resolve $(SYMBOL) tokens.
func WithProvider(p Provider) Option {
	return func(o *options) {
		if p != nil {
			o.provider = p
		}
	}
}

// WithEvaluator replaces the expression evaluator.
func WithEvaluator(ev Evaluator) Option {
	return func(o *options) { o.evaluator = ev }
}

// WithLogger sets the logger for debug events (default: disabled).
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}
