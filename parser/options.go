package parser

import "log/slog"

// Options configures a parse call.
type Options struct {
	// BaseURL overrides the document-declared base URL.
	BaseURL string
	// Logger receives debug-level dispatch traces. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// Option mutates Options.
type Option func(*Options)

// WithBaseURL overrides the base URL declared in the document.
func WithBaseURL(u string) Option {
	return func(o *Options) { o.BaseURL = u }
}

// WithLogger sets the logger used for dispatch traces.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

func buildOptions(opts []Option) Options {
	o := Options{Logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
