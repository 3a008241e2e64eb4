package mediasniff

import (
	"log/slog"
	"runtime"

	"github.com/simonhull/mediasniff/internal/registry"
)

// Option configures Parse, ParseFile and ParseMany.
//
// Options use the functional options pattern for clean, extensible APIs.
//
// Example:
//
//	file, err := mediasniff.ParseFile("song.flac",
//	    mediasniff.WithMaxBytes(64<<10),
//	    mediasniff.WithExplain(),
//	)
type Option func(*parseOptions)

// parseOptions holds configuration for a parse.
type parseOptions struct {
	registry    *Registry
	formats     []Format
	maxBytes    int64
	logger      *slog.Logger
	explain     bool
	concurrency int
}

// defaultOptions returns the default configuration.
func defaultOptions() *parseOptions {
	return &parseOptions{
		concurrency: runtime.NumCPU(),
	}
}

func applyOptions(opts []Option) *parseOptions {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.registry == nil {
		o.registry = DefaultRegistry()
	}
	return o
}

// dispatchOptions translates the options for one stream.
func (o *parseOptions) dispatchOptions(path string) []registry.DispatchOption {
	opts := []registry.DispatchOption{
		registry.WithPath(path),
		registry.WithMaxBytes(o.maxBytes),
	}
	if len(o.formats) > 0 {
		opts = append(opts, registry.WithFormats(o.formats...))
	}
	if o.logger != nil {
		opts = append(opts, registry.WithLogger(o.logger))
	}
	return opts
}

// WithRegistry parses with reg instead of DefaultRegistry.
func WithRegistry(reg *Registry) Option {
	return func(o *parseOptions) {
		o.registry = reg
	}
}

// WithFormats only tries the given formats, still in registration order.
//
// Example:
//
//	// Only audio containers that carry a fixed header.
//	result, ok := mediasniff.Parse(src,
//	    mediasniff.WithFormats(mediasniff.FormatFLAC, mediasniff.FormatWAV),
//	)
func WithFormats(formats ...Format) Option {
	return func(o *parseOptions) {
		o.formats = append(o.formats, formats...)
	}
}

// WithMaxBytes caps how many leading bytes of a stream any decoder may
// read. Zero means the whole stream.
//
// Durations that depend on the end of a stream (Ogg, MP3 without a VBR
// header) are computed from the capped window.
func WithMaxBytes(n int64) Option {
	return func(o *parseOptions) {
		o.maxBytes = n
	}
}

// WithLogger logs every decoder attempt at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(o *parseOptions) {
		o.logger = logger
	}
}

// WithExplain keeps the attempt trail on File.Attempts.
func WithExplain() Option {
	return func(o *parseOptions) {
		o.explain = true
	}
}

// WithConcurrency sets how many files ParseMany opens at once.
// Values below 1 mean runtime.NumCPU().
func WithConcurrency(n int) Option {
	return func(o *parseOptions) {
		if n < 1 {
			n = runtime.NumCPU()
		}
		o.concurrency = n
	}
}
