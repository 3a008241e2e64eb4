package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/simonhull/mediasniff/internal/binary"
	"github.com/simonhull/mediasniff/internal/types"
)

// Status classifies one decoder attempt.
type Status string

const (
	StatusMatched   Status = "matched"
	StatusNoMatch   Status = "no_match"
	StatusShortRead Status = "short_read"
	StatusMalformed Status = "malformed"
	StatusFailed    Status = "failed"
)

// Attempt records how one decoder fared against a stream.
type Attempt struct {
	Nature types.Nature `json:"nature"`
	Format types.Format `json:"format"`
	Status Status       `json:"status"`
	Err    error        `json:"-"`
}

// Outcome is the full record of a dispatch.
type Outcome struct {
	Result   *types.Result
	Attempts []Attempt
}

// Recognized reports whether any decoder matched.
func (o Outcome) Recognized() bool {
	return o.Result != nil
}

type dispatchConfig struct {
	formats  []types.Format
	maxBytes int64
	path     string
	logger   *slog.Logger
}

// DispatchOption configures a single Parse or Explain call.
type DispatchOption func(*dispatchConfig)

// WithFormats restricts the candidates to the given formats. Registration
// order is kept and unknown formats are ignored.
func WithFormats(formats ...types.Format) DispatchOption {
	return func(c *dispatchConfig) {
		c.formats = append(c.formats, formats...)
	}
}

// WithMaxBytes caps how far into the stream any decoder may read.
// Zero or negative means the whole stream.
func WithMaxBytes(n int64) DispatchOption {
	return func(c *dispatchConfig) {
		c.maxBytes = n
	}
}

// WithPath names the stream in error messages.
func WithPath(path string) DispatchOption {
	return func(c *dispatchConfig) {
		c.path = path
	}
}

// WithLogger logs each attempt at debug level.
func WithLogger(logger *slog.Logger) DispatchOption {
	return func(c *dispatchConfig) {
		c.logger = logger
	}
}

// Parse offers src to each candidate decoder in registration order and
// returns the first valid result. The boolean is false when no decoder
// recognizes the stream; that is not an error.
func (reg *Registry) Parse(src binary.Source, opts ...DispatchOption) (*types.Result, bool) {
	out := reg.dispatch(src, false, opts)
	return out.Result, out.Result != nil
}

// Explain is Parse with the per-decoder attempt trail.
func (reg *Registry) Explain(src binary.Source, opts ...DispatchOption) Outcome {
	return reg.dispatch(src, true, opts)
}

func (reg *Registry) dispatch(src binary.Source, record bool, opts []DispatchOption) Outcome {
	cfg := dispatchConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	base := binary.NewSafeReader(src, src.Size(), cfg.path).Limit(cfg.maxBytes)

	var out Outcome
	for _, e := range reg.entries {
		if len(cfg.formats) > 0 && !slices.Contains(cfg.formats, e.Format) {
			continue
		}

		result, err := attempt(e, binary.NewReader(base, 0))
		status := classify(err)

		logger.Debug("decoder attempt",
			"path", cfg.path,
			"format", string(e.Format),
			"status", string(status),
			"error", err,
		)
		if record {
			out.Attempts = append(out.Attempts, Attempt{Nature: e.Nature, Format: e.Format, Status: status, Err: err})
		}

		if status == StatusMatched {
			out.Result = result
			return out
		}
	}
	return out
}

// attempt runs one decoder and validates what it returns.
func attempt(e Entry, r *binary.Reader) (*types.Result, error) {
	result, err := e.Decoder.Decode(r)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, types.ErrNoMatch
	}

	result.Nature = e.Nature
	result.Format = e.Format
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s result: %w", e.Format, err)
	}
	return result, nil
}

func classify(err error) Status {
	switch {
	case err == nil:
		return StatusMatched
	case errors.Is(err, types.ErrNoMatch):
		return StatusNoMatch
	case errors.Is(err, types.ErrShortRead):
		return StatusShortRead
	case errors.Is(err, types.ErrMalformedValue):
		return StatusMalformed
	default:
		return StatusFailed
	}
}
