package mediasniff

import (
	"github.com/simonhull/mediasniff/internal/types"
)

// ErrNoMatch is returned by a decoder whose signature does not match.
var ErrNoMatch = types.ErrNoMatch

// ErrShortRead matches every ShortReadError with errors.Is.
var ErrShortRead = types.ErrShortRead

// ErrMalformedValue matches every MalformedValueError with errors.Is.
var ErrMalformedValue = types.ErrMalformedValue

// ShortReadError is an alias to types.ShortReadError.
// Re-exporting from internal/types to maintain public API.
type ShortReadError = types.ShortReadError

// MalformedValueError is an alias to types.MalformedValueError.
// Re-exporting from internal/types to maintain public API.
type MalformedValueError = types.MalformedValueError

// ConfigurationError is an alias to types.ConfigurationError.
// Re-exporting from internal/types to maintain public API.
type ConfigurationError = types.ConfigurationError
