package types

import (
	"errors"
	"fmt"
)

// ErrNoMatch is returned by a decoder when the stream does not carry its
// signature. It is an expected outcome, not a failure.
var ErrNoMatch = errors.New("no match")

// ErrShortRead is matched by errors.Is for every *ShortReadError.
var ErrShortRead = errors.New("short read")

// ErrMalformedValue is matched by errors.Is for every *MalformedValueError.
var ErrMalformedValue = errors.New("malformed value")

// ShortReadError is returned when a read or skip would go past the end of
// the readable window of a stream.
type ShortReadError struct {
	Path   string
	What   string
	Offset int64
	Length int64
	Size   int64
}

func (e *ShortReadError) Error() string {
	name := e.Path
	if name == "" {
		name = "stream"
	}
	if e.Offset >= e.Size && e.Length > 0 {
		return fmt.Sprintf("%s: offset %d out of bounds (readable size: %d) while reading %s",
			name, e.Offset, e.Size, e.What)
	}
	return fmt.Sprintf("%s: read of %d bytes at offset %d would exceed readable size %d while reading %s",
		name, e.Length, e.Offset, e.Size, e.What)
}

// Is reports whether target is ErrShortRead.
func (e *ShortReadError) Is(target error) bool {
	return target == ErrShortRead
}

// MalformedValueError is returned when a header field was read successfully
// but holds a value the format does not allow.
type MalformedValueError struct {
	Format Format
	Field  string
	Reason string
	Offset int64
}

func (e *MalformedValueError) Error() string {
	return fmt.Sprintf("%s: malformed %s at offset %d: %s", e.Format, e.Field, e.Offset, e.Reason)
}

// Is reports whether target is ErrMalformedValue.
func (e *MalformedValueError) Is(target error) bool {
	return target == ErrMalformedValue
}

// ConfigurationError reports an invalid decoder registration. It only ever
// happens while a registry is being assembled.
type ConfigurationError struct {
	Nature Nature
	Format Format
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("register %s/%s: %s", e.Nature, e.Format, e.Reason)
}
