// Package binary provides bounds-checked binary reading primitives and
// bit-level packing helpers used by the format decoders.
package binary

import (
	"errors"
	"fmt"
	"io"

	"github.com/simonhull/mediasniff/internal/types"
)

// SafeReader wraps io.ReaderAt with bounds checking and helpful error messages.
// Nothing at or beyond size is ever requested from the underlying reader.
type SafeReader struct {
	r    io.ReaderAt
	path string
	size int64
}

// NewSafeReader creates a new SafeReader.
func NewSafeReader(r io.ReaderAt, size int64, path string) *SafeReader {
	if size < 0 {
		size = 0
	}
	return &SafeReader{
		r:    r,
		size: size,
		path: path,
	}
}

// Path returns the file path associated with this reader.
func (sr *SafeReader) Path() string {
	return sr.path
}

// Size returns the readable window size.
func (sr *SafeReader) Size() int64 {
	return sr.size
}

// Limit returns a reader over the same data whose window is min(size, n).
// A non-positive n leaves the window unchanged.
func (sr *SafeReader) Limit(n int64) *SafeReader {
	if n <= 0 || n >= sr.size {
		return sr
	}
	return &SafeReader{r: sr.r, path: sr.path, size: n}
}

// Section returns a view of the readable window for libraries that need
// an io.ReadSeeker.
func (sr *SafeReader) Section() *io.SectionReader {
	return io.NewSectionReader(sr.r, 0, sr.size)
}

// ReadAt reads bytes at the given offset with context for error messages.
func (sr *SafeReader) ReadAt(b []byte, off int64, what string) error {
	if off < 0 || off+int64(len(b)) > sr.size {
		return sr.shortRead(off, int64(len(b)), what)
	}
	if len(b) == 0 {
		return nil
	}

	n, err := sr.r.ReadAt(b, off)
	if n == len(b) {
		return nil
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: failed to read %s at offset %d: %w", sr.pathOrStream(), what, off, err)
	}

	// The source ended before its declared size.
	return sr.shortRead(off, int64(len(b)), what)
}

func (sr *SafeReader) shortRead(off, length int64, what string) error {
	return &types.ShortReadError{
		Path:   sr.path,
		What:   what,
		Offset: off,
		Length: length,
		Size:   sr.size,
	}
}

func (sr *SafeReader) pathOrStream() string {
	if sr.path == "" {
		return "stream"
	}
	return sr.path
}

// Read reads a big-endian value of type T from the given offset.
func Read[T Unsigned](sr *SafeReader, off int64, what string) (T, error) {
	return ReadEndian[T](sr, off, what, BigEndian)
}

// Reader provides sequential reading with automatic offset tracking.
type Reader struct {
	*SafeReader
	offset int64
}

// NewReader creates a new Reader starting at the given offset.
func NewReader(sr *SafeReader, offset int64) *Reader {
	return &Reader{
		SafeReader: sr,
		offset:     offset,
	}
}

// ReadExact returns exactly n bytes from the cursor and advances past them.
// On failure the cursor does not move.
func (r *Reader) ReadExact(n int, what string) ([]byte, error) {
	if n < 0 {
		return nil, r.shortRead(r.offset, int64(n), what)
	}
	buf := make([]byte, n)
	if err := r.SafeReader.ReadAt(buf, r.offset, what); err != nil {
		return nil, err
	}
	r.offset += int64(n)
	return buf, nil
}

// Expect reads len(magic) bytes and reports whether they equal magic.
// A short stream is reported as a mismatch.
func (r *Reader) Expect(magic string, what string) (bool, error) {
	buf, err := r.ReadExact(len(magic), what)
	if err != nil {
		if errors.Is(err, types.ErrShortRead) {
			return false, nil
		}
		return false, err
	}
	return string(buf) == magic, nil
}

// ReadValue reads a numeric value in the given byte order and advances the offset.
func ReadValue[T Unsigned](r *Reader, order Endianness, what string) (T, error) {
	val, err := ReadEndian[T](r.SafeReader, r.offset, what, order)
	if err != nil {
		var zero T
		return zero, err
	}
	r.offset += int64(sizeOf[T]())
	return val, nil
}

// ReadString reads a string of the given length and advances the offset.
func (r *Reader) ReadString(length int, what string) (string, error) {
	buf, err := r.ReadExact(length, what)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// Skip advances the offset by n bytes without reading them.
// The target may equal the window size but not exceed it.
func (r *Reader) Skip(n int64, what string) error {
	target := r.offset + n
	if n < 0 || target > r.size {
		return r.shortRead(r.offset, n, what)
	}
	r.offset = target
	return nil
}

// Seek moves the cursor to an absolute offset within [0, size].
func (r *Reader) Seek(off int64) error {
	if off < 0 || off > r.size {
		return r.shortRead(off, 0, "seek target")
	}
	r.offset = off
	return nil
}

// Offset returns the current offset.
func (r *Reader) Offset() int64 {
	return r.offset
}

// Remaining returns the number of readable bytes after the cursor.
func (r *Reader) Remaining() int64 {
	if r.offset >= r.size {
		return 0
	}
	return r.size - r.offset
}

// ChainReader allows chaining multiple reads with deferred error checking.
// Values are big-endian.
type ChainReader struct {
	*Reader
	err error
}

// NewChainReader creates a new ChainReader.
func NewChainReader(r *Reader) *ChainReader {
	return &ChainReader{Reader: r}
}

// ReadChained reads a value with deferred error checking.
// If a previous read failed, returns zero value without attempting read.
func ReadChained[T Unsigned](cr *ChainReader, what string) T {
	if cr.err != nil {
		var zero T
		return zero
	}

	val, err := ReadValue[T](cr.Reader, BigEndian, what)
	if err != nil {
		cr.err = err
	}
	return val
}

// String reads a string, accumulating any error.
func (cr *ChainReader) String(length int, what string) string {
	if cr.err != nil {
		return ""
	}

	val, err := cr.Reader.ReadString(length, what)
	if err != nil {
		cr.err = err
	}
	return val
}

// Skip advances the cursor, accumulating any error.
func (cr *ChainReader) Skip(n int64, what string) {
	if cr.err != nil {
		return
	}
	cr.err = cr.Reader.Skip(n, what)
}

// Error returns the accumulated error, if any.
func (cr *ChainReader) Error() error {
	return cr.err
}
