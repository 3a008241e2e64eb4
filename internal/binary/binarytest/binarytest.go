// Package binarytest builds synthetic byte streams for decoder tests.
package binarytest

import (
	stdbinary "encoding/binary"
	"io"

	"github.com/simonhull/mediasniff/internal/binary"
)

// Writer appends fixture bytes to w. Write failures panic; fixtures are
// built in memory.
type Writer struct {
	w io.Writer
}

// NewWriter returns a Writer appending to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// String appends s verbatim.
func (w *Writer) String(s string) {
	w.Bytes([]byte(s))
}

// Bytes appends b.
func (w *Writer) Bytes(b []byte) {
	if _, err := w.w.Write(b); err != nil {
		panic(err)
	}
}

// Put appends v as a fixed-width integer in the given byte order.
func Put[T binary.Unsigned](w *Writer, order binary.Endianness, v T) {
	var bo stdbinary.ByteOrder = stdbinary.BigEndian
	if order == binary.LittleEndian {
		bo = stdbinary.LittleEndian
	}
	if err := stdbinary.Write(w.w, bo, v); err != nil {
		panic(err)
	}
}
