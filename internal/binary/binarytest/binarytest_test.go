package binarytest

import (
	"bytes"
	"testing"

	"github.com/simonhull/mediasniff/internal/binary"
)

func TestPut(t *testing.T) {
	tests := []struct {
		name  string
		write func(w *Writer)
		want  []byte
	}{
		{"uint8", func(w *Writer) { Put[uint8](w, binary.BigEndian, 0x42) }, []byte{0x42}},
		{"uint16 be", func(w *Writer) { Put[uint16](w, binary.BigEndian, 0x1234) }, []byte{0x12, 0x34}},
		{"uint16 le", func(w *Writer) { Put[uint16](w, binary.LittleEndian, 0x1234) }, []byte{0x34, 0x12}},
		{"uint32 le", func(w *Writer) { Put[uint32](w, binary.LittleEndian, 0x12345678) }, []byte{0x78, 0x56, 0x34, 0x12}},
		{"uint64 be", func(w *Writer) { Put[uint64](w, binary.BigEndian, 1) }, []byte{0, 0, 0, 0, 0, 0, 0, 1}},
		{"string then bytes", func(w *Writer) { w.String("WEBP"); w.Bytes([]byte{0}) }, []byte("WEBP\x00")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tt.write(NewWriter(buf))
			if !bytes.Equal(buf.Bytes(), tt.want) {
				t.Errorf("expected % x, got % x", tt.want, buf.Bytes())
			}
		})
	}
}
