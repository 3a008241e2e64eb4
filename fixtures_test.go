package mediasniff_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/simonhull/mediasniff/internal/binary"
	"github.com/simonhull/mediasniff/internal/binary/binarytest"
)

// flacStream builds fLaC + a lone STREAMINFO block: 44.1kHz stereo 16-bit,
// 88200 samples.
func flacStream() []byte {
	buf := &bytes.Buffer{}
	buf.WriteString("fLaC")
	buf.Write([]byte{0x80, 0x00, 0x00, 0x22})
	buf.Write(binary.NewBitWriter(binary.MSBFirst).
		WriteBits(4096, 16).
		WriteBits(4096, 16).
		WriteBits(0, 24).
		WriteBits(0, 24).
		WriteBits(44100, 20).
		WriteBits(1, 3).
		WriteBits(15, 5).
		WriteBits(88200, 36).
		Bytes())
	buf.Write(make([]byte, 16))
	return buf.Bytes()
}

// webpLossless builds a RIFF WEBP file holding a single VP8L chunk.
func webpLossless(width, height uint64, alpha bool) []byte {
	var alphaBit uint64
	if alpha {
		alphaBit = 1
	}
	body := []byte{0x2f}
	body = append(body, binary.NewBitWriter(binary.LSBFirst).
		WriteBits(width-1, 14).
		WriteBits(height-1, 14).
		WriteBits(alphaBit, 1).
		WriteBits(0, 3).
		Bytes()...)
	body = append(body, make([]byte, 7)...)

	buf := &bytes.Buffer{}
	sw := binarytest.NewWriter(buf)
	sw.String("RIFF")
	binarytest.Put[uint32](sw, binary.LittleEndian, uint32(4+8+len(body)))
	sw.String("WEBP")
	sw.String("VP8L")
	binarytest.Put[uint32](sw, binary.LittleEndian, uint32(len(body)))
	sw.Bytes(body)
	return buf.Bytes()
}

// audiobookStream builds an ftyp(M4B) + empty moov file.
func audiobookStream() []byte {
	buf := &bytes.Buffer{}
	sw := binarytest.NewWriter(buf)
	binarytest.Put[uint32](sw, binary.BigEndian, 20)
	sw.String("ftyp")
	sw.String("M4B ")
	binarytest.Put[uint32](sw, binary.BigEndian, 0)
	sw.String("M4B ")
	binarytest.Put[uint32](sw, binary.BigEndian, 8)
	sw.String("moov")
	return buf.Bytes()
}

func writeTemp(tb testing.TB, name string, data []byte) string {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		tb.Fatal(err)
	}
	return path
}
