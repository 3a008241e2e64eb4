package mp3

import (
	"fmt"

	"github.com/simonhull/mediasniff/internal/binary"
	"github.com/simonhull/mediasniff/internal/types"
)

const (
	id3v2Magic      = "ID3"
	id3v2HeaderSize = 10
	id3v1Size       = 128

	id3FlagFooter = 0x10
)

// id3v2Header is the fixed 10-byte ID3v2 tag header.
type id3v2Header struct {
	Version  byte // Major version (2, 3 or 4)
	Revision byte
	Flags    byte
	Size     uint32 // Tag size excluding header and footer
}

// totalSize is the number of bytes from the start of the tag to the first
// byte after it.
func (h *id3v2Header) totalSize() int64 {
	n := int64(id3v2HeaderSize) + int64(h.Size)
	if h.Version == 4 && h.Flags&id3FlagFooter != 0 {
		n += id3v2HeaderSize
	}
	return n
}

// readID3v2Header reads the tag header at the reader's cursor. ok is false
// when the stream does not start with an ID3v2 tag; the cursor is then
// left where it was.
func readID3v2Header(r *binary.Reader) (*id3v2Header, bool, error) {
	start := r.Offset()
	found, err := r.Expect(id3v2Magic, "ID3v2 magic")
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, r.Seek(start)
	}

	buf, err := r.ReadExact(id3v2HeaderSize-len(id3v2Magic), "ID3v2 header")
	if err != nil {
		return nil, false, err
	}

	h := &id3v2Header{Version: buf[0], Revision: buf[1], Flags: buf[2]}
	if h.Version < 2 || h.Version > 4 || h.Revision == 0xFF {
		return nil, false, &types.MalformedValueError{
			Format: types.FormatMP3,
			Field:  "ID3v2 version",
			Reason: fmt.Sprintf("unsupported version 2.%d.%d", h.Version, h.Revision),
			Offset: start + 3,
		}
	}

	size, ok := decodeSynchsafe(buf[3:7])
	if !ok {
		return nil, false, &types.MalformedValueError{
			Format: types.FormatMP3,
			Field:  "ID3v2 size",
			Reason: "high bit set in synchsafe integer",
			Offset: start + 6,
		}
	}
	h.Size = size
	return h, true, nil
}

// decodeSynchsafe decodes a 28-bit integer stored in the low 7 bits of four
// bytes. ok is false when any high bit is set.
func decodeSynchsafe(b []byte) (uint32, bool) {
	var v uint32
	for _, c := range b {
		if c&0x80 != 0 {
			return 0, false
		}
		v = v<<7 | uint32(c)
	}
	return v, true
}

// hasID3v1 reports whether the window ends with a 128-byte ID3v1 tag.
func hasID3v1(sr *binary.SafeReader) bool {
	if sr.Size() < id3v1Size {
		return false
	}
	buf := make([]byte, 3)
	if err := sr.ReadAt(buf, sr.Size()-id3v1Size, "ID3v1 tag"); err != nil {
		return false
	}
	return string(buf) == "TAG"
}
