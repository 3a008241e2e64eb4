package pcm

import (
	"github.com/simonhull/mediasniff/internal/binary"
	"github.com/simonhull/mediasniff/internal/types"
)

// MaxHeaderChunk caps the body of a fmt or COMM chunk. Real ones are a few
// dozen bytes; go-audio allocates whatever the header declares.
const MaxHeaderChunk = 64 << 10

// Layout names the chunks CheckChunks looks for in a RIFF or IFF file.
type Layout struct {
	Format types.Format
	Order  binary.Endianness

	// Header is the format chunk (fmt or COMM).
	Header string

	// Data ends the walk. Empty ends it right after Header.
	Data string

	// List is a chunk holding INFO entries, each with its own size.
	List string
}

// CheckChunks walks the chunk headers after the 12-byte container header
// as far as go-audio will read. Every chunk on the way must fit in the
// window, the header chunk may not exceed MaxHeaderChunk, and INFO entries
// of a list chunk must fit in the list.
func CheckChunks(sr *binary.SafeReader, l Layout) error {
	r := binary.NewReader(sr, 12)
	seenHeader := false
	for {
		start := r.Offset()
		hdr, err := r.ReadExact(8, "chunk header")
		if err != nil {
			if seenHeader {
				return nil
			}
			return err
		}

		id := string(hdr[:4])
		size := int64(binary.Decode[uint32](hdr[4:], l.Order))
		if l.Data != "" && id == l.Data {
			return nil
		}
		if err := r.Skip(size, id+" chunk body"); err != nil {
			return err
		}
		if id == l.Header && size > MaxHeaderChunk {
			return &types.MalformedValueError{
				Format: l.Format,
				Field:  id + " chunk size",
				Reason: "larger than any real header",
				Offset: start + 4,
			}
		}
		if l.List != "" && id == l.List {
			if err := checkInfoEntries(sr, l, start+8, size); err != nil {
				return err
			}
		}
		if id == l.Header {
			if l.Data == "" {
				return nil
			}
			seenHeader = true
		}
		if size%2 == 1 && r.Remaining() > 0 {
			_ = r.Skip(1, "chunk pad byte")
		}
	}
}

// checkInfoEntries walks the entries of a LIST/INFO body. Entries are
// packed without pad bytes; anything that is not INFO is left alone.
func checkInfoEntries(sr *binary.SafeReader, l Layout, body, size int64) error {
	r := binary.NewReader(sr.Limit(body+size), body)
	ok, err := r.Expect("INFO", "list type")
	if err != nil || !ok {
		return err
	}
	for r.Remaining() >= 8 {
		start := r.Offset()
		hdr, err := r.ReadExact(8, "INFO entry header")
		if err != nil {
			return err
		}
		n := int64(binary.Decode[uint32](hdr[4:], binary.LittleEndian))
		if n > r.Remaining() {
			return &types.MalformedValueError{
				Format: l.Format,
				Field:  "INFO entry size",
				Reason: "runs past the end of its list",
				Offset: start + 4,
			}
		}
		_ = r.Skip(n, "INFO entry")
	}
	return nil
}
