// Package mp4 decodes ISO base media (MP4, M4A, M4B) and QuickTime
// movie headers.
package mp4

import (
	"fmt"

	"github.com/simonhull/mediasniff/internal/binary"
	"github.com/simonhull/mediasniff/internal/types"
)

// Atom represents an MP4/MOV atom (box).
type Atom struct {
	Size     uint64 // Total size including header
	Type     string // 4-character type code
	Offset   int64  // Position in file
	Extended bool   // Whether this uses 64-bit extended size
}

func (a *Atom) headerSize() int64 {
	if a.Extended {
		return 16
	}
	return 8
}

// DataSize returns the size of the atom's data (excluding header).
func (a *Atom) DataSize() uint64 {
	return a.Size - uint64(a.headerSize())
}

// DataOffset returns the file offset where the atom's data starts.
func (a *Atom) DataOffset() int64 {
	return a.Offset + a.headerSize()
}

// End returns the offset of the first byte after the atom.
func (a *Atom) End() int64 {
	return a.Offset + int64(a.Size)
}

// ChildOffset returns where child atoms start. meta is a full box, so its
// children follow 4 bytes of version and flags.
func (a *Atom) ChildOffset() int64 {
	if a.Type == "meta" {
		return a.DataOffset() + 4
	}
	return a.DataOffset()
}

var containerTypes = map[string]bool{
	"moov": true, // Movie container
	"trak": true, // Track container
	"mdia": true, // Media container
	"minf": true, // Media information
	"stbl": true, // Sample table
	"dinf": true, // Data information
	"edts": true, // Edit list container
	"udta": true, // User data
	"meta": true, // Metadata container
	"ilst": true, // iTunes metadata list
	"moof": true, // Movie fragment
	"traf": true, // Track fragment
	"mvex": true, // Movie extends
}

// IsContainer returns true if this atom type can contain other atoms.
func (a *Atom) IsContainer() bool {
	return containerTypes[a.Type]
}

// readAtomHeader reads the atom header at offset. end is the end of the
// enclosing atom (or the window); an atom running past it is truncated
// when end is the window end and malformed otherwise.
func readAtomHeader(sr *binary.SafeReader, offset, end int64) (*Atom, error) {
	header := make([]byte, 8)
	if err := sr.ReadAt(header, offset, "atom header"); err != nil {
		return nil, err
	}
	size32 := binary.Decode[uint32](header[0:4], binary.BigEndian)

	atom := &Atom{
		Type:   string(header[4:8]),
		Offset: offset,
	}

	switch size32 {
	case 0:
		// Extends to the end of the enclosing atom.
		atom.Size = uint64(end - offset)
	case 1:
		size64, err := binary.Read[uint64](sr, offset+8, "extended atom size")
		if err != nil {
			return nil, err
		}
		atom.Size = size64
		atom.Extended = true
	default:
		atom.Size = uint64(size32)
	}

	if atom.Size < uint64(atom.headerSize()) {
		return nil, &types.MalformedValueError{
			Format: types.FormatMP4,
			Field:  "atom size",
			Reason: fmt.Sprintf("%q has size %d, smaller than its header", atom.Type, atom.Size),
			Offset: offset,
		}
	}
	if atom.Size > uint64(end-offset) {
		if end >= sr.Size() {
			return nil, &types.ShortReadError{
				Path:   sr.Path(),
				What:   fmt.Sprintf("%q atom", atom.Type),
				Offset: offset,
				Length: int64(min(atom.Size, 1<<62)),
				Size:   sr.Size(),
			}
		}
		return nil, &types.MalformedValueError{
			Format: types.FormatMP4,
			Field:  "atom size",
			Reason: fmt.Sprintf("%q overruns its parent", atom.Type),
			Offset: offset,
		}
	}
	return atom, nil
}

// findAtom searches for an atom of the given type within [start, end).
// It returns nil without error when there is none.
func findAtom(sr *binary.SafeReader, start, end int64, atomType string) (*Atom, error) {
	var found *Atom
	err := eachAtom(sr, start, end, func(a *Atom) (bool, error) {
		if a.Type == atomType {
			found = a
			return false, nil
		}
		return true, nil
	})
	return found, err
}

// findPath follows a chain of atom types from the children of parent.
func findPath(sr *binary.SafeReader, parent *Atom, path ...string) (*Atom, error) {
	cur := parent
	for _, typ := range path {
		next, err := findAtom(sr, cur.ChildOffset(), cur.End(), typ)
		if err != nil || next == nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// eachAtom calls fn for every atom in [start, end) until fn returns false.
func eachAtom(sr *binary.SafeReader, start, end int64, fn func(*Atom) (bool, error)) error {
	// Trailing bytes too short for a header are ignored.
	for offset := start; end-offset >= 8; {
		atom, err := readAtomHeader(sr, offset, end)
		if err != nil {
			return err
		}
		more, err := fn(atom)
		if err != nil || !more {
			return err
		}
		offset = atom.End()
	}
	return nil
}

// Walk calls fn for every atom in the window, depth first, descending into
// container atoms. depth is 0 for top-level atoms.
func Walk(sr *binary.SafeReader, fn func(a *Atom, depth int) error) error {
	return walk(sr, 0, sr.Size(), 0, fn)
}

func walk(sr *binary.SafeReader, start, end int64, depth int, fn func(*Atom, int) error) error {
	return eachAtom(sr, start, end, func(a *Atom) (bool, error) {
		if err := fn(a, depth); err != nil {
			return false, err
		}
		if a.IsContainer() {
			if err := walk(sr, a.ChildOffset(), a.End(), depth+1, fn); err != nil {
				return false, err
			}
		}
		return true, nil
	})
}
