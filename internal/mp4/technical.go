package mp4

import (
	"fmt"

	"github.com/simonhull/mediasniff/internal/binary"
	"github.com/simonhull/mediasniff/internal/types"
)

// Handler types from hdlr.
const (
	handlerSound = "soun"
	handlerVideo = "vide"
)

// movieInfo is what the moov atom says about the presentation.
type movieInfo struct {
	Timescale uint32
	Duration  uint64 // In Timescale units
	HasHeader bool   // mvhd was present
	Tracks    []trackInfo
}

// trackInfo describes one trak.
type trackInfo struct {
	Handler   string
	Timescale uint32 // From mdhd
	Duration  uint64 // From mdhd, in Timescale units
	Width     int    // From tkhd, or the visual sample entry
	Height    int
	Codec     string // Sample entry FourCC
	Channels  int
	Rate      int
	Bits      int
	Profile   string // AAC profile, audio only
}

// firstTrack returns the first track with the given handler.
func (m *movieInfo) firstTrack(handler string) *trackInfo {
	for i := range m.Tracks {
		if m.Tracks[i].Handler == handler {
			return &m.Tracks[i]
		}
	}
	return nil
}

// durationSeconds returns the presentation duration. mvhd wins; a track's
// mdhd is used when mvhd has none. ok is false when neither is usable.
func (m *movieInfo) durationSeconds() (float64, bool) {
	if m.HasHeader && m.Timescale > 0 && m.Duration > 0 && !unknownDuration(m.Duration) {
		return float64(m.Duration) / float64(m.Timescale), true
	}
	for _, t := range m.Tracks {
		if t.Timescale > 0 && t.Duration > 0 && !unknownDuration(t.Duration) {
			return float64(t.Duration) / float64(t.Timescale), true
		}
	}
	return 0, false
}

// unknownDuration reports the all-ones value used for "not known".
func unknownDuration(d uint64) bool {
	return d == 0xFFFFFFFF || d == 0xFFFFFFFFFFFFFFFF
}

// parseMovie reads mvhd and every trak inside moov.
func parseMovie(sr *binary.SafeReader, moov *Atom) (*movieInfo, error) {
	info := &movieInfo{}

	err := eachAtom(sr, moov.ChildOffset(), moov.End(), func(a *Atom) (bool, error) {
		switch a.Type {
		case "mvhd":
			timescale, duration, err := parseTimeHeader(sr, a)
			if err != nil {
				return false, err
			}
			info.Timescale, info.Duration, info.HasHeader = timescale, duration, true
		case "trak":
			track, err := parseTrack(sr, a)
			if err != nil {
				return false, err
			}
			info.Tracks = append(info.Tracks, *track)
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// parseTimeHeader reads timescale and duration from an mvhd or mdhd atom.
//
// Version 0: creation (32), modification (32), timescale (32), duration (32).
// Version 1: creation (64), modification (64), timescale (32), duration (64).
func parseTimeHeader(sr *binary.SafeReader, a *Atom) (timescale uint32, duration uint64, err error) {
	r := binary.NewReader(sr, a.DataOffset())
	cr := binary.NewChainReader(r)

	version := binary.ReadChained[uint8](cr, a.Type+" version")
	cr.Skip(3, a.Type+" flags")

	if version == 1 {
		cr.Skip(16, a.Type+" times")
		timescale = binary.ReadChained[uint32](cr, a.Type+" timescale")
		duration = binary.ReadChained[uint64](cr, a.Type+" duration")
	} else {
		cr.Skip(8, a.Type+" times")
		timescale = binary.ReadChained[uint32](cr, a.Type+" timescale")
		duration = uint64(binary.ReadChained[uint32](cr, a.Type+" duration"))
	}
	if err := cr.Error(); err != nil {
		return 0, 0, err
	}
	if r.Offset() > a.End() {
		return 0, 0, &types.MalformedValueError{Format: types.FormatMP4, Field: a.Type, Reason: "atom too small", Offset: a.Offset}
	}
	return timescale, duration, nil
}

// parseTrack reads tkhd, mdia/hdlr, mdia/mdhd and the first sample entry.
func parseTrack(sr *binary.SafeReader, trak *Atom) (*trackInfo, error) {
	track := &trackInfo{}

	tkhd, err := findAtom(sr, trak.ChildOffset(), trak.End(), "tkhd")
	if err != nil {
		return nil, err
	}
	if tkhd != nil {
		if track.Width, track.Height, err = parseTrackDimensions(sr, tkhd); err != nil {
			return nil, err
		}
	}

	mdia, err := findAtom(sr, trak.ChildOffset(), trak.End(), "mdia")
	if err != nil || mdia == nil {
		return track, err
	}

	if hdlr, err := findAtom(sr, mdia.ChildOffset(), mdia.End(), "hdlr"); err != nil {
		return nil, err
	} else if hdlr != nil {
		// version/flags (32), pre_defined (32), handler_type (32)
		handler := make([]byte, 4)
		if err := sr.ReadAt(handler, hdlr.DataOffset()+8, "handler type"); err != nil {
			return nil, err
		}
		track.Handler = string(handler)
	}

	if mdhd, err := findAtom(sr, mdia.ChildOffset(), mdia.End(), "mdhd"); err != nil {
		return nil, err
	} else if mdhd != nil {
		if track.Timescale, track.Duration, err = parseTimeHeader(sr, mdhd); err != nil {
			return nil, err
		}
	}

	stsd, err := findPath(sr, mdia, "minf", "stbl", "stsd")
	if err != nil {
		return nil, err
	}
	if stsd != nil {
		if err := parseStsd(sr, stsd, track); err != nil {
			return nil, err
		}
	}
	return track, nil
}

// parseTrackDimensions reads the 16.16 fixed-point width and height at the
// end of tkhd. Audio tracks carry zeros.
func parseTrackDimensions(sr *binary.SafeReader, tkhd *Atom) (width, height int, err error) {
	version, err := binary.Read[uint8](sr, tkhd.DataOffset(), "tkhd version")
	if err != nil {
		return 0, 0, err
	}

	// version/flags, times, track ID, reserved, duration, reserved (8),
	// layer, alternate group, volume, reserved, matrix (36).
	offset := tkhd.DataOffset() + 4 + 20 + 8 + 8 + 36
	if version == 1 {
		offset += 12
	}
	if offset+8 > tkhd.End() {
		return 0, 0, &types.MalformedValueError{Format: types.FormatMP4, Field: "tkhd", Reason: "atom too small", Offset: tkhd.Offset}
	}

	w, err := binary.Read[uint32](sr, offset, "tkhd width")
	if err != nil {
		return 0, 0, err
	}
	h, err := binary.Read[uint32](sr, offset+4, "tkhd height")
	if err != nil {
		return 0, 0, err
	}
	return int(w >> 16), int(h >> 16), nil
}

// parseStsd reads the first sample entry of a sample description atom.
//
// stsd: version/flags (32), entry count (32), then entries. Every entry
// starts with size (32), format (32), reserved (48), data reference index
// (16).
func parseStsd(sr *binary.SafeReader, stsd *Atom, track *trackInfo) error {
	r := binary.NewReader(sr, stsd.DataOffset())
	cr := binary.NewChainReader(r)

	cr.Skip(4, "stsd version")
	entries := binary.ReadChained[uint32](cr, "stsd entry count")
	if err := cr.Error(); err != nil {
		return err
	}
	if entries == 0 {
		return nil
	}

	entryOffset := r.Offset()
	entrySize := binary.ReadChained[uint32](cr, "sample entry size")
	track.Codec = cr.String(4, "sample entry format")
	cr.Skip(8, "sample entry reserved")
	if err := cr.Error(); err != nil {
		return err
	}
	if entryOffset+int64(entrySize) > stsd.End() {
		return &types.MalformedValueError{
			Format: types.FormatMP4,
			Field:  "sample entry size",
			Reason: fmt.Sprintf("%d bytes overrun stsd", entrySize),
			Offset: entryOffset,
		}
	}

	switch track.Handler {
	case handlerSound:
		// version (16), revision (16), vendor (32), channels (16),
		// sample size (16), compression ID (16), packet size (16),
		// sample rate (16.16)
		cr.Skip(8, "sound entry version")
		track.Channels = int(binary.ReadChained[uint16](cr, "channels"))
		track.Bits = int(binary.ReadChained[uint16](cr, "sample size"))
		cr.Skip(4, "compression ID")
		track.Rate = int(binary.ReadChained[uint32](cr, "sample rate") >> 16)
		if track.Codec == "mp4a" {
			track.Profile = aacProfile(sr, entryOffset, entrySize)
		}
	case handlerVideo:
		// pre_defined (16), reserved (16), pre_defined (96), width (16), height (16)
		cr.Skip(16, "visual entry header")
		w := binary.ReadChained[uint16](cr, "visual width")
		h := binary.ReadChained[uint16](cr, "visual height")
		if track.Width == 0 && track.Height == 0 {
			track.Width, track.Height = int(w), int(h)
		}
	}
	return cr.Error()
}
