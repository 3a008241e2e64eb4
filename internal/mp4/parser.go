package mp4

import (
	"fmt"
	"strings"

	"github.com/simonhull/mediasniff/internal/binary"
	"github.com/simonhull/mediasniff/internal/types"
)

// Major brands that decide the format on their own. Every other brand
// (isom, mp41, mp42, avc1, 3gp*, ...) is classified by its tracks.
var brandFormats = map[string]types.Format{
	"M4A ": types.FormatM4A,
	"M4P ": types.FormatM4A,
	"M4B ": types.FormatM4B,
	"qt  ": types.FormatMOV,
}

// legacyQuickTime lists atom types that may open a QuickTime movie
// written before ftyp existed.
var legacyQuickTime = map[string]bool{
	"moov": true,
	"mdat": true,
	"wide": true,
	"pnot": true,
}

// Decoder recognizes one ISO base media format. All four formats share
// the same container, so each instance classifies the file and declines
// the ones that belong to a sibling.
type Decoder struct {
	want types.Format
}

// New returns a decoder for types.FormatM4A, FormatM4B, FormatMP4 or
// FormatMOV.
func New(want types.Format) *Decoder {
	return &Decoder{want: want}
}

// fileType is the decoded ftyp atom.
type fileType struct {
	MajorBrand       string
	MinorVersion     uint32
	CompatibleBrands []string
}

// Decode implements registry.Decoder.
func (d *Decoder) Decode(r *binary.Reader) (*types.Result, error) {
	header, err := r.ReadExact(8, "first atom header")
	if err != nil {
		return nil, err
	}
	first := string(header[4:8])

	var ftyp *fileType
	switch {
	case first == "ftyp":
		atom, err := readAtomHeader(r.SafeReader, 0, r.Size())
		if err != nil {
			return nil, fmt.Errorf("read ftyp atom: %w", err)
		}
		if ftyp, err = parseFileType(r.SafeReader, atom); err != nil {
			return nil, err
		}
	case legacyQuickTime[first]:
		if d.want != types.FormatMOV {
			return nil, types.ErrNoMatch
		}
	default:
		return nil, types.ErrNoMatch
	}

	// A brand that names another format is decided before moov is read.
	format, decided := types.Format(""), false
	if ftyp == nil {
		format, decided = types.FormatMOV, true
	} else {
		format, decided = brandFormats[ftyp.MajorBrand]
	}
	if decided && format != d.want {
		return nil, types.ErrNoMatch
	}

	moov, err := findAtom(r.SafeReader, 0, r.Size(), "moov")
	if err != nil {
		return nil, fmt.Errorf("find moov atom: %w", err)
	}
	if moov == nil {
		// Every top-level atom fit and none was moov: the stream ends early.
		return nil, &types.ShortReadError{
			Path:   r.Path(),
			What:   "moov atom",
			Offset: r.Size(),
			Length: 8,
			Size:   r.Size(),
		}
	}
	movie, err := parseMovie(r.SafeReader, moov)
	if err != nil {
		return nil, fmt.Errorf("parse moov atom: %w", err)
	}

	if !decided {
		format = types.FormatMP4
		if movie.firstTrack(handlerVideo) == nil && movie.firstTrack(handlerSound) != nil {
			format = types.FormatM4A
		}
		if format != d.want {
			return nil, types.ErrNoMatch
		}
	}

	return buildResult(format, ftyp, movie), nil
}

// parseFileType reads the ftyp atom: major brand (32), minor version (32),
// then compatible brands to the end of the atom.
func parseFileType(sr *binary.SafeReader, atom *Atom) (*fileType, error) {
	if atom.DataSize() < 8 {
		return nil, &types.MalformedValueError{
			Format: types.FormatMP4,
			Field:  "ftyp",
			Reason: fmt.Sprintf("%d data bytes, need at least 8", atom.DataSize()),
			Offset: atom.Offset,
		}
	}
	// Compatible brand lists are short; cap what is read.
	size := min(atom.DataSize(), 8+4*64)
	buf := make([]byte, size)
	if err := sr.ReadAt(buf, atom.DataOffset(), "ftyp data"); err != nil {
		return nil, err
	}

	ft := &fileType{
		MajorBrand:   string(buf[0:4]),
		MinorVersion: binary.Decode[uint32](buf[4:8], binary.BigEndian),
	}
	for i := 8; i+4 <= len(buf); i += 4 {
		ft.CompatibleBrands = append(ft.CompatibleBrands, string(buf[i:i+4]))
	}
	return ft, nil
}

func buildResult(format types.Format, ftyp *fileType, movie *movieInfo) *types.Result {
	result := &types.Result{Intrinsics: types.Intrinsics{}}
	if ftyp != nil {
		result.Intrinsics["major_brand"] = strings.TrimSpace(ftyp.MajorBrand)
		result.Intrinsics["compatible_brands"] = brandList(ftyp.CompatibleBrands)
	}
	if movie.Timescale > 0 {
		result.Intrinsics["timescale"] = int64(movie.Timescale)
	}
	result.Intrinsics["track_count"] = len(movie.Tracks)

	audio := movie.firstTrack(handlerSound)
	if audio != nil {
		result.NumAudioChannels = audio.Channels
		result.AudioSampleRateHz = audio.Rate
		result.Intrinsics["audio_codec"] = audio.Codec
		if audio.Profile != "" {
			result.Intrinsics["audio_profile"] = audio.Profile
		}
	}

	switch format {
	case types.FormatM4A, types.FormatM4B:
		if audio != nil {
			result.BitsPerSample = audio.Bits
			result.Intrinsics["codec"] = audio.Codec
			result.Intrinsics["codec_name"] = audioCodecName(audio)
		}
	default:
		if video := movie.firstTrack(handlerVideo); video != nil {
			result.WidthPx = video.Width
			result.HeightPx = video.Height
			result.Intrinsics["video_codec"] = video.Codec
			result.Intrinsics["codec"] = video.Codec
			result.Intrinsics["codec_name"] = codecName(video.Codec)
		}
	}

	if seconds, ok := movie.durationSeconds(); ok {
		result.SetDuration(seconds)
	}
	return result
}

// audioCodecName prefers a non-LC AAC profile to the plain codec name.
func audioCodecName(t *trackInfo) string {
	if t.Profile != "" && t.Profile != "AAC-LC" {
		return t.Profile
	}
	return codecName(t.Codec)
}

func brandList(brands []string) string {
	trimmed := make([]string, 0, len(brands))
	for _, b := range brands {
		if b = strings.TrimSpace(b); b != "" {
			trimmed = append(trimmed, b)
		}
	}
	return strings.Join(trimmed, ",")
}
