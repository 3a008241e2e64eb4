package webp

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/riff"

	"github.com/simonhull/mediasniff/internal/binary"
	"github.com/simonhull/mediasniff/internal/registry"
	"github.com/simonhull/mediasniff/internal/types"
)

// VP8X flag bits.
const (
	flagAnimation = 1 << 1
	flagXMP       = 1 << 2
	flagEXIF      = 1 << 3
	flagAlpha     = 1 << 4
	flagICC       = 1 << 5
)

// features is what the chunk walk found.
type features struct {
	alpha      bool
	animated   bool
	frameCount int
	exif       bool
	xmp        bool
	icc        bool
}

func (f features) apply(result *types.Result) {
	result.HasTransparency = result.HasTransparency || f.alpha
	result.Intrinsics["animated"] = f.animated
	result.Intrinsics["has_exif"] = f.exif
	result.Intrinsics["has_xmp"] = f.xmp
	result.Intrinsics["has_icc_profile"] = f.icc
	if f.animated {
		result.Intrinsics["frame_count"] = f.frameCount
	}
}

// scanFeatures walks the top-level chunks of a WebP file.
func scanFeatures(section *io.SectionReader) (features, error) {
	var f features
	err := registry.Guard(types.FormatWebP, "RIFF chunk list", func() error {
		return walkChunks(section, func(id string, body io.Reader, size int) error {
			switch id {
			case "VP8X":
				flags, err := readBytes(body, 1)
				if err != nil {
					return err
				}
				f.alpha = f.alpha || flags[0]&flagAlpha != 0
				f.animated = f.animated || flags[0]&flagAnimation != 0
				f.exif = f.exif || flags[0]&flagEXIF != 0
				f.xmp = f.xmp || flags[0]&flagXMP != 0
				f.icc = f.icc || flags[0]&flagICC != 0
			case "VP8L":
				// signature byte, then width-1 (14), height-1 (14), alpha_is_used (1)
				hdr, err := readBytes(body, 5)
				if err != nil {
					return err
				}
				if binary.UnpackUint(hdr[1:], 28, 1, binary.LSBFirst) == 1 {
					f.alpha = true
				}
			case "ALPH":
				f.alpha = true
			case "ANIM":
				f.animated = true
			case "ANMF":
				f.frameCount++
			case "EXIF":
				f.exif = true
			case "XMP ":
				f.xmp = true
			case "ICCP":
				f.icc = true
			}
			return nil
		})
	})
	return f, err
}

// walkChunks calls fn for every chunk in a RIFF WEBP stream. Chunk bodies
// are skipped by seeking, so only the bytes fn reads are loaded.
func walkChunks(section io.ReadSeeker, fn func(id string, body io.Reader, size int) error) error {
	p := riff.New(section)
	if err := p.ParseHeaders(); err != nil {
		return fmt.Errorf("parse RIFF headers: %w", err)
	}
	if string(p.Format[:]) != "WEBP" {
		return types.ErrNoMatch
	}

	for {
		ch, err := p.NextChunk()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return err
		}

		before, err := section.Seek(0, io.SeekCurrent)
		if err != nil {
			return err
		}
		if err := fn(string(ch.ID[:]), ch, ch.Size); err != nil {
			return err
		}
		after, err := section.Seek(0, io.SeekCurrent)
		if err != nil {
			return err
		}

		skip := int64(ch.Size) - (after - before)
		if ch.Size%2 == 1 {
			skip++
		}
		if _, err := section.Seek(skip, io.SeekCurrent); err != nil {
			return err
		}
	}
}

func readBytes(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
