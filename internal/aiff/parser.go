// Package aiff decodes AIFF and AIFF-C headers.
package aiff

import (
	"fmt"

	"github.com/go-audio/aiff"

	"github.com/simonhull/mediasniff/internal/binary"
	"github.com/simonhull/mediasniff/internal/pcm"
	"github.com/simonhull/mediasniff/internal/registry"
	"github.com/simonhull/mediasniff/internal/types"
)

// Decoder reads the COMM chunk of an AIFF or AIFF-C file.
type Decoder struct{}

// New returns an AIFF decoder.
func New() *Decoder {
	return &Decoder{}
}

// Decode implements registry.Decoder.
func (d *Decoder) Decode(r *binary.Reader) (*types.Result, error) {
	header, err := r.ReadExact(12, "FORM header")
	if err != nil {
		return nil, fmt.Errorf("read FORM header: %w", err)
	}
	form := string(header[8:12])
	if string(header[0:4]) != "FORM" || (form != "AIFF" && form != "AIFC") {
		return nil, types.ErrNoMatch
	}

	layout := pcm.Layout{Format: types.FormatAIFF, Order: binary.BigEndian, Header: "COMM"}
	if err := pcm.CheckChunks(r.SafeReader, layout); err != nil {
		return nil, fmt.Errorf("check AIFF chunks: %w", err)
	}

	dec := aiff.NewDecoder(r.Section())
	err = registry.Guard(types.FormatAIFF, "COMM chunk", func() error {
		dec.ReadInfo()
		return dec.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("read AIFF chunks: %w", err)
	}

	info := pcm.Info{
		Format:   dec.Format(),
		BitDepth: int(dec.BitDepth),
		Frames:   int64(dec.NumSampleFrames),
	}
	if err := info.Validate(types.FormatAIFF, 12); err != nil {
		return nil, err
	}

	result := info.Result()
	result.Intrinsics["compression"] = form
	return result, nil
}
