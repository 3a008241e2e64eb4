// Package webp decodes the dimensions of WebP images and, optionally, the
// feature chunks of the extended format.
package webp

import (
	"fmt"
	"strings"

	"github.com/simonhull/mediasniff/internal/binary"
	"github.com/simonhull/mediasniff/internal/types"
)

// Variant tags, trailing padding removed.
const (
	tagLossy    = "VP8"
	tagLossless = "VP8L"
	tagExtended = "VP8X"
)

// Option configures a Decoder.
type Option func(*Decoder)

// WithFeatureScan walks the RIFF chunk list after the header decode to
// detect alpha, animation and embedded metadata.
func WithFeatureScan() Option {
	return func(d *Decoder) {
		d.scanFeatures = true
	}
}

// Decoder reads the RIFF header and the first chunk of a WebP file.
type Decoder struct {
	scanFeatures bool
}

// New returns a WebP decoder.
func New(opts ...Option) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode implements registry.Decoder.
func (d *Decoder) Decode(r *binary.Reader) (*types.Result, error) {
	header, err := r.ReadExact(12, "RIFF header")
	if err != nil {
		return nil, fmt.Errorf("read RIFF header: %w", err)
	}
	riffSize := int32(binary.UnpackUint(header, 32, 32, binary.LSBFirst))
	if string(header[0:4]) != "RIFF" || riffSize <= 0 || string(header[8:12]) != "WEBP" {
		return nil, types.ErrNoMatch
	}

	tag, err := r.ReadExact(4, "WebP variant tag")
	if err != nil {
		return nil, err
	}

	result := &types.Result{}
	var variant string
	switch strings.TrimRight(string(tag), " \x00") {
	case tagLossy:
		variant = "lossy"
		err = readLossy(r, result)
	case tagLossless:
		variant = "lossless"
		err = readLossless(r, result)
	case tagExtended:
		variant = "extended"
		err = readExtended(r, result)
	default:
		return nil, types.ErrNoMatch
	}
	if err != nil {
		return nil, err
	}
	result.Intrinsics = types.Intrinsics{"variant": variant}

	if d.scanFeatures {
		if f, err := scanFeatures(r.Section()); err == nil {
			f.apply(result)
		}
	}
	return result, nil
}

// readLossy takes the two 16-bit fields after the VP8 start code as is,
// scale bits included.
func readLossy(r *binary.Reader, result *types.Result) error {
	if err := r.Skip(10, "VP8 frame header"); err != nil {
		return err
	}
	dims, err := r.ReadExact(4, "VP8 dimensions")
	if err != nil {
		return err
	}
	result.WidthPx = int(binary.UnpackUint(dims, 0, 16, binary.LSBFirst))
	result.HeightPx = int(binary.UnpackUint(dims, 16, 16, binary.LSBFirst))
	result.HasTransparency = false
	return nil
}

// readLossless decodes the 14-bit width-1 and height-1 fields of the VP8L
// header word.
func readLossless(r *binary.Reader, result *types.Result) error {
	if err := r.Skip(5, "VP8L chunk size and signature"); err != nil {
		return err
	}
	word, err := r.ReadExact(4, "VP8L dimensions")
	if err != nil {
		return err
	}
	result.WidthPx = int(binary.UnpackUint(word, 0, 14, binary.LSBFirst)) + 1
	result.HeightPx = int(binary.UnpackUint(word, 14, 14, binary.LSBFirst)) + 1
	return nil
}

// readExtended decodes the 24-bit canvas width-1 and height-1 of VP8X.
// The flags byte is left to the feature scan.
func readExtended(r *binary.Reader, result *types.Result) error {
	if err := r.Skip(1, "VP8X header"); err != nil {
		return err
	}
	if err := r.Skip(7, "VP8X reserved bytes"); err != nil {
		return err
	}
	canvas, err := r.ReadExact(6, "VP8X canvas size")
	if err != nil {
		return err
	}
	result.WidthPx = int(binary.UnpackUint(canvas, 0, 24, binary.LSBFirst)) + 1
	result.HeightPx = int(binary.UnpackUint(canvas, 24, 24, binary.LSBFirst)) + 1
	return nil
}
