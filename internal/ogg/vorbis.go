package ogg

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/simonhull/mediasniff/internal/binary"
	"github.com/simonhull/mediasniff/internal/registry"
	"github.com/simonhull/mediasniff/internal/types"
)

// vorbisIdentification is the Vorbis identification header (packet type 0x01).
type vorbisIdentification struct {
	Channels       int
	SampleRate     int
	BitrateMaximum int32
	BitrateNominal int32
	BitrateMinimum int32
}

// parseVorbisIdentification parses the Vorbis identification header.
//
// Layout (little-endian): type 0x01, "vorbis", version (32), channels (8),
// sample rate (32), bitrate maximum/nominal/minimum (32 each), blocksizes,
// framing bit.
func parseVorbisIdentification(data []byte) (*vorbisIdentification, error) {
	malformed := func(field, reason string) error {
		return &types.MalformedValueError{Format: types.FormatOgg, Field: field, Reason: reason}
	}

	if len(data) < 30 {
		return nil, malformed("identification header", fmt.Sprintf("too short: %d bytes", len(data)))
	}
	if version := binary.Decode[uint32](data[7:11], binary.LittleEndian); version != 0 {
		return nil, malformed("vorbis version", fmt.Sprintf("unsupported version %d", version))
	}

	id := &vorbisIdentification{
		Channels:       int(data[11]),
		SampleRate:     int(binary.Decode[uint32](data[12:16], binary.LittleEndian)),
		BitrateMaximum: int32(binary.Decode[uint32](data[16:20], binary.LittleEndian)),
		BitrateNominal: int32(binary.Decode[uint32](data[20:24], binary.LittleEndian)),
		BitrateMinimum: int32(binary.Decode[uint32](data[24:28], binary.LittleEndian)),
	}
	if id.Channels == 0 {
		return nil, malformed("channel count", "zero channels")
	}
	if id.SampleRate == 0 {
		return nil, malformed("sample rate", "zero sample rate")
	}
	return id, nil
}

// vorbisLength asks oggvorbis for the exact stream length in samples.
// It needs intact setup headers; callers fall back to the granule scan.
func vorbisLength(section io.ReadSeeker) (int64, error) {
	var length int64
	err := registry.Guard(types.FormatOgg, "vorbis length", func() error {
		n, _, err := oggvorbis.GetLength(section)
		if err != nil {
			return err
		}
		length = n
		return nil
	})
	return length, err
}
