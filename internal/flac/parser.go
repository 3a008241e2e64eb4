// Package flac decodes the FLAC stream header.
package flac

import (
	"fmt"

	"github.com/simonhull/mediasniff/internal/binary"
	"github.com/simonhull/mediasniff/internal/types"
)

const (
	magic             = "fLaC"
	blockHeaderSize   = 4
	streamInfoSize    = 34
	streamInfoOffset  = int64(len(magic) + blockHeaderSize)
	packedFieldOffset = 10
)

// Decoder reads the STREAMINFO block that every FLAC stream starts with.
// The metadata block header is skipped without checking its type.
type Decoder struct{}

// New returns a FLAC decoder.
func New() *Decoder {
	return &Decoder{}
}

// Decode implements registry.Decoder.
func (d *Decoder) Decode(r *binary.Reader) (*types.Result, error) {
	ok, err := r.Expect(magic, "FLAC magic bytes")
	if err != nil {
		return nil, fmt.Errorf("read FLAC magic: %w", err)
	}
	if !ok {
		return nil, types.ErrNoMatch
	}

	if err := r.Skip(blockHeaderSize, "metadata block header"); err != nil {
		return nil, err
	}
	data, err := r.ReadExact(streamInfoSize, "STREAMINFO block")
	if err != nil {
		return nil, err
	}

	info := parseStreamInfo(data)
	if info.sampleRate == 0 {
		return nil, &types.MalformedValueError{
			Format: types.FormatFLAC,
			Field:  "sample rate",
			Reason: "zero sample rate",
			Offset: streamInfoOffset + packedFieldOffset,
		}
	}

	result := &types.Result{
		NumAudioChannels:  int(info.channels),
		AudioSampleRateHz: int(info.sampleRate),
		BitsPerSample:     int(info.bitsPerSample),
		Intrinsics: types.Intrinsics{
			"bits_per_sample":    int(info.bitsPerSample),
			"minimum_frame_size": int(info.minFrameSize),
			"maximum_frame_size": int(info.maxFrameSize),
			"minimum_block_size": int(info.minBlockSize),
			"maximum_block_size": int(info.maxBlockSize),
			"total_samples":      info.totalSamples,
		},
	}
	result.SetDuration(float64(info.totalSamples) / float64(info.sampleRate))
	return result, nil
}

type streamInfo struct {
	minBlockSize  uint64
	maxBlockSize  uint64
	minFrameSize  uint64
	maxFrameSize  uint64
	sampleRate    uint64
	channels      uint64
	bitsPerSample uint64
	totalSamples  uint64
}

// parseStreamInfo unpacks the 34-byte STREAMINFO body.
//
//	bytes 0-1   min block size
//	bytes 2-3   max block size
//	bytes 4-6   min frame size
//	bytes 7-9   max frame size
//	bytes 10-17 sample rate (20) | channels-1 (3) | bits-1 (5) | total samples (36)
func parseStreamInfo(data []byte) streamInfo {
	field := func(bitOffset, bitLength int) uint64 {
		return binary.UnpackUint(data, bitOffset, bitLength, binary.MSBFirst)
	}

	const packed = packedFieldOffset * 8
	return streamInfo{
		minBlockSize:  field(0, 16),
		maxBlockSize:  field(16, 16),
		minFrameSize:  field(32, 24),
		maxFrameSize:  field(56, 24),
		sampleRate:    field(packed, 20),
		channels:      field(packed+20, 3) + 1,
		bitsPerSample: field(packed+23, 5) + 1,
		totalSamples:  field(packed+28, 36),
	}
}
