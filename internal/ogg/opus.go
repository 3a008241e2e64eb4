package ogg

import (
	"fmt"

	"github.com/simonhull/mediasniff/internal/binary"
	"github.com/simonhull/mediasniff/internal/types"
)

// opusSampleRate is the rate Opus granule positions are counted in,
// whatever the input rate was.
const opusSampleRate = 48000

// opusHead is the OpusHead identification header.
type opusHead struct {
	Version         int
	Channels        int
	PreSkip         int
	InputSampleRate int
	OutputGain      int16 // Q7.8 dB
	MappingFamily   int
}

// parseOpusHead parses the OpusHead identification header.
//
// Layout (little-endian): "OpusHead", version (8), channels (8), pre-skip
// (16), input sample rate (32), output gain (16, signed Q7.8), mapping
// family (8).
func parseOpusHead(data []byte) (*opusHead, error) {
	malformed := func(field, reason string) error {
		return &types.MalformedValueError{Format: types.FormatOpus, Field: field, Reason: reason}
	}

	if len(data) < 19 {
		return nil, malformed("OpusHead", fmt.Sprintf("too short: %d bytes (need at least 19)", len(data)))
	}

	// Major version 0 only; minor versions are compatible.
	version := int(data[8])
	if version == 0 || version>>4 != 0 {
		return nil, malformed("OpusHead version", fmt.Sprintf("unsupported version %d", version))
	}

	head := &opusHead{
		Version:         version,
		Channels:        int(data[9]),
		PreSkip:         int(binary.Decode[uint16](data[10:12], binary.LittleEndian)),
		InputSampleRate: int(binary.Decode[uint32](data[12:16], binary.LittleEndian)),
		OutputGain:      int16(binary.Decode[uint16](data[16:18], binary.LittleEndian)),
		MappingFamily:   int(data[18]),
	}
	if head.Channels == 0 {
		return nil, malformed("channel count", "zero channels")
	}
	return head, nil
}

// outputGainDB converts the Q7.8 gain to decibels.
func (h *opusHead) outputGainDB() float64 {
	return float64(h.OutputGain) / 256.0
}
