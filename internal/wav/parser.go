// Package wav decodes RIFF WAVE headers.
package wav

import (
	"fmt"

	"github.com/go-audio/wav"

	"github.com/simonhull/mediasniff/internal/binary"
	"github.com/simonhull/mediasniff/internal/pcm"
	"github.com/simonhull/mediasniff/internal/registry"
	"github.com/simonhull/mediasniff/internal/types"
)

const (
	formatPCM        = 0x0001
	formatExtensible = 0xFFFE
)

// Decoder reads the fmt and data chunk headers of a WAVE file.
type Decoder struct{}

// New returns a WAV decoder.
func New() *Decoder {
	return &Decoder{}
}

// Decode implements registry.Decoder.
func (d *Decoder) Decode(r *binary.Reader) (*types.Result, error) {
	header, err := r.ReadExact(12, "RIFF header")
	if err != nil {
		return nil, fmt.Errorf("read RIFF header: %w", err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return nil, types.ErrNoMatch
	}

	layout := pcm.Layout{Format: types.FormatWAV, Order: binary.LittleEndian, Header: "fmt ", Data: "data", List: "LIST"}
	if err := pcm.CheckChunks(r.SafeReader, layout); err != nil {
		return nil, fmt.Errorf("check WAVE chunks: %w", err)
	}

	dec := wav.NewDecoder(r.Section())
	var pcmSize int64
	err = registry.Guard(types.FormatWAV, "fmt chunk", func() error {
		dec.ReadInfo()
		if err := dec.Err(); err != nil {
			return err
		}
		if dec.NumChans == 0 {
			return nil
		}
		if err := dec.FwdToPCM(); err != nil {
			// A missing data chunk only costs the duration.
			return nil
		}
		pcmSize = int64(dec.PCMSize)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read WAVE chunks: %w", err)
	}

	info := pcm.Info{Format: dec.Format(), BitDepth: int(dec.BitDepth)}
	if err := info.Validate(types.FormatWAV, 12); err != nil {
		return nil, err
	}

	isPCM := dec.WavAudioFormat == formatPCM || dec.WavAudioFormat == formatExtensible
	if align := info.BlockAlign(); isPCM && align > 0 {
		info.Frames = pcmSize / int64(align)
	}

	result := info.Result()
	result.Intrinsics["audio_format"] = int(dec.WavAudioFormat)
	result.Intrinsics["avg_bytes_per_second"] = int64(dec.AvgBytesPerSec)

	// Compressed payloads: fall back to the byte rate.
	if result.MediaDurationSeconds == nil && pcmSize > 0 && dec.AvgBytesPerSec > 0 {
		result.SetDuration(float64(pcmSize) / float64(dec.AvgBytesPerSec))
	}
	return result, nil
}
