// Package pcm maps the stream layout reported by go-audio decoders onto
// results.
package pcm

import (
	"github.com/go-audio/audio"

	"github.com/simonhull/mediasniff/internal/types"
)

// Info is the layout of an uncompressed or lightly wrapped audio stream.
type Info struct {
	Format   *audio.Format
	BitDepth int
	// Frames is the number of sample frames; zero when unknown.
	Frames int64
}

// Validate rejects layouts a real stream cannot have.
func (i Info) Validate(format types.Format, offset int64) error {
	malformed := func(field, reason string) error {
		return &types.MalformedValueError{Format: format, Field: field, Reason: reason, Offset: offset}
	}

	switch {
	case i.Format == nil:
		return malformed("format chunk", "missing")
	case i.Format.NumChannels <= 0:
		return malformed("channel count", "must be positive")
	case i.Format.SampleRate <= 0:
		return malformed("sample rate", "must be positive")
	case i.BitDepth < 0:
		return malformed("bit depth", "negative")
	}
	return nil
}

// BlockAlign returns the size in bytes of one sample frame, or zero when the
// bit depth is unknown.
func (i Info) BlockAlign() int {
	if i.Format == nil || i.BitDepth <= 0 {
		return 0
	}
	return i.Format.NumChannels * ((i.BitDepth + 7) / 8)
}

// Result builds an audio result. Duration is set only when Frames is known.
func (i Info) Result() *types.Result {
	result := &types.Result{
		NumAudioChannels:  i.Format.NumChannels,
		AudioSampleRateHz: i.Format.SampleRate,
		BitsPerSample:     i.BitDepth,
		Intrinsics:        types.Intrinsics{},
	}
	if i.BitDepth > 0 {
		result.Intrinsics["bits_per_sample"] = i.BitDepth
	}
	if i.Frames > 0 {
		result.Intrinsics["sample_frames"] = i.Frames
		result.SetDuration(float64(i.Frames) / float64(i.Format.SampleRate))
	}
	return result
}
