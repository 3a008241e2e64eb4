// Package types provides the core data structures shared by the decoders:
// the Result record, natures and format tags, and the error taxonomy.
package types

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"
)

// Result is the normalized output of a successful decode.
//
// Which fields are meaningful depends on Nature: images and videos carry
// pixel dimensions, audio carries channel count and sample rate. Anything
// format-specific goes into Intrinsics.
//
// A Result holds no reference to the stream it came from.
type Result struct {
	Intrinsics Intrinsics `json:"intrinsics,omitempty"`

	// MediaDurationSeconds is nil when the duration cannot be determined.
	MediaDurationSeconds *float64 `json:"media_duration_seconds,omitempty"`

	Nature Nature `json:"nature"`
	Format Format `json:"format"`

	WidthPx         int  `json:"width_px,omitempty"`
	HeightPx        int  `json:"height_px,omitempty"`
	HasTransparency bool `json:"has_transparency,omitempty"`

	NumAudioChannels  int `json:"num_audio_channels,omitempty"`
	AudioSampleRateHz int `json:"audio_sample_rate_hz,omitempty"`
	BitsPerSample     int `json:"bits_per_sample,omitempty"`
}

// MarshalJSON always emits the fields required by the result's nature,
// zero values included. Fields outside the nature are omitted when zero.
func (r Result) MarshalJSON() ([]byte, error) {
	type record struct {
		Intrinsics           Intrinsics `json:"intrinsics,omitempty"`
		MediaDurationSeconds *float64   `json:"media_duration_seconds,omitempty"`
		Nature               Nature     `json:"nature"`
		Format               Format     `json:"format"`
		WidthPx              *int       `json:"width_px,omitempty"`
		HeightPx             *int       `json:"height_px,omitempty"`
		HasTransparency      *bool      `json:"has_transparency,omitempty"`
		NumAudioChannels     *int       `json:"num_audio_channels,omitempty"`
		AudioSampleRateHz    *int       `json:"audio_sample_rate_hz,omitempty"`
		BitsPerSample        int        `json:"bits_per_sample,omitempty"`
	}
	out := record{
		Intrinsics:           r.Intrinsics,
		MediaDurationSeconds: r.MediaDurationSeconds,
		Nature:               r.Nature,
		Format:               r.Format,
		BitsPerSample:        r.BitsPerSample,
	}

	image := r.Nature == NatureImage
	audio := r.Nature == NatureAudio
	if image || r.WidthPx != 0 || r.HeightPx != 0 {
		out.WidthPx, out.HeightPx = &r.WidthPx, &r.HeightPx
	}
	if image || r.HasTransparency {
		out.HasTransparency = &r.HasTransparency
	}
	if audio || r.NumAudioChannels != 0 || r.AudioSampleRateHz != 0 {
		out.NumAudioChannels, out.AudioSampleRateHz = &r.NumAudioChannels, &r.AudioSampleRateHz
	}
	return json.Marshal(out)
}

// Intrinsics holds format-specific scalar extras keyed by snake_case name.
type Intrinsics map[string]any

// SetDuration records a duration in seconds.
func (r *Result) SetDuration(seconds float64) {
	r.MediaDurationSeconds = &seconds
}

// Duration returns the media duration, if known.
func (r *Result) Duration() (time.Duration, bool) {
	if r.MediaDurationSeconds == nil {
		return 0, false
	}
	return time.Duration(*r.MediaDurationSeconds * float64(time.Second)), true
}

// Validate checks the invariants every accepted result must hold.
func (r *Result) Validate() error {
	if !r.Nature.Valid() {
		return fmt.Errorf("invalid nature %q", r.Nature)
	}
	if r.Format == "" {
		return fmt.Errorf("empty format tag")
	}

	switch r.Nature {
	case NatureImage, NatureVideo:
		if r.WidthPx < 0 || r.HeightPx < 0 {
			return fmt.Errorf("negative dimensions %dx%d", r.WidthPx, r.HeightPx)
		}
	}
	switch r.Nature {
	case NatureAudio, NatureVideo:
		if r.NumAudioChannels < 0 {
			return fmt.Errorf("negative channel count %d", r.NumAudioChannels)
		}
		if r.AudioSampleRateHz < 0 {
			return fmt.Errorf("negative sample rate %d", r.AudioSampleRateHz)
		}
		if r.BitsPerSample < 0 {
			return fmt.Errorf("negative bits per sample %d", r.BitsPerSample)
		}
	}

	if d := r.MediaDurationSeconds; d != nil {
		if math.IsNaN(*d) || math.IsInf(*d, 0) || *d < 0 {
			return fmt.Errorf("invalid duration %v", *d)
		}
	}

	for key, value := range r.Intrinsics {
		if !isScalar(value) {
			return fmt.Errorf("intrinsic %q is not a scalar (%T)", key, value)
		}
	}
	return nil
}

// String returns a one-line summary.
// Example output: "flac audio stereo 44.1kHz 16-bit 2.00s".
func (r *Result) String() string {
	parts := []string{string(r.Format), string(r.Nature)}

	switch r.Nature {
	case NatureImage, NatureVideo:
		if r.WidthPx > 0 || r.HeightPx > 0 {
			parts = append(parts, fmt.Sprintf("%dx%d", r.WidthPx, r.HeightPx))
		}
		if r.HasTransparency {
			parts = append(parts, "alpha")
		}
	}
	if r.Nature == NatureAudio || r.NumAudioChannels > 0 {
		parts = append(parts, channelDescription(r.NumAudioChannels))
		if r.AudioSampleRateHz > 0 {
			parts = append(parts, fmt.Sprintf("%.1fkHz", float64(r.AudioSampleRateHz)/1000))
		}
		if r.BitsPerSample > 0 {
			parts = append(parts, fmt.Sprintf("%d-bit", r.BitsPerSample))
		}
	}
	if r.MediaDurationSeconds != nil {
		parts = append(parts, fmt.Sprintf("%.2fs", *r.MediaDurationSeconds))
	}

	return join(parts, " ")
}

// Int returns an integer intrinsic widened to int64.
func (in Intrinsics) Int(key string) (int64, bool) {
	switch v := in[key].(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	default:
		return 0, false
	}
}

// String returns a string intrinsic.
func (in Intrinsics) String(key string) (string, bool) {
	s, ok := in[key].(string)
	return s, ok
}

// Bool returns a boolean intrinsic.
func (in Intrinsics) Bool(key string) (bool, bool) {
	b, ok := in[key].(bool)
	return b, ok
}

// Keys returns the intrinsic names in sorted order.
func (in Intrinsics) Keys() []string {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isScalar(v any) bool {
	switch v.(type) {
	case nil, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}

// channelDescription returns a human-readable channel description.
func channelDescription(channels int) string {
	switch channels {
	case 0:
		return ""
	case 1:
		return "mono"
	case 2:
		return "stereo"
	case 4:
		return "quad"
	case 6:
		return "5.1"
	case 8:
		return "7.1"
	default:
		return fmt.Sprintf("%dch", channels)
	}
}

// join concatenates strings with a separator, skipping empty strings.
func join(parts []string, sep string) string {
	var result string
	for _, part := range parts {
		if part == "" {
			continue
		}
		if result != "" {
			result += sep
		}
		result += part
	}
	return result
}
