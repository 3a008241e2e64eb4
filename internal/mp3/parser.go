// Package mp3 decodes the first MPEG-1/2/2.5 Layer III frame header of an
// MP3 stream and derives its duration.
package mp3

import (
	"fmt"
	"io"
	"strings"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/simonhull/mediasniff/internal/binary"
	"github.com/simonhull/mediasniff/internal/registry"
	"github.com/simonhull/mediasniff/internal/types"
)

const (
	// maxSyncSearch bounds the padding scanned after an ID3v2 tag.
	maxSyncSearch = 64 << 10
	// maxFrameLength is the largest Layer III frame (MPEG-1, 320 kbps, 32 kHz, padded).
	maxFrameLength = 1441
)

// Decoder recognizes MP3 streams. Without an ID3v2 tag the stream must
// start with a frame header; with one, frames are searched for in the
// padding after it. A candidate frame must be followed by another frame of
// the same stream when the window holds one.
type Decoder struct{}

// New returns an MP3 decoder.
func New() *Decoder {
	return &Decoder{}
}

// Decode implements registry.Decoder.
func (d *Decoder) Decode(r *binary.Reader) (*types.Result, error) {
	tag, hasTag, err := readID3v2Header(r)
	if err != nil {
		return nil, fmt.Errorf("read ID3v2 header: %w", err)
	}

	var start int64
	if hasTag {
		start = tag.totalSize()
		if err := r.Seek(start); err != nil {
			return nil, err
		}
	} else if _, err := r.ReadExact(frameHeaderSize, "MPEG frame header"); err != nil {
		return nil, err
	}

	offset, header, ok, err := findFrame(r.SafeReader, start, hasTag)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, types.ErrNoMatch
	}

	result := &types.Result{
		NumAudioChannels:  header.Channels(),
		AudioSampleRateHz: header.SampleRate,
		Intrinsics: types.Intrinsics{
			"mpeg_version": header.VersionName(),
			"layer":        3,
			"bitrate_kbps": header.BitrateKbps,
			"channel_mode": channelModes[header.ChannelMode],
			"has_id3v2":    hasTag,
			"vbr":          false,
		},
	}
	if hasTag {
		result.Intrinsics["id3v2_version"] = fmt.Sprintf("2.%d", tag.Version)
	}

	if info := readVBRInfo(r.SafeReader, offset, header); info != nil && info.Frames > 0 {
		samples := int64(info.Frames) * int64(header.SamplesPerFrame())
		result.SetDuration(float64(samples) / float64(header.SampleRate))
		result.Intrinsics["vbr"] = info.VBR()
		result.Intrinsics["duration_source"] = strings.ToLower(info.Tag)
		return result, nil
	}

	if seconds, err := exactDuration(r.Section()); err == nil && seconds > 0 {
		result.SetDuration(seconds)
		result.Intrinsics["duration_source"] = "decoder"
		return result, nil
	}

	audioBytes := r.Size() - offset
	if hasID3v1(r.SafeReader) {
		audioBytes -= id3v1Size
	}
	result.SetDuration(estimateCBRDuration(header.BitrateKbps, audioBytes))
	result.Intrinsics["duration_source"] = "estimate"
	return result, nil
}

// findFrame returns the offset and header of the first confirmed frame at
// or after start. Only start itself is tried unless search is set.
func findFrame(sr *binary.SafeReader, start int64, search bool) (int64, frameHeader, bool, error) {
	window := int64(frameHeaderSize + maxFrameLength + frameHeaderSize)
	if search {
		window += maxSyncSearch
	}
	window = min(window, sr.Size()-start)
	if window < frameHeaderSize {
		return 0, frameHeader{}, false, nil
	}

	buf := make([]byte, window)
	if err := sr.ReadAt(buf, start, "MPEG frame search window"); err != nil {
		return 0, frameHeader{}, false, err
	}

	last := 0
	if search {
		last = min(maxSyncSearch, len(buf)-frameHeaderSize)
	}
	for i := 0; i <= last; i++ {
		if buf[i] != 0xFF {
			continue
		}
		h, ok := parseFrameHeader(buf[i:])
		if !ok {
			continue
		}
		next := i + h.FrameLength()
		if next+frameHeaderSize <= len(buf) {
			if n, ok := parseFrameHeader(buf[next:]); !ok || !h.sameStream(n) {
				continue
			}
		}
		return start + int64(i), h, true, nil
	}
	return 0, frameHeader{}, false, nil
}

// exactDuration decodes every frame header with go-mp3 to count samples.
func exactDuration(section io.ReadSeeker) (float64, error) {
	var seconds float64
	err := registry.Guard(types.FormatMP3, "frame scan", func() error {
		dec, err := gomp3.NewDecoder(section)
		if err != nil {
			return err
		}
		length := dec.Length()
		if length <= 0 || dec.SampleRate() <= 0 {
			return fmt.Errorf("length unavailable")
		}
		// Length counts bytes of 16-bit stereo output.
		seconds = float64(length/4) / float64(dec.SampleRate())
		return nil
	})
	return seconds, err
}
