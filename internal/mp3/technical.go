package mp3

import (
	"github.com/simonhull/mediasniff/internal/binary"
)

const frameHeaderSize = 4

// MPEG version field values.
const (
	mpeg25       = 0
	mpegReserved = 1
	mpeg2        = 2
	mpeg1        = 3
)

// layer field value for Layer III.
const layerIII = 1

// Layer III bitrates in kbps, by bitrate index.
var (
	bitratesV1 = [16]int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0}
	bitratesV2 = [16]int{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0}
)

// Sample rates in Hz, by MPEG version and sample rate index.
var sampleRates = [4][3]int{
	mpeg25: {11025, 12000, 8000},
	mpeg2:  {22050, 24000, 16000},
	mpeg1:  {44100, 48000, 32000},
}

var channelModes = [4]string{"stereo", "joint_stereo", "dual_channel", "mono"}

// frameHeader is a decoded 32-bit MPEG audio frame header.
type frameHeader struct {
	Version     int
	Layer       int
	Protected   bool // a 16-bit CRC follows the header
	BitrateKbps int
	SampleRate  int
	Padding     bool
	ChannelMode int
}

// parseFrameHeader decodes a Layer III frame header. ok is false when the
// bytes are not a usable header: no sync, reserved fields, free-format or
// bad bitrate.
func parseFrameHeader(b []byte) (frameHeader, bool) {
	if len(b) < frameHeaderSize {
		return frameHeader{}, false
	}
	field := func(off, n int) int {
		return int(binary.UnpackUint(b, off, n, binary.MSBFirst))
	}

	if field(0, 11) != 0x7FF {
		return frameHeader{}, false
	}
	h := frameHeader{
		Version:     field(11, 2),
		Layer:       field(13, 2),
		Protected:   field(15, 1) == 0,
		Padding:     field(22, 1) == 1,
		ChannelMode: field(24, 2),
	}
	if h.Version == mpegReserved || h.Layer != layerIII {
		return frameHeader{}, false
	}

	rateIndex := field(20, 2)
	if rateIndex == 3 {
		return frameHeader{}, false
	}
	h.SampleRate = sampleRates[h.Version][rateIndex]

	table := bitratesV2
	if h.Version == mpeg1 {
		table = bitratesV1
	}
	h.BitrateKbps = table[field(16, 4)]
	if h.BitrateKbps == 0 {
		return frameHeader{}, false
	}
	return h, true
}

// Channels returns 1 for mono and 2 for every other mode.
func (h frameHeader) Channels() int {
	if channelModes[h.ChannelMode] == "mono" {
		return 1
	}
	return 2
}

// SamplesPerFrame is 1152 for MPEG-1 and 576 for MPEG-2 and 2.5.
func (h frameHeader) SamplesPerFrame() int {
	if h.Version == mpeg1 {
		return 1152
	}
	return 576
}

// FrameLength returns the frame size in bytes, header included.
func (h frameHeader) FrameLength() int {
	n := h.SamplesPerFrame() / 8 * h.BitrateKbps * 1000 / h.SampleRate
	if h.Padding {
		n++
	}
	return n
}

// VersionName returns "1", "2" or "2.5".
func (h frameHeader) VersionName() string {
	switch h.Version {
	case mpeg1:
		return "1"
	case mpeg2:
		return "2"
	default:
		return "2.5"
	}
}

// sideInfoSize returns the Layer III side information size that precedes
// a Xing/Info tag in the first frame.
func (h frameHeader) sideInfoSize() int {
	mono := h.Channels() == 1
	switch {
	case h.Version == mpeg1 && mono:
		return 17
	case h.Version == mpeg1:
		return 32
	case mono:
		return 9
	default:
		return 17
	}
}

// sameStream reports whether other could be the next frame of the stream
// h started.
func (h frameHeader) sameStream(other frameHeader) bool {
	return h.Version == other.Version && h.Layer == other.Layer && h.SampleRate == other.SampleRate
}

// vbrInfo is what a Xing, Info or VBRI tag in the first frame says about
// the stream.
type vbrInfo struct {
	Tag    string // "Xing", "Info" or "VBRI"
	Frames uint32
	Bytes  uint32
}

// VBR reports whether the tag marks a variable bitrate stream. Info tags
// are written by encoders for CBR streams.
func (v *vbrInfo) VBR() bool {
	return v.Tag != "Info"
}

const (
	xingFlagFrames = 0x1
	xingFlagBytes  = 0x2

	vbriOffset = 32 // from the end of the frame header
)

// readVBRInfo looks for a Xing/Info tag after the side information, then a
// VBRI tag at its fixed offset. It returns nil when neither carries a frame
// count.
func readVBRInfo(sr *binary.SafeReader, frameOffset int64, h frameHeader) *vbrInfo {
	body := frameOffset + frameHeaderSize
	if h.Protected {
		body += 2
	}

	xing := make([]byte, 16)
	if err := sr.ReadAt(xing, body+int64(h.sideInfoSize()), "Xing header"); err == nil {
		tag := string(xing[0:4])
		if tag == "Xing" || tag == "Info" {
			flags := binary.Decode[uint32](xing[4:8], binary.BigEndian)
			if flags&xingFlagFrames == 0 {
				return nil
			}
			info := &vbrInfo{Tag: tag, Frames: binary.Decode[uint32](xing[8:12], binary.BigEndian)}
			if flags&xingFlagBytes != 0 {
				info.Bytes = binary.Decode[uint32](xing[12:16], binary.BigEndian)
			}
			return info
		}
	}

	// VBRI: tag, version (16), delay (16), quality (16), bytes (32), frames (32).
	vbri := make([]byte, 18)
	if err := sr.ReadAt(vbri, frameOffset+frameHeaderSize+vbriOffset, "VBRI header"); err == nil && string(vbri[0:4]) == "VBRI" {
		return &vbrInfo{
			Tag:    "VBRI",
			Bytes:  binary.Decode[uint32](vbri[10:14], binary.BigEndian),
			Frames: binary.Decode[uint32](vbri[14:18], binary.BigEndian),
		}
	}
	return nil
}

// estimateCBRDuration estimates duration in seconds for a constant bitrate
// stream from the size of its audio data.
func estimateCBRDuration(bitrateKbps int, audioBytes int64) float64 {
	if bitrateKbps <= 0 || audioBytes <= 0 {
		return 0
	}
	return float64(audioBytes*8) / float64(bitrateKbps*1000)
}
