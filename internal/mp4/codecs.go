package mp4

import (
	"bytes"

	"github.com/simonhull/mediasniff/internal/binary"
)

// codecNames maps sample entry FourCC codes to human-readable names.
var codecNames = map[string]string{
	// AAC family
	"mp4a": "AAC",
	"mhm1": "xHE-AAC",
	"mhm2": "xHE-AAC v2",

	// Dolby family
	"ac-3": "AC-3",
	"ec-3": "E-AC-3",
	"ac-4": "AC-4",

	// Lossless and PCM
	"alac": "Apple Lossless",
	"fLaC": "FLAC",
	"lpcm": "PCM",
	"sowt": "PCM",
	"twos": "PCM",

	// Other audio
	"Opus": "Opus",
	"mp3 ": "MP3",
	".mp3": "MP3",

	// Video
	"avc1": "H.264",
	"avc3": "H.264",
	"hvc1": "HEVC",
	"hev1": "HEVC",
	"av01": "AV1",
	"vp09": "VP9",
	"mp4v": "MPEG-4 Visual",
	"apch": "ProRes 422 HQ",
	"apcn": "ProRes 422",
	"apcs": "ProRes 422 LT",
	"apco": "ProRes 422 Proxy",
	"ap4h": "ProRes 4444",
	"jpeg": "Motion JPEG",
}

// aacProfiles maps AAC Audio Object Types to profile names.
var aacProfiles = map[uint8]string{
	1:  "AAC Main",
	2:  "AAC-LC",
	3:  "AAC-SSR",
	4:  "AAC-LTP",
	5:  "HE-AAC",
	6:  "AAC Scalable",
	29: "HE-AAC v2",
	42: "xHE-AAC",
}

// codecName converts a FourCC codec identifier to a human-readable name.
func codecName(fourCC string) string {
	if name, ok := codecNames[fourCC]; ok {
		return name
	}
	return fourCC
}

// maxEsdsSearch bounds how far into an mp4a sample entry esds is looked for.
const maxEsdsSearch = 256

// aacProfile returns the AAC profile named by the esds atom inside the
// sample entry at entryOffset, or "" when it cannot be determined.
func aacProfile(sr *binary.SafeReader, entryOffset int64, entrySize uint32) string {
	n := min(int64(entrySize), maxEsdsSearch, sr.Size()-entryOffset)
	if n <= 8 {
		return ""
	}
	buf := make([]byte, n)
	if err := sr.ReadAt(buf, entryOffset, "esds search buffer"); err != nil {
		return ""
	}

	i := bytes.Index(buf[8:], []byte("esds"))
	if i < 0 {
		return ""
	}
	atomStart := 8 + i - 4
	size := int(binary.Decode[uint32](buf[atomStart:atomStart+4], binary.BigEndian))
	// Atom header (8) plus version and flags (4).
	if size <= 12 || atomStart+size > len(buf) {
		return ""
	}

	return aacProfiles[parseESDescriptors(buf[atomStart+12 : atomStart+size])]
}

// parseESDescriptors walks the ES_Descriptor to its DecoderConfigDescriptor
// and returns the audio object type of the DecoderSpecificInfo that follows.
// It returns 0 when the layout is not recognized.
func parseESDescriptors(data []byte) uint8 {
	pos := 0

	// Descriptor sizes use up to four 7-bit groups.
	readSize := func() int {
		size := 0
		for range 4 {
			if pos >= len(data) {
				return -1
			}
			b := data[pos]
			pos++
			size = size<<7 | int(b&0x7F)
			if b&0x80 == 0 {
				break
			}
		}
		return size
	}
	expect := func(tag byte) bool {
		if pos >= len(data) || data[pos] != tag {
			return false
		}
		pos++
		return readSize() >= 0
	}

	// ES_Descriptor: ES_ID (16), flags (8).
	if !expect(0x03) {
		return 0
	}
	if pos+3 > len(data) {
		return 0
	}
	flags := data[pos+2]
	pos += 3
	if flags&0x80 != 0 { // streamDependence
		pos += 2
	}
	if flags&0x40 != 0 { // URL
		if pos >= len(data) {
			return 0
		}
		pos += 1 + int(data[pos])
	}
	if flags&0x20 != 0 { // OCRstream
		pos += 2
	}

	// DecoderConfigDescriptor: objectType (8), streamType (8), buffer (24),
	// max bitrate (32), avg bitrate (32).
	if !expect(0x04) {
		return 0
	}
	pos += 13

	// DecoderSpecificInfo: AudioSpecificConfig starts with a 5-bit object type.
	if !expect(0x05) || pos >= len(data) {
		return 0
	}
	aot := data[pos] >> 3
	if aot == 31 && pos+1 < len(data) {
		// Escape: 6 more bits follow.
		aot = 32 + uint8(binary.UnpackUint(data[pos:pos+2], 5, 6, binary.MSBFirst))
	}
	return aot
}
