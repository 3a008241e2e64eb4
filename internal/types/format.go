package types

// Nature is the top-level media category of a result.
type Nature string

const (
	// NatureAudio is sound-only media.
	NatureAudio Nature = "audio"
	// NatureImage is still (or animated) raster images.
	NatureImage Nature = "image"
	// NatureVideo is media carrying a picture track.
	NatureVideo Nature = "video"
	// NatureDocument is paginated documents.
	NatureDocument Nature = "document"
)

// Natures lists every known nature.
func Natures() []Nature {
	return []Nature{NatureAudio, NatureImage, NatureVideo, NatureDocument}
}

// Valid reports whether n is one of the known natures.
func (n Nature) Valid() bool {
	switch n {
	case NatureAudio, NatureImage, NatureVideo, NatureDocument:
		return true
	default:
		return false
	}
}

// Format identifies a container or codec within a nature.
type Format string

const (
	// FormatFLAC represents FLAC audio files.
	FormatFLAC Format = "flac"
	// FormatWebP represents WebP images (lossy, lossless and extended).
	FormatWebP Format = "webp"
	// FormatWAV represents RIFF WAVE audio files.
	FormatWAV Format = "wav"
	// FormatAIFF represents AIFF and AIFF-C audio files.
	FormatAIFF Format = "aiff"
	// FormatOgg represents Ogg Vorbis audio files.
	FormatOgg Format = "ogg"
	// FormatOpus represents Ogg Opus audio files.
	FormatOpus Format = "opus"
	// FormatMP3 represents MPEG audio layer III files.
	FormatMP3 Format = "mp3"
	// FormatM4A represents MPEG-4 audio files.
	FormatM4A Format = "m4a"
	// FormatM4B represents MPEG-4 audiobook files.
	FormatM4B Format = "m4b"
	// FormatMP4 represents MPEG-4 video files.
	FormatMP4 Format = "mp4"
	// FormatMOV represents QuickTime movie files.
	FormatMOV Format = "mov"
)

// Formats lists every built-in format tag.
func Formats() []Format {
	return []Format{
		FormatFLAC, FormatWebP, FormatWAV, FormatAIFF, FormatOgg, FormatOpus,
		FormatMP3, FormatM4A, FormatM4B, FormatMP4, FormatMOV,
	}
}

// Known reports whether f is a built-in format tag.
func (f Format) Known() bool {
	return f.Extensions() != nil
}

// Extensions returns common file extensions for this format.
func (f Format) Extensions() []string {
	switch f {
	case FormatFLAC:
		return []string{".flac"}
	case FormatWebP:
		return []string{".webp"}
	case FormatWAV:
		return []string{".wav", ".wave"}
	case FormatAIFF:
		return []string{".aiff", ".aif", ".aifc"}
	case FormatOgg:
		return []string{".ogg", ".oga"}
	case FormatOpus:
		return []string{".opus"}
	case FormatMP3:
		return []string{".mp3"}
	case FormatM4A:
		return []string{".m4a", ".m4p"}
	case FormatM4B:
		return []string{".m4b"}
	case FormatMP4:
		return []string{".mp4", ".m4v"}
	case FormatMOV:
		return []string{".mov", ".qt"}
	default:
		return nil
	}
}

// MIMEType returns the conventional media type for the format.
func (f Format) MIMEType() string {
	switch f {
	case FormatFLAC:
		return "audio/flac"
	case FormatWebP:
		return "image/webp"
	case FormatWAV:
		return "audio/wav"
	case FormatAIFF:
		return "audio/aiff"
	case FormatOgg:
		return "audio/ogg"
	case FormatOpus:
		return "audio/opus"
	case FormatMP3:
		return "audio/mpeg"
	case FormatM4A, FormatM4B:
		return "audio/mp4"
	case FormatMP4:
		return "video/mp4"
	case FormatMOV:
		return "video/quicktime"
	default:
		return "application/octet-stream"
	}
}
