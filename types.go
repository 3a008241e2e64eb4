package mediasniff

import (
	"github.com/simonhull/mediasniff/internal/binary"
	"github.com/simonhull/mediasniff/internal/registry"
	"github.com/simonhull/mediasniff/internal/types"
)

// Source is a random-access byte stream of known length.
// *bytes.Reader, *strings.Reader and *io.SectionReader satisfy it.
type Source = binary.Source

// Result is the normalized output of a successful parse.
type Result = types.Result

// Intrinsics holds format-specific scalar extras.
type Intrinsics = types.Intrinsics

// Nature is the top-level media category of a result.
type Nature = types.Nature

// Format identifies a container or codec within a nature.
type Format = types.Format

// Registry is an immutable, ordered set of decoders.
type Registry = registry.Registry

// Attempt records how one decoder fared against a stream.
type Attempt = registry.Attempt

// Status classifies an Attempt.
type Status = registry.Status

// Re-exported natures.
const (
	NatureAudio    = types.NatureAudio
	NatureImage    = types.NatureImage
	NatureVideo    = types.NatureVideo
	NatureDocument = types.NatureDocument
)

// Re-exported format tags.
const (
	FormatFLAC = types.FormatFLAC
	FormatWebP = types.FormatWebP
	FormatWAV  = types.FormatWAV
	FormatAIFF = types.FormatAIFF
	FormatOgg  = types.FormatOgg
	FormatOpus = types.FormatOpus
	FormatMP3  = types.FormatMP3
	FormatM4A  = types.FormatM4A
	FormatM4B  = types.FormatM4B
	FormatMP4  = types.FormatMP4
	FormatMOV  = types.FormatMOV
)

// Re-exported attempt statuses.
const (
	StatusMatched   = registry.StatusMatched
	StatusNoMatch   = registry.StatusNoMatch
	StatusShortRead = registry.StatusShortRead
	StatusMalformed = registry.StatusMalformed
	StatusFailed    = registry.StatusFailed
)
