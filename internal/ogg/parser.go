package ogg

import (
	"fmt"

	"github.com/simonhull/mediasniff/internal/binary"
	"github.com/simonhull/mediasniff/internal/types"
)

const (
	codecVorbis = "vorbis"
	codecOpus   = "opus"
)

// Decoder reads the first packet of an Ogg stream and accepts it when the
// codec matches the format it was created for.
type Decoder struct {
	want types.Format
}

// New returns a decoder for types.FormatOgg (Vorbis) or types.FormatOpus.
func New(want types.Format) *Decoder {
	return &Decoder{want: want}
}

// Decode implements registry.Decoder.
func (d *Decoder) Decode(r *binary.Reader) (*types.Result, error) {
	ok, err := r.Expect(pageMagic, "Ogg magic bytes")
	if err != nil {
		return nil, fmt.Errorf("read Ogg magic: %w", err)
	}
	if !ok {
		return nil, types.ErrNoMatch
	}
	if err := r.Seek(0); err != nil {
		return nil, err
	}

	packet, page, err := firstPacket(r)
	if err != nil {
		return nil, fmt.Errorf("read first Ogg packet: %w", err)
	}

	codec := detectOggCodec(packet)
	switch {
	case codec == codecVorbis && d.want == types.FormatOgg:
		return decodeVorbis(r, packet, page)
	case codec == codecOpus && d.want == types.FormatOpus:
		return decodeOpus(r, packet, page)
	default:
		return nil, types.ErrNoMatch
	}
}

// detectOggCodec determines whether this is Vorbis or Opus
// by examining the magic marker in the first packet.
func detectOggCodec(firstPacket []byte) string {
	if len(firstPacket) >= 8 && string(firstPacket[0:8]) == "OpusHead" {
		return codecOpus
	}
	if len(firstPacket) >= 7 && firstPacket[0] == 0x01 && string(firstPacket[1:7]) == codecVorbis {
		return codecVorbis
	}
	return "unknown"
}

func decodeVorbis(r *binary.Reader, packet []byte, page *Page) (*types.Result, error) {
	id, err := parseVorbisIdentification(packet)
	if err != nil {
		return nil, err
	}

	result := &types.Result{
		NumAudioChannels:  id.Channels,
		AudioSampleRateHz: id.SampleRate,
		Intrinsics: types.Intrinsics{
			"codec":           codecVorbis,
			"nominal_bitrate": int64(id.BitrateNominal),
		},
	}

	if samples, err := vorbisLength(r.Section()); err == nil && samples > 0 {
		result.SetDuration(float64(samples) / float64(id.SampleRate))
		return result, nil
	}

	granule, ok, err := lastGranulePosition(r.SafeReader, page.SerialNumber)
	if err != nil {
		return nil, err
	}
	if ok {
		if granule < 0 {
			return nil, &types.MalformedValueError{Format: types.FormatOgg, Field: "granule position", Reason: fmt.Sprintf("negative value %d", granule)}
		}
		result.SetDuration(float64(granule) / float64(id.SampleRate))
	}
	return result, nil
}

func decodeOpus(r *binary.Reader, packet []byte, page *Page) (*types.Result, error) {
	head, err := parseOpusHead(packet)
	if err != nil {
		return nil, err
	}

	result := &types.Result{
		NumAudioChannels:  head.Channels,
		AudioSampleRateHz: opusSampleRate,
		Intrinsics: types.Intrinsics{
			"codec":                  codecOpus,
			"pre_skip":               head.PreSkip,
			"input_sample_rate_hz":   head.InputSampleRate,
			"output_gain_db":         head.outputGainDB(),
			"channel_mapping_family": head.MappingFamily,
		},
	}

	granule, ok, err := lastGranulePosition(r.SafeReader, page.SerialNumber)
	if err != nil {
		return nil, err
	}
	if ok {
		if granule < 0 {
			return nil, &types.MalformedValueError{Format: types.FormatOpus, Field: "granule position", Reason: fmt.Sprintf("negative value %d", granule)}
		}
		samples := max(granule-int64(head.PreSkip), 0)
		result.SetDuration(float64(samples) / opusSampleRate)
	}
	return result, nil
}
