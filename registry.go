package mediasniff

import (
	"slices"
	"sync"

	"github.com/simonhull/mediasniff/internal/aiff"
	"github.com/simonhull/mediasniff/internal/flac"
	"github.com/simonhull/mediasniff/internal/mp3"
	"github.com/simonhull/mediasniff/internal/mp4"
	"github.com/simonhull/mediasniff/internal/ogg"
	"github.com/simonhull/mediasniff/internal/registry"
	"github.com/simonhull/mediasniff/internal/types"
	"github.com/simonhull/mediasniff/internal/wav"
	"github.com/simonhull/mediasniff/internal/webp"
)

// RegistryOption configures NewRegistry.
type RegistryOption func(*registryOptions)

type registryOptions struct {
	webpFeatureScan bool
	without         []Format
}

// WithWebPFeatureScan makes the WebP decoder walk the chunk list after the
// header to report transparency, animation and embedded metadata.
func WithWebPFeatureScan() RegistryOption {
	return func(o *registryOptions) {
		o.webpFeatureScan = true
	}
}

// WithoutFormats leaves the given formats out of the registry.
func WithoutFormats(formats ...Format) RegistryOption {
	return func(o *registryOptions) {
		o.without = append(o.without, formats...)
	}
}

// NewRegistry builds a registry holding the built-in decoders in the
// default order: flac, webp, wav, aiff, ogg, opus, m4a, m4b, mp4, mov, mp3.
func NewRegistry(opts ...RegistryOption) (*Registry, error) {
	o := &registryOptions{}
	for _, opt := range opts {
		opt(o)
	}

	var webpOpts []webp.Option
	if o.webpFeatureScan {
		webpOpts = append(webpOpts, webp.WithFeatureScan())
	}

	builtin := []registry.Entry{
		{Nature: types.NatureAudio, Format: types.FormatFLAC, Decoder: flac.New()},
		{Nature: types.NatureImage, Format: types.FormatWebP, Decoder: webp.New(webpOpts...)},
		{Nature: types.NatureAudio, Format: types.FormatWAV, Decoder: wav.New()},
		{Nature: types.NatureAudio, Format: types.FormatAIFF, Decoder: aiff.New()},
		{Nature: types.NatureAudio, Format: types.FormatOgg, Decoder: ogg.New(types.FormatOgg)},
		{Nature: types.NatureAudio, Format: types.FormatOpus, Decoder: ogg.New(types.FormatOpus)},
		{Nature: types.NatureAudio, Format: types.FormatM4A, Decoder: mp4.New(types.FormatM4A)},
		{Nature: types.NatureAudio, Format: types.FormatM4B, Decoder: mp4.New(types.FormatM4B)},
		{Nature: types.NatureVideo, Format: types.FormatMP4, Decoder: mp4.New(types.FormatMP4)},
		{Nature: types.NatureVideo, Format: types.FormatMOV, Decoder: mp4.New(types.FormatMOV)},
		{Nature: types.NatureAudio, Format: types.FormatMP3, Decoder: mp3.New()},
	}

	b := registry.NewBuilder()
	for _, e := range builtin {
		if slices.Contains(o.without, e.Format) {
			continue
		}
		if err := b.Register(e.Nature, e.Format, e.Decoder); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the shared registry of built-in decoders, built
// on first use. It panics if the built-in set is misconfigured.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		reg, err := NewRegistry()
		if err != nil {
			panic(err)
		}
		defaultRegistry = reg
	})
	return defaultRegistry
}
