// Package registry holds the ordered set of format decoders and dispatches
// streams to them.
package registry

import (
	"github.com/simonhull/mediasniff/internal/binary"
	"github.com/simonhull/mediasniff/internal/types"
)

// Decoder is the interface all format decoders implement.
type Decoder interface {
	// Decode inspects the stream from the reader's cursor (offset 0).
	// It returns types.ErrNoMatch when the signature does not match.
	// Nature and Format on the result are filled in by the dispatcher.
	Decode(r *binary.Reader) (*types.Result, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(r *binary.Reader) (*types.Result, error)

// Decode calls f(r).
func (f DecoderFunc) Decode(r *binary.Reader) (*types.Result, error) {
	return f(r)
}

// Entry is one registered decoder.
type Entry struct {
	Nature  types.Nature
	Format  types.Format
	Decoder Decoder
}

// Builder collects registrations before a Registry is built.
// It is not safe for concurrent use.
type Builder struct {
	entries []Entry
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Register appends a decoder. Registration order is dispatch order.
func (b *Builder) Register(nature types.Nature, format types.Format, dec Decoder) error {
	fail := func(reason string) error {
		return &types.ConfigurationError{Nature: nature, Format: format, Reason: reason}
	}

	switch {
	case !nature.Valid():
		return fail("unknown nature")
	case format == "":
		return fail("empty format tag")
	case dec == nil:
		return fail("nil decoder")
	}
	for _, e := range b.entries {
		if e.Nature == nature && e.Format == format {
			return fail("already registered")
		}
	}

	b.entries = append(b.entries, Entry{Nature: nature, Format: format, Decoder: dec})
	return nil
}

// MustRegister is like Register but panics on a configuration error.
func (b *Builder) MustRegister(nature types.Nature, format types.Format, dec Decoder) *Builder {
	if err := b.Register(nature, format, dec); err != nil {
		panic(err)
	}
	return b
}

// Build returns an immutable Registry. Later registrations on the builder
// do not affect it.
func (b *Builder) Build() *Registry {
	entries := make([]Entry, len(b.entries))
	copy(entries, b.entries)
	return &Registry{entries: entries}
}

// Registry is an immutable, ordered list of decoders. It is safe for
// concurrent use.
type Registry struct {
	entries []Entry
}

// Entries returns a copy of the entries in registration order.
func (reg *Registry) Entries() []Entry {
	out := make([]Entry, len(reg.entries))
	copy(out, reg.entries)
	return out
}

// Len returns the number of registered decoders.
func (reg *Registry) Len() int {
	return len(reg.entries)
}

// Lookup returns the first entry registered for format.
func (reg *Registry) Lookup(format types.Format) (Entry, bool) {
	for _, e := range reg.entries {
		if e.Format == format {
			return e, true
		}
	}
	return Entry{}, false
}

// Formats returns the registered format tags in order.
func (reg *Registry) Formats() []types.Format {
	out := make([]types.Format, 0, len(reg.entries))
	for _, e := range reg.entries {
		out = append(out, e.Format)
	}
	return out
}
