package registry

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/simonhull/mediasniff/internal/binary"
	"github.com/simonhull/mediasniff/internal/types"
)

// magicDecoder matches streams starting with magic.
type magicDecoder struct {
	magic string
	calls int
}

func (m *magicDecoder) Decode(r *binary.Reader) (*types.Result, error) {
	m.calls++
	if r.Offset() != 0 {
		return nil, fmt.Errorf("decoder started at offset %d", r.Offset())
	}
	ok, err := r.Expect(m.magic, "magic")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, types.ErrNoMatch
	}
	return &types.Result{NumAudioChannels: 2}, nil
}

// greedyDecoder consumes the whole stream before declining.
var greedyDecoder = DecoderFunc(func(r *binary.Reader) (*types.Result, error) {
	if err := r.Skip(r.Remaining(), "everything"); err != nil {
		return nil, err
	}
	return nil, types.ErrNoMatch
})

func fixedError(err error) Decoder {
	return DecoderFunc(func(*binary.Reader) (*types.Result, error) { return nil, err })
}

func fixedResult(res *types.Result) Decoder {
	return DecoderFunc(func(*binary.Reader) (*types.Result, error) { return res, nil })
}

func TestBuilder_Register(t *testing.T) {
	dec := &magicDecoder{magic: "AAAA"}

	tests := []struct {
		name   string
		nature types.Nature
		format types.Format
		dec    Decoder
		reason string
	}{
		{"duplicate", types.NatureAudio, "aaaa", dec, "already registered"},
		{"unknown nature", "smell", "bbbb", dec, "unknown nature"},
		{"empty format", types.NatureAudio, "", dec, "empty format tag"},
		{"nil decoder", types.NatureAudio, "cccc", nil, "nil decoder"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			b.MustRegister(types.NatureAudio, "aaaa", dec)

			err := b.Register(tt.nature, tt.format, tt.dec)
			var cfgErr *types.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigurationError, got %v", err)
			}
			if cfgErr.Reason != tt.reason {
				t.Errorf("expected reason %q, got %q", tt.reason, cfgErr.Reason)
			}
		})
	}
}

func TestBuilder_SameFormatDifferentNature(t *testing.T) {
	b := NewBuilder()
	b.MustRegister(types.NatureAudio, "mp4", &magicDecoder{magic: "x"})
	if err := b.Register(types.NatureVideo, "mp4", &magicDecoder{magic: "y"}); err != nil {
		t.Errorf("distinct natures should register: %v", err)
	}
}

func TestBuilder_MustRegisterPanics(t *testing.T) {
	defer func() {
		r := recover()
		if _, ok := r.(*types.ConfigurationError); !ok {
			t.Fatalf("expected ConfigurationError panic, got %v", r)
		}
	}()
	NewBuilder().
		MustRegister(types.NatureAudio, "aaaa", &magicDecoder{magic: "A"}).
		MustRegister(types.NatureAudio, "aaaa", &magicDecoder{magic: "A"})
}

func TestBuild_IsSnapshot(t *testing.T) {
	b := NewBuilder().MustRegister(types.NatureAudio, "aaaa", &magicDecoder{magic: "AAAA"})
	reg := b.Build()
	b.MustRegister(types.NatureAudio, "bbbb", &magicDecoder{magic: "BBBB"})

	if reg.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", reg.Len())
	}

	entries := reg.Entries()
	entries[0].Format = "mutated"
	if _, ok := reg.Lookup("aaaa"); !ok {
		t.Error("mutating Entries() copy changed the registry")
	}
	if _, ok := reg.Lookup("bbbb"); ok {
		t.Error("post-build registration leaked into registry")
	}
}

func newTestRegistry() (*Registry, *magicDecoder, *magicDecoder) {
	a := &magicDecoder{magic: "AAAA"}
	b := &magicDecoder{magic: "BBBB"}
	reg := NewBuilder().
		MustRegister(types.NatureAudio, "aaaa", a).
		MustRegister(types.NatureImage, "bbbb", b).
		Build()
	return reg, a, b
}

func TestParse_FirstMatchWins(t *testing.T) {
	reg, a, b := newTestRegistry()

	res, ok := reg.Parse(bytes.NewReader([]byte("BBBB....")))
	if !ok {
		t.Fatal("expected recognized stream")
	}
	if res.Format != "bbbb" || res.Nature != types.NatureImage {
		t.Errorf("expected image/bbbb, got %s/%s", res.Nature, res.Format)
	}
	if a.calls != 1 || b.calls != 1 {
		t.Errorf("expected one call each, got a=%d b=%d", a.calls, b.calls)
	}
}

func TestParse_TieBrokenByRegistrationOrder(t *testing.T) {
	reg := NewBuilder().
		MustRegister(types.NatureAudio, "first", &magicDecoder{magic: "SAME"}).
		MustRegister(types.NatureAudio, "second", &magicDecoder{magic: "SAME"}).
		Build()

	res, ok := reg.Parse(bytes.NewReader([]byte("SAME")))
	if !ok || res.Format != "first" {
		t.Errorf("expected first registered to win, got %v", res)
	}
}

func TestParse_FreshReaderPerAttempt(t *testing.T) {
	reg := NewBuilder().
		MustRegister(types.NatureAudio, "greedy", greedyDecoder).
		MustRegister(types.NatureAudio, "aaaa", &magicDecoder{magic: "AAAA"}).
		Build()

	res, ok := reg.Parse(bytes.NewReader([]byte("AAAAxxxx")))
	if !ok || res.Format != "aaaa" {
		t.Fatalf("second decoder should see offset 0, got %v", res)
	}
}

func TestParse_AllZeroStreamUnrecognized(t *testing.T) {
	reg, _, _ := newTestRegistry()

	for _, n := range []int{0, 1, 3, 4, 100, 4096} {
		if res, ok := reg.Parse(bytes.NewReader(make([]byte, n))); ok {
			t.Errorf("length %d: expected unrecognized, got %v", n, res)
		}
	}
}

func TestExplain_Statuses(t *testing.T) {
	reg := NewBuilder().
		MustRegister(types.NatureAudio, "nomatch", fixedError(types.ErrNoMatch)).
		MustRegister(types.NatureAudio, "short", fixedError(&types.ShortReadError{What: "header"})).
		MustRegister(types.NatureAudio, "malformed", fixedError(&types.MalformedValueError{Format: "malformed", Field: "rate"})).
		MustRegister(types.NatureAudio, "io", fixedError(io.ErrUnexpectedEOF)).
		MustRegister(types.NatureAudio, "nil", fixedResult(nil)).
		MustRegister(types.NatureAudio, "invalid", fixedResult(&types.Result{NumAudioChannels: -1})).
		MustRegister(types.NatureAudio, "good", fixedResult(&types.Result{NumAudioChannels: 1})).
		MustRegister(types.NatureAudio, "never", fixedResult(&types.Result{})).
		Build()

	out := reg.Explain(bytes.NewReader(nil))
	if !out.Recognized() || out.Result.Format != "good" {
		t.Fatalf("expected good to match, got %+v", out.Result)
	}

	want := []Status{StatusNoMatch, StatusShortRead, StatusMalformed, StatusFailed, StatusNoMatch, StatusFailed, StatusMatched}
	if len(out.Attempts) != len(want) {
		t.Fatalf("expected %d attempts, got %d", len(want), len(out.Attempts))
	}
	for i, a := range out.Attempts {
		if a.Status != want[i] {
			t.Errorf("attempt %d (%s): expected %s, got %s", i, a.Format, want[i], a.Status)
		}
	}
	if !strings.Contains(out.Attempts[5].Err.Error(), "negative channel count") {
		t.Errorf("expected validation error, got %v", out.Attempts[5].Err)
	}
}

func TestParse_WithFormats(t *testing.T) {
	reg, a, b := newTestRegistry()

	if _, ok := reg.Parse(bytes.NewReader([]byte("AAAA")), WithFormats("bbbb", "unknown")); ok {
		t.Error("aaaa was excluded and should not match")
	}
	if a.calls != 0 || b.calls != 1 {
		t.Errorf("expected only bbbb to run, got a=%d b=%d", a.calls, b.calls)
	}

	out := reg.Explain(bytes.NewReader([]byte("BBBB")), WithFormats("bbbb", "aaaa"))
	if len(out.Attempts) != 2 || out.Attempts[0].Format != "aaaa" {
		t.Errorf("subset should keep registration order, got %+v", out.Attempts)
	}
}

func TestParse_WithMaxBytes(t *testing.T) {
	reg, _, _ := newTestRegistry()

	out := reg.Explain(bytes.NewReader([]byte("AAAA")), WithMaxBytes(2), WithPath("capped.bin"))
	if out.Recognized() {
		t.Fatal("magic lies beyond the cap and should not match")
	}
	if out.Attempts[0].Status != StatusNoMatch {
		t.Errorf("expected no_match from truncated magic, got %s", out.Attempts[0].Status)
	}
}

func TestParse_WithLogger(t *testing.T) {
	reg, _, _ := newTestRegistry()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	reg.Parse(bytes.NewReader([]byte("BBBB")), WithLogger(logger), WithPath("x.bin"))

	logs := buf.String()
	if strings.Count(logs, "decoder attempt") != 2 {
		t.Errorf("expected two attempt records, got:\n%s", logs)
	}
	if !strings.Contains(logs, "status=matched") || !strings.Contains(logs, "path=x.bin") {
		t.Errorf("missing fields in logs:\n%s", logs)
	}
}

func TestGuard(t *testing.T) {
	err := Guard("mp3", "frame", func() error { panic("index out of range") })
	if !errors.Is(err, types.ErrMalformedValue) {
		t.Fatalf("expected malformed value, got %v", err)
	}
	if !strings.Contains(err.Error(), "index out of range") {
		t.Errorf("expected panic value in message, got %v", err)
	}

	want := errors.New("plain")
	if got := Guard("mp3", "frame", func() error { return want }); got != want {
		t.Errorf("expected error passthrough, got %v", got)
	}
}

func BenchmarkParse_Unrecognized(b *testing.B) {
	reg, _, _ := newTestRegistry()
	src := bytes.NewReader(make([]byte, 4096))

	b.ReportAllocs()
	for b.Loop() {
		reg.Parse(src)
	}
}
