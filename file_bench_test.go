package mediasniff_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/simonhull/mediasniff"
)

// BenchmarkParse measures dispatch over an in-memory stream that matches
// late in the registry order.
func BenchmarkParse(b *testing.B) {
	data := audiobookStream()

	b.ReportAllocs()
	for b.Loop() {
		if _, ok := mediasniff.Parse(bytes.NewReader(data)); !ok {
			b.Fatal("not recognized")
		}
	}
}

// BenchmarkParse_Unrecognized measures a full pass where every decoder
// declines.
func BenchmarkParse_Unrecognized(b *testing.B) {
	data := make([]byte, 4096)

	b.ReportAllocs()
	for b.Loop() {
		mediasniff.Parse(bytes.NewReader(data))
	}
}

// BenchmarkParseFile measures opening and sniffing a single file.
func BenchmarkParseFile(b *testing.B) {
	path := writeTemp(b, "bench.flac", flacStream())

	b.ReportAllocs()
	for b.Loop() {
		if _, err := mediasniff.ParseFile(path); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkParseMany measures concurrent parsing.
func BenchmarkParseMany(b *testing.B) {
	paths := make([]string, 10)
	for i := range paths {
		paths[i] = writeTemp(b, "bench.m4b", audiobookStream())
	}
	ctx := context.Background()

	b.ReportAllocs()
	for b.Loop() {
		if _, err := mediasniff.ParseMany(ctx, paths); err != nil {
			b.Fatal(err)
		}
	}
}
