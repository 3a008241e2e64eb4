package mediasniff_test

import (
	"context"
	"testing"

	"github.com/simonhull/mediasniff"
)

// TestParseMany_Order verifies results follow input order.
func TestParseMany_Order(t *testing.T) {
	paths := []string{
		writeTemp(t, "a.flac", flacStream()),
		writeTemp(t, "b.webp", webpLossless(2, 2, false)),
		writeTemp(t, "c.m4b", audiobookStream()),
		writeTemp(t, "d.bin", make([]byte, 64)),
	}
	want := []mediasniff.Format{mediasniff.FormatFLAC, mediasniff.FormatWebP, mediasniff.FormatM4B, ""}

	files, err := mediasniff.ParseMany(context.Background(), paths, mediasniff.WithConcurrency(2))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != len(paths) {
		t.Fatalf("got %d files, want %d", len(files), len(paths))
	}
	for i, f := range files {
		if f.Path != paths[i] {
			t.Errorf("files[%d].Path = %s, want %s", i, f.Path, paths[i])
		}
		var got mediasniff.Format
		if f.Result != nil {
			got = f.Result.Format
		}
		if got != want[i] {
			t.Errorf("files[%d] format = %q, want %q", i, got, want[i])
		}
	}
}

// TestParseMany_Cancellation verifies a cancelled context yields nothing.
func TestParseMany_Cancellation(t *testing.T) {
	paths := make([]string, 5)
	for i := range paths {
		paths[i] = writeTemp(t, "book.m4b", audiobookStream())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	files, err := mediasniff.ParseMany(ctx, paths)
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if files != nil {
		t.Error("expected nil files on error")
	}
}

// TestParseMany_PartialFailure verifies all-or-nothing results.
func TestParseMany_PartialFailure(t *testing.T) {
	validPath := writeTemp(t, "book.m4b", audiobookStream())

	paths := []string{
		validPath,
		"/nonexistent/file.m4b",
		validPath,
	}

	files, err := mediasniff.ParseMany(context.Background(), paths)
	if err == nil {
		t.Fatal("expected error from nonexistent file")
	}
	if files != nil {
		t.Error("expected nil files on partial failure")
	}
}

func TestParseMany_Empty(t *testing.T) {
	files, err := mediasniff.ParseMany(context.Background(), nil)
	if err != nil || files != nil {
		t.Errorf("expected nil, nil; got %v, %v", files, err)
	}
}
