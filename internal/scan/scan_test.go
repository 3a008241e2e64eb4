package scan_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/simonhull/mediasniff/internal/scan"
)

func buildTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := []string{
		"a.flac",
		"b.WEBP",
		"notes.txt",
		"sub/c.flac",
		"sub/deeper/d.mp3",
		".hidden/e.flac",
		"sub/.f.flac",
	}
	for _, name := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func collect(t *testing.T, roots []string, opts scan.Options) ([]string, scan.Stats) {
	t.Helper()
	var (
		mu    sync.Mutex
		found []string
	)
	stats, err := scan.Walk(context.Background(), roots, opts, func(_ context.Context, f scan.File) error {
		rel, err := filepath.Rel(roots[0], f.Path)
		if err != nil {
			return err
		}
		if f.Info.Size() == 0 {
			return errors.New("missing file info")
		}
		mu.Lock()
		found = append(found, filepath.ToSlash(rel))
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	slices.Sort(found)
	return found, stats
}

func TestWalk(t *testing.T) {
	root := buildTree(t)

	tests := []struct {
		name string
		opts scan.Options
		want []string
	}{
		{
			name: "all visible",
			opts: scan.Options{Workers: 2},
			want: []string{"a.flac", "b.WEBP", "notes.txt", "sub/c.flac", "sub/deeper/d.mp3"},
		},
		{
			name: "hidden",
			opts: scan.Options{IncludeHidden: true},
			want: []string{".hidden/e.flac", "a.flac", "b.WEBP", "notes.txt", "sub/.f.flac", "sub/c.flac", "sub/deeper/d.mp3"},
		},
		{
			name: "extensions",
			opts: scan.Options{Extensions: []string{".flac", ".webp"}},
			want: []string{"a.flac", "b.WEBP", "sub/c.flac"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, stats := collect(t, []string{root}, tt.opts)
			if !slices.Equal(got, tt.want) {
				t.Errorf("visited %v, want %v", got, tt.want)
			}
			if stats.Visited != len(tt.want) {
				t.Errorf("stats.Visited = %d, want %d", stats.Visited, len(tt.want))
			}
		})
	}
}

func TestWalk_FileRoot(t *testing.T) {
	root := buildTree(t)
	path := filepath.Join(root, "a.flac")

	var visited []string
	_, err := scan.Walk(context.Background(), []string{path}, scan.Options{Workers: 1}, func(_ context.Context, f scan.File) error {
		visited = append(visited, f.Path)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(visited) != 1 || visited[0] != path {
		t.Errorf("visited %v", visited)
	}
}

func TestWalk_VisitError(t *testing.T) {
	root := buildTree(t)
	boom := errors.New("boom")

	_, err := scan.Walk(context.Background(), []string{root}, scan.Options{Workers: 1}, func(context.Context, scan.File) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestWalk_Cancelled(t *testing.T) {
	root := buildTree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := scan.Walk(ctx, []string{root}, scan.Options{}, func(context.Context, scan.File) error {
		t.Error("visit called after cancellation")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestWalk_MissingRoot(t *testing.T) {
	_, err := scan.Walk(context.Background(), []string{filepath.Join(t.TempDir(), "absent")}, scan.Options{}, func(context.Context, scan.File) error {
		return nil
	})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestExpand(t *testing.T) {
	root := t.TempDir()
	t.Chdir(root)

	got, err := scan.Expand([]string{"."})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || !filepath.IsAbs(got[0]) {
		t.Errorf("Expand = %v", got)
	}
	if _, err := scan.Expand([]string{"absent"}); err == nil {
		t.Error("expected error for missing root")
	}
}
