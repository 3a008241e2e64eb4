package mediasniff

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/simonhull/mediasniff/internal/binary"
)

// File is the outcome of parsing a file on disk.
//
// File holds no open handle; ParseFile closes the file before returning.
type File struct {
	// Path to the file as given
	Path string

	// File size in bytes
	Size int64

	// Parsed result, nil when no decoder recognized the file
	Result *Result

	// Per-decoder trail, only with WithExplain
	Attempts []Attempt
}

// Recognized reports whether a decoder matched.
func (f *File) Recognized() bool {
	return f.Result != nil
}

// Parse identifies src and returns its metadata. The boolean is false when
// no decoder recognizes the stream; that is not an error.
//
// Example:
//
//	result, ok := mediasniff.Parse(bytes.NewReader(data))
//	if ok {
//		fmt.Println(result.Format, result.WidthPx, result.HeightPx)
//	}
func Parse(src Source, opts ...Option) (*Result, bool) {
	o := applyOptions(opts)
	return o.registry.Parse(src, o.dispatchOptions("")...)
}

// ParseFile opens path, parses it and closes it.
//
// An error is returned only when the file cannot be opened or is not a
// regular file. An unrecognized file is a File with a nil Result.
//
// Example:
//
//	file, err := mediasniff.ParseFile("song.flac")
//	if err != nil {
//		return err
//	}
//	if file.Recognized() {
//		fmt.Println(file.Result)
//	}
func ParseFile(path string, opts ...Option) (*File, error) {
	return parseFile(path, applyOptions(opts))
}

// ParseFileContext is ParseFile that checks ctx before opening the file.
// A single parse is not interruptible.
func ParseFileContext(ctx context.Context, path string, opts ...Option) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ParseFile(path, opts...)
}

func parseFile(path string, o *parseOptions) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	src, err := binary.FileSource(f)
	if err != nil {
		return nil, err
	}

	file := &File{Path: path, Size: src.Size()}
	if o.explain {
		out := o.registry.Explain(src, o.dispatchOptions(path)...)
		file.Result, file.Attempts = out.Result, out.Attempts
	} else {
		file.Result, _ = o.registry.Parse(src, o.dispatchOptions(path)...)
	}
	return file, nil
}

// ParseMany parses multiple files concurrently.
//
// Files are parsed with up to WithConcurrency goroutines (default
// runtime.NumCPU()). Results are returned in the same order as the input
// paths.
//
// If any file fails to open, or ctx is cancelled, an error is returned and
// no results.
//
// Example:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
//	defer cancel()
//
//	files, err := mediasniff.ParseMany(ctx, paths)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, f := range files {
//		fmt.Printf("%s: %v\n", f.Path, f.Result)
//	}
func ParseMany(ctx context.Context, paths []string, opts ...Option) ([]*File, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	o := applyOptions(opts)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	results := make([]*File, len(paths))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			file, err := parseFile(path, o)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = file
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
