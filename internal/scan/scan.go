// Package scan walks directory trees and hands regular files to a bounded
// pool of workers.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Options controls which files a walk visits and how many are processed
// at once.
type Options struct {
	// Workers bounds concurrent calls to the visit function; below 1 means
	// runtime.NumCPU().
	Workers int
	// IncludeHidden visits dot files and descends into dot directories.
	IncludeHidden bool
	// Extensions limits visits to these lower-case extensions (".flac").
	// Empty visits every regular file.
	Extensions []string
	Logger     *slog.Logger
}

// File is a regular file found by the walk.
type File struct {
	Path string
	Info fs.FileInfo
}

// VisitFunc processes one file. Returning an error stops the walk.
type VisitFunc func(ctx context.Context, f File) error

// Stats summarizes a finished walk.
type Stats struct {
	Visited int
	Skipped int
}

// Walk visits every matching regular file under roots. A root may itself be
// a file. Unreadable directories are logged and skipped; the first error
// from visit, or ctx cancellation, stops the walk and is returned.
func Walk(ctx context.Context, roots []string, opts Options, visit VisitFunc) (Stats, error) {
	workers := opts.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var stats Stats
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				if path == root {
					return fmt.Errorf("walk %s: %w", root, err)
				}
				logger.Warn("skipping unreadable path", "path", path, "error", err)
				stats.Skipped++
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}

			if path != root && !opts.IncludeHidden && isHidden(d.Name()) {
				if d.IsDir() {
					return fs.SkipDir
				}
				stats.Skipped++
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if !d.Type().IsRegular() || !matchesExtension(path, opts.Extensions) {
				stats.Skipped++
				return nil
			}

			info, err := d.Info()
			if err != nil {
				logger.Warn("skipping file", "path", path, "error", err)
				stats.Skipped++
				return nil
			}

			stats.Visited++
			file := File{Path: path, Info: info}
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				return visit(ctx, file)
			})
			return nil
		})
		if err != nil {
			// Let in-flight visits finish before reporting.
			waitErr := g.Wait()
			if waitErr != nil && !errors.Is(waitErr, context.Canceled) {
				return stats, waitErr
			}
			return stats, err
		}
	}

	if err := g.Wait(); err != nil {
		return stats, err
	}
	return stats, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

func matchesExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	return slices.Contains(extensions, strings.ToLower(filepath.Ext(path)))
}

// Expand resolves roots to absolute paths and checks that each exists.
func Expand(roots []string) ([]string, error) {
	out := make([]string, 0, len(roots))
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", root, err)
		}
		if _, err := os.Stat(abs); err != nil {
			return nil, fmt.Errorf("scan root: %w", err)
		}
		out = append(out, abs)
	}
	return out, nil
}
