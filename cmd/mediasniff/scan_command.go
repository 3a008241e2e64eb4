package main

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/simonhull/mediasniff"
	"github.com/simonhull/mediasniff/internal/catalog"
	"github.com/simonhull/mediasniff/internal/scan"
)

type scanSummary struct {
	RunID      string                    `json:"run_id,omitempty"`
	Roots      []string                  `json:"roots"`
	Files      int                       `json:"files"`
	Recognized int                       `json:"recognized"`
	Failed     int                       `json:"failed"`
	Skipped    int                       `json:"skipped"`
	Bytes      int64                     `json:"bytes"`
	ByFormat   map[mediasniff.Format]int `json:"by_format"`
	Elapsed    time.Duration             `json:"elapsed_ns"`
}

func (s *scanSummary) add(f *mediasniff.File) {
	s.Files++
	s.Bytes += f.Size
	if f.Result != nil {
		s.Recognized++
		s.ByFormat[f.Result.Format]++
	}
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	var (
		asJSON    bool
		noCatalog bool
		workers   int
	)

	cmd := &cobra.Command{
		Use:   "scan DIR...",
		Short: "Identify every file under the given directories and catalog the results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.loggerFor(cmd)
			if err != nil {
				return err
			}
			opts, err := ctx.parseOptions(cmd, nil, -1)
			if err != nil {
				return err
			}
			roots, err := scan.Expand(args)
			if err != nil {
				return err
			}
			if workers <= 0 {
				workers = cfg.Scan.Workers
			}

			var run *catalog.Run
			if !noCatalog {
				store, err := catalog.Open(cmd.Context(), cfg.Catalog.Path)
				if err != nil {
					return err
				}
				defer store.Close()

				run, err = store.BeginRun(cmd.Context(), roots)
				if err != nil {
					return err
				}
				defer func() {
					if err := run.Finish(context.WithoutCancel(cmd.Context())); err != nil {
						logger.Warn("finish catalog run", "error", err)
					}
				}()
				logger.Info("scan started", "run_id", run.ID(), "catalog", store.Path())
			}

			summary := &scanSummary{Roots: roots, ByFormat: map[mediasniff.Format]int{}}
			if run != nil {
				summary.RunID = run.ID()
			}
			var mu sync.Mutex
			started := time.Now()

			stats, err := scan.Walk(cmd.Context(), roots, scan.Options{
				Workers:       workers,
				IncludeHidden: cfg.Scan.IncludeHidden,
				Extensions:    cfg.Scan.Extensions,
				Logger:        logger,
			}, func(ctx context.Context, f scan.File) error {
				file, err := mediasniff.ParseFile(f.Path, opts...)
				if err != nil {
					logger.Warn("skipping file", "path", f.Path, "error", err)
					mu.Lock()
					summary.Failed++
					mu.Unlock()
					if run != nil {
						run.RecordFailure()
					}
					return nil
				}

				if run != nil {
					if err := run.Record(ctx, file.Path, file.Size, f.Info.ModTime(), file.Result); err != nil {
						return err
					}
				}
				logger.Debug("file parsed", "path", file.Path, "format", formatLabel(resultFormat(file)))

				mu.Lock()
				summary.add(file)
				mu.Unlock()
				return nil
			})
			summary.Skipped = stats.Skipped
			summary.Elapsed = time.Since(started)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, summary)
			}
			printScanSummary(cmd, summary)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the summary as JSON")
	cmd.Flags().BoolVar(&noCatalog, "no-catalog", false, "Do not record results in the catalog")
	cmd.Flags().IntVar(&workers, "workers", 0, "Files parsed concurrently (default from config)")
	return cmd
}

func resultFormat(f *mediasniff.File) mediasniff.Format {
	if f.Result == nil {
		return ""
	}
	return f.Result.Format
}

func printScanSummary(cmd *cobra.Command, s *scanSummary) {
	w := cmd.OutOrStdout()
	if s.RunID != "" {
		fmt.Fprintf(w, "Run %s\n", s.RunID)
	}
	fmt.Fprintf(w, "Scanned %s files (%s) in %s: %s recognized, %s unreadable, %s skipped\n",
		humanize.Comma(int64(s.Files)),
		humanize.IBytes(uint64(s.Bytes)),
		s.Elapsed.Round(time.Millisecond),
		humanize.Comma(int64(s.Recognized)),
		humanize.Comma(int64(s.Failed)),
		humanize.Comma(int64(s.Skipped)),
	)
	if len(s.ByFormat) == 0 {
		return
	}

	formats := slices.Sorted(maps.Keys(s.ByFormat))
	rows := make([][]string, 0, len(formats)+1)
	for _, f := range formats {
		rows = append(rows, []string{formatLabel(f), humanize.Comma(int64(s.ByFormat[f]))})
	}
	if unrecognized := s.Files - s.Recognized; unrecognized > 0 {
		rows = append(rows, []string{formatLabel(""), humanize.Comma(int64(unrecognized))})
	}
	fmt.Fprintln(w, renderTable(w, []string{"Format", "Files"}, rows, []columnAlignment{alignLeft, alignRight}))
}
