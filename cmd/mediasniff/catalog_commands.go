package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/simonhull/mediasniff"
	"github.com/simonhull/mediasniff/internal/catalog"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Query recorded scan results",
	}

	catalogCmd.AddCommand(newCatalogListCommand(ctx))
	catalogCmd.AddCommand(newCatalogRunsCommand(ctx))
	return catalogCmd
}

func (c *commandContext) withCatalog(cmd *cobra.Command, fn func(*catalog.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := catalog.Open(cmd.Context(), cfg.Catalog.Path)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func newCatalogListCommand(ctx *commandContext) *cobra.Command {
	var (
		asJSON       bool
		nature       string
		format       string
		runID        string
		unrecognized bool
		limit        int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cataloged files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := catalog.Filter{
				Nature:       mediasniff.Nature(strings.ToLower(strings.TrimSpace(nature))),
				Format:       mediasniff.Format(strings.ToLower(strings.TrimSpace(format))),
				RunID:        strings.TrimSpace(runID),
				Unrecognized: unrecognized,
				Limit:        limit,
			}
			if filter.Nature != "" && !filter.Nature.Valid() {
				return fmt.Errorf("unknown nature %q", nature)
			}
			if filter.Format != "" && !filter.Format.Known() {
				return fmt.Errorf("unknown format %q", format)
			}

			return ctx.withCatalog(cmd, func(store *catalog.Store) error {
				entries, err := store.List(cmd.Context(), filter)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, entries)
				}

				w := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(w, "No cataloged files match")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					var (
						n mediasniff.Nature
						f mediasniff.Format
					)
					if e.Result != nil {
						n, f = e.Result.Nature, e.Result.Format
					}
					rows = append(rows, []string{
						e.Path,
						natureLabel(n),
						formatLabel(f),
						detailLabel(e.Result),
						durationLabel(e.Result),
						sizeLabel(e.Size),
						humanize.Time(e.ScannedAt),
					})
				}
				fmt.Fprintln(w, renderTable(w,
					[]string{"Path", "Nature", "Format", "Details", "Duration", "Size", "Scanned"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight}))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	cmd.Flags().StringVar(&nature, "nature", "", "Only files of this nature (audio, image, video)")
	cmd.Flags().StringVar(&format, "format", "", "Only files of this format")
	cmd.Flags().StringVar(&runID, "run", "", "Only files last seen by this run")
	cmd.Flags().BoolVar(&unrecognized, "unrecognized", false, "Only files no decoder recognized")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum rows (0 = all)")
	return cmd
}

func newCatalogRunsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List scan runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCatalog(cmd, func(store *catalog.Store) error {
				runs, err := store.Runs(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, runs)
				}

				w := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(w, "No scan runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, r := range runs {
					elapsed := "running"
					if r.Finished() {
						elapsed = r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
					}
					rows = append(rows, []string{
						r.ID,
						r.StartedAt.Local().Format(time.DateTime),
						elapsed,
						strings.Join(r.Roots, ", "),
						humanize.Comma(int64(r.Files)),
						humanize.Comma(int64(r.Recognized)),
						humanize.Comma(int64(r.Failed)),
					})
				}
				fmt.Fprintln(w, renderTable(w,
					[]string{"Run", "Started", "Elapsed", "Roots", "Files", "Recognized", "Failed"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignRight, alignRight}))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}
