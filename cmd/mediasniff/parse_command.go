package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/simonhull/mediasniff"
)

type parseOutput struct {
	Path     string             `json:"path"`
	Size     int64              `json:"size"`
	Result   *mediasniff.Result `json:"result"`
	Attempts []attemptOutput    `json:"attempts,omitempty"`
}

type attemptOutput struct {
	Format mediasniff.Format `json:"format"`
	Status mediasniff.Status `json:"status"`
	Error  string            `json:"error,omitempty"`
}

func newParseCommand(ctx *commandContext) *cobra.Command {
	var (
		asJSON   bool
		explain  bool
		formats  []string
		maxBytes int64
		workers  int
	)

	cmd := &cobra.Command{
		Use:   "parse FILE...",
		Short: "Identify files and print their metadata",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := ctx.parseOptions(cmd, formats, maxBytes)
			if err != nil {
				return err
			}
			opts = append(opts, mediasniff.WithConcurrency(workers))
			if explain {
				opts = append(opts, mediasniff.WithExplain())
			}

			files, err := mediasniff.ParseMany(cmd.Context(), args, opts...)
			if err != nil {
				return err
			}

			if asJSON {
				out := make([]parseOutput, 0, len(files))
				for _, f := range files {
					out = append(out, toParseOutput(f))
				}
				return writeJSON(cmd, out)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, renderFileTable(w, files))
			if explain {
				for _, f := range files {
					fmt.Fprintf(w, "\n%s\n", f.Path)
					fmt.Fprintln(w, renderAttemptTable(w, f.Attempts))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	cmd.Flags().BoolVar(&explain, "explain", false, "Show every decoder attempt")
	cmd.Flags().StringSliceVar(&formats, "formats", nil, "Only try these formats (comma separated)")
	cmd.Flags().Int64Var(&maxBytes, "max-bytes", -1, "Leading bytes a decoder may read (0 = whole file, default from config)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Files parsed concurrently (0 = CPU count)")
	return cmd
}

func toParseOutput(f *mediasniff.File) parseOutput {
	out := parseOutput{Path: f.Path, Size: f.Size, Result: f.Result}
	for _, a := range f.Attempts {
		entry := attemptOutput{Format: a.Format, Status: a.Status}
		if a.Err != nil {
			entry.Error = a.Err.Error()
		}
		out.Attempts = append(out.Attempts, entry)
	}
	return out
}

func renderFileTable(w io.Writer, files []*mediasniff.File) string {
	headers := []string{"Path", "Nature", "Format", "Details", "Duration", "Size"}
	rows := make([][]string, 0, len(files))
	for _, f := range files {
		var (
			nature mediasniff.Nature
			format mediasniff.Format
		)
		if f.Result != nil {
			nature, format = f.Result.Nature, f.Result.Format
		}
		rows = append(rows, []string{
			f.Path,
			natureLabel(nature),
			formatLabel(format),
			detailLabel(f.Result),
			durationLabel(f.Result),
			sizeLabel(f.Size),
		})
	}
	return renderTable(w, headers, rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight})
}

func renderAttemptTable(w io.Writer, attempts []mediasniff.Attempt) string {
	headers := []string{"Format", "Status", "Reason"}
	rows := make([][]string, 0, len(attempts))
	for _, a := range attempts {
		reason := ""
		if a.Err != nil {
			reason = a.Err.Error()
		}
		rows = append(rows, []string{string(a.Format), string(a.Status), reason})
	}
	return renderTable(w, headers, rows, nil)
}
