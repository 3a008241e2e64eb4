package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/mediasniff"
)

type formatOutput struct {
	Order      int               `json:"order"`
	Nature     mediasniff.Nature `json:"nature"`
	Format     mediasniff.Format `json:"format"`
	Extensions []string          `json:"extensions"`
	MIMEType   string            `json:"mime_type"`
}

func newFormatsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List the decoders in dispatch order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var regOpts []mediasniff.RegistryOption
			if cfg.Parse.WebPFeatureScan {
				regOpts = append(regOpts, mediasniff.WithWebPFeatureScan())
			}
			reg, err := mediasniff.NewRegistry(regOpts...)
			if err != nil {
				return err
			}

			entries := reg.Entries()
			out := make([]formatOutput, 0, len(entries))
			for i, e := range entries {
				out = append(out, formatOutput{
					Order:      i + 1,
					Nature:     e.Nature,
					Format:     e.Format,
					Extensions: e.Format.Extensions(),
					MIMEType:   e.Format.MIMEType(),
				})
			}
			if asJSON {
				return writeJSON(cmd, out)
			}

			rows := make([][]string, 0, len(out))
			for _, f := range out {
				rows = append(rows, []string{
					fmt.Sprint(f.Order),
					natureLabel(f.Nature),
					string(f.Format),
					strings.Join(f.Extensions, " "),
					f.MIMEType,
				})
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, renderTable(w, []string{"#", "Nature", "Format", "Extensions", "MIME"}, rows,
				[]columnAlignment{alignRight}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}
