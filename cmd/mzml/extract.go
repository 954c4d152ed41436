package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/meigma/mzml"
	"github.com/meigma/mzml/internal/write"
)

func newExtractCommand(a *app) *cobra.Command {
	var (
		output        string
		ancestors     bool
		chromatograms []string
		indexed       bool
		plain         bool
	)
	cmd := &cobra.Command{
		Use:   "extract DOCUMENT ID...",
		Short: "Write a standalone document holding the selected spectra",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if indexed && plain {
				return errors.New("--indexed and --plain are mutually exclusive")
			}
			doc, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer doc.Close()

			var opts []mzml.ExtractOption
			if ancestors {
				opts = append(opts, mzml.WithAncestors())
			}
			if len(chromatograms) > 0 {
				opts = append(opts, mzml.WithChromatograms(chromatograms...))
			}
			switch {
			case indexed:
				opts = append(opts, mzml.WithVariant(mzml.VariantIndexed))
			case plain:
				opts = append(opts, mzml.WithVariant(mzml.VariantPlain))
			}

			out, err := mzml.Extract(doc.Reader, args[1:], opts...)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			n, d, err := write.File(output, 0o644, func(w io.Writer) error {
				_, err := w.Write(out)
				return err
			})
			if err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(a.stderr, "wrote %s (%s, %s)\n", output, humanize.IBytes(n), d)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	flags.BoolVar(&ancestors, "ancestors", false, "include the spectra each precursor was selected from")
	flags.StringSliceVar(&chromatograms, "chromatogram", nil, "chromatogram id to include (repeatable)")
	flags.BoolVar(&indexed, "indexed", false, "write indexedmzML regardless of the input variant")
	flags.BoolVar(&plain, "plain", false, "write plain mzML regardless of the input variant")
	return cmd
}
