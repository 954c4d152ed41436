package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/meigma/mzml"
)

func newIndexCommand(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "index DOCUMENT",
		Short: "Scan a document and persist its offset index",
		Long: "Scan a document and persist its offset index. Later commands reuse the\n" +
			"index while the document is unchanged.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[0]
			if output == "" {
				if isRemote(target) {
					return errors.New("remote documents need --output")
				}
				output = a.indexPath(target)
			}

			a.reindex = true
			doc, err := a.open(target)
			if err != nil {
				return err
			}
			defer doc.Close()

			idx, err := mzml.StampIndex(doc.Index(), doc.Source())
			if err != nil {
				return err
			}
			if err := mzml.SaveIndex(output, idx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %s (%s): %d spectra, %d chromatograms -> %s\n",
				target, humanize.IBytes(uint64(doc.Size())), //nolint:gosec // sizes are non-negative
				idx.Len(mzml.KindSpectrum), idx.Len(mzml.KindChromatogram), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "index file (default: next to the document)")
	return cmd
}
