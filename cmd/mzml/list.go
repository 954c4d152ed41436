package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/meigma/mzml"
)

func newListCommand(a *app) *cobra.Command {
	var chromatograms bool
	cmd := &cobra.Command{
		Use:   "list DOCUMENT",
		Short: "List record ids with their position and byte offset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer doc.Close()

			kind, ids := mzml.KindSpectrum, doc.SpectrumIDs()
			if chromatograms {
				kind, ids = mzml.KindChromatogram, doc.ChromatogramIDs()
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s, %s, %d %s records\n",
				doc.Variant(), humanize.IBytes(uint64(doc.Size())), len(ids), kind) //nolint:gosec // sizes are non-negative

			table := tablewriter.NewWriter(w)
			table.SetHeader([]string{"#", "ID", "Offset"})
			table.SetAutoWrapText(false)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			idx := doc.Index()
			for _, id := range ids {
				ordinal, _ := idx.Ordinal(kind, id)
				offset, _ := idx.Offset(kind, id)
				table.Append([]string{strconv.Itoa(ordinal), id, strconv.FormatUint(offset, 10)})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().BoolVar(&chromatograms, "chromatograms", false, "list chromatograms instead of spectra")
	return cmd
}
