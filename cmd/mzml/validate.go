package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/meigma/mzml/validation"
)

var (
	passColor = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	ruleColor = color.New(color.FgYellow)
)

func newValidateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate DOCUMENT",
		Short: "Check every element against the controlled vocabulary rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.vocabularies()
			if err != nil {
				return err
			}
			// The shell and records are checked below, all violations at once.
			a.cfg.Reader.Validate = false
			doc, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer doc.Close()

			w := cmd.OutOrStdout()
			err = doc.Validate(cmd.Context(), validation.New(reg))
			if err == nil {
				passColor.Fprint(w, "PASS")
				fmt.Fprintf(w, " %s: %d spectra, %d chromatograms\n",
					args[0], len(doc.SpectrumIDs()), len(doc.ChromatogramIDs()))
				return nil
			}

			failures := validationErrors(err)
			if len(failures) == 0 {
				return err
			}
			for _, f := range failures {
				report(w, f)
			}
			failColor.Fprint(w, "FAIL")
			fmt.Fprintf(w, " %s: %d elements with violations\n", args[0], len(failures))
			return errReported
		},
	}
}

// validationErrors flattens err into its validation failures. It returns
// nil if err holds anything else.
func validationErrors(err error) []*validation.Error {
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok { //nolint:errorlint // flattening a join
		errs = joined.Unwrap()
	}
	out := make([]*validation.Error, 0, len(errs))
	for _, e := range errs {
		var verr *validation.Error
		if !errors.As(e, &verr) {
			return nil
		}
		out = append(out, verr)
	}
	return out
}

func report(w io.Writer, e *validation.Error) {
	failColor.Fprint(w, "✗ ")
	fmt.Fprintln(w, e.Element)
	for _, v := range e.Violations {
		ruleColor.Fprintf(w, "    [%s] ", v.Rule)
		fmt.Fprintln(w, v)
	}
}
