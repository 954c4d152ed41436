// Command mzml reads, indexes, validates and extracts mzML documents, local
// or served over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/meigma/mzml/internal/config"
	"github.com/meigma/mzml/ontology"
)

// errReported marks failures whose details were already printed.
var errReported = errors.New("mzml: failed")

type app struct {
	cfg    *config.Config
	logger *slog.Logger
	stderr io.Writer

	configPath string
	logLevel   string
	logFormat  string
	indexFile  string
	reindex    bool

	registry *ontology.Registry
}

func newRootCommand() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "mzml",
		Short:         "Random access to mzML and indexedmzML documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: text or json")
	flags.StringVar(&a.indexFile, "index", "", "persisted index to use instead of the default location")
	flags.BoolVar(&a.reindex, "reindex", false, "ignore embedded and persisted indexes and scan the document")

	cmd.AddCommand(
		newIndexCommand(a),
		newListCommand(a),
		newGetCommand(a),
		newExtractCommand(a),
		newValidateCommand(a),
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Logging.Format = a.logFormat
	}
	a.cfg = cfg
	a.stderr = cmd.ErrOrStderr()
	a.logger = cfg.Logging.Logger(a.stderr)
	return nil
}

// vocabularies returns the registry built from the configuration, creating
// it on first use.
func (a *app) vocabularies() (*ontology.Registry, error) {
	if a.registry != nil {
		return a.registry, nil
	}
	reg, err := a.cfg.Ontology.Registry(a.logger)
	if err != nil {
		return nil, err
	}
	a.registry = reg
	return reg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1) //nolint:gocritic // stop already ran
	}
}
