// Package config loads the mzml command configuration from a YAML file with
// MZML_* environment variable overrides.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/meigma/mzml"
	"github.com/meigma/mzml/ontology"
)

// Config is the top-level command configuration.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Reader   ReaderConfig   `yaml:"reader"`
	Ontology OntologyConfig `yaml:"ontology"`
	Remote   RemoteConfig   `yaml:"remote"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ReaderConfig controls how documents are opened. Workers bounds concurrent
// record reads during validation (< 0 is serial, 0 picks a count from
// GOMAXPROCS). IndexDir, when set, holds persisted indexes instead of the
// directory of each document.
type ReaderConfig struct {
	ChunkSize     int    `yaml:"chunkSize"`
	MaxRecordSize uint64 `yaml:"maxRecordSize"`
	Validate      bool   `yaml:"validate"`
	Workers       int    `yaml:"workers"`
	IndexDir      string `yaml:"indexDir"`
}

// OntologyConfig locates the controlled vocabularies. PSIMS and UO accept an
// http(s) URL or a local file path.
type OntologyConfig struct {
	CacheDir      string `yaml:"cacheDir"`
	MaxCacheBytes int64  `yaml:"maxCacheBytes"`
	PSIMS         string `yaml:"psims"`
	UO            string `yaml:"uo"`
}

// RemoteConfig tunes range-request reads of remote documents.
type RemoteConfig struct {
	BlockSize int64 `yaml:"blockSize"`
	MaxBlocks int   `yaml:"maxBlocks"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // User-provided path is intentional
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
		Reader: ReaderConfig{
			ChunkSize:     mzml.DefaultChunkSize,
			MaxRecordSize: mzml.DefaultMaxRecordSize,
		},
		Ontology: OntologyConfig{
			CacheDir: ontology.DefaultCacheDir(),
			PSIMS:    ontology.PSIMSURL,
			UO:       ontology.UOURL,
		},
		Remote: RemoteConfig{
			BlockSize: 256 << 10,
			MaxBlocks: 64,
		},
	}
}

// applyEnvOverrides reads MZML_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("MZML_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("MZML_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("MZML_CHUNK_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MZML_CHUNK_SIZE: %w", err)
		}
		cfg.Reader.ChunkSize = n
	}
	if v := os.Getenv("MZML_MAX_RECORD_SIZE"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MZML_MAX_RECORD_SIZE: %w", err)
		}
		cfg.Reader.MaxRecordSize = n
	}
	if v := os.Getenv("MZML_VALIDATE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("MZML_VALIDATE: %w", err)
		}
		cfg.Reader.Validate = b
	}
	if v := os.Getenv("MZML_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MZML_WORKERS: %w", err)
		}
		cfg.Reader.Workers = n
	}
	if v := os.Getenv("MZML_INDEX_DIR"); v != "" {
		cfg.Reader.IndexDir = v
	}
	if v := os.Getenv("MZML_ONTOLOGY_CACHE_DIR"); v != "" {
		cfg.Ontology.CacheDir = v
	}
	if v := os.Getenv("MZML_ONTOLOGY_PSIMS"); v != "" {
		cfg.Ontology.PSIMS = v
	}
	if v := os.Getenv("MZML_ONTOLOGY_UO"); v != "" {
		cfg.Ontology.UO = v
	}
	return nil
}

// Logger returns a logger writing to w at the configured level and format.
func (l LoggingConfig) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(l.Level)}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
