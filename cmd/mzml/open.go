package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/meigma/mzml"
	mzmlhttp "github.com/meigma/mzml/http"
	"github.com/meigma/mzml/validation"
)

// document is an open reader plus whatever must be released with it.
type document struct {
	*mzml.Reader
	close func() error
}

func (d *document) Close() error {
	if d.close == nil {
		return nil
	}
	return d.close()
}

func isRemote(target string) bool {
	return strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")
}

// indexPath returns where the persisted index of a local document lives.
func (a *app) indexPath(target string) string {
	if a.indexFile != "" {
		return a.indexFile
	}
	if a.cfg.Reader.IndexDir != "" {
		return filepath.Join(a.cfg.Reader.IndexDir, filepath.Base(mzml.IndexPath(target)))
	}
	return mzml.IndexPath(target)
}

func (a *app) readerOptions() ([]mzml.Option, error) {
	opts := []mzml.Option{
		mzml.WithChunkSize(a.cfg.Reader.ChunkSize),
		mzml.WithMaxRecordSize(a.cfg.Reader.MaxRecordSize),
		mzml.WithWorkers(a.cfg.Reader.Workers),
		mzml.WithLogger(a.logger),
	}
	if a.reindex {
		opts = append(opts, mzml.WithReindex())
	}
	if a.cfg.Reader.Validate {
		reg, err := a.vocabularies()
		if err != nil {
			return nil, err
		}
		opts = append(opts, mzml.WithValidation(validation.New(reg)), mzml.WithRecordValidation())
	}
	return opts, nil
}

// persistedIndex loads the index saved for target, if any. A missing file is
// not an error; an explicit --index that cannot be read is.
func (a *app) persistedIndex(target string) (*mzml.Index, error) {
	if a.reindex || (isRemote(target) && a.indexFile == "") {
		return nil, nil
	}
	path := a.indexPath(target)
	idx, err := mzml.LoadIndexFile(path)
	switch {
	case err == nil:
		a.logger.Debug("using persisted index", slog.String("path", path))
		return idx, nil
	case errors.Is(err, os.ErrNotExist) && a.indexFile == "":
		return nil, nil
	default:
		return nil, fmt.Errorf("load index %s: %w", path, err)
	}
}

// open opens target, a local path or an http(s) URL. A persisted index that
// no longer matches the document is ignored with a warning.
func (a *app) open(target string) (*document, error) {
	opts, err := a.readerOptions()
	if err != nil {
		return nil, err
	}
	idx, err := a.persistedIndex(target)
	if err != nil {
		return nil, err
	}

	doc, err := a.openWith(target, idx, opts)
	if errors.Is(err, mzml.ErrStaleIndex) && a.indexFile == "" {
		a.logger.Warn("persisted index is stale, rescanning", slog.String("path", a.indexPath(target)))
		doc, err = a.openWith(target, nil, opts)
	}
	return doc, err
}

func (a *app) openWith(target string, idx *mzml.Index, opts []mzml.Option) (*document, error) {
	if idx != nil {
		opts = append(opts[:len(opts):len(opts)], mzml.WithIndex(idx))
	}
	if !isRemote(target) {
		f, err := mzml.OpenFile(target, opts...)
		if err != nil {
			return nil, err
		}
		return &document{Reader: f.Reader, close: f.Close}, nil
	}

	src, err := mzmlhttp.NewSource(target,
		mzmlhttp.WithBlockSize(a.cfg.Remote.BlockSize),
		mzmlhttp.WithMaxBlocks(a.cfg.Remote.MaxBlocks),
		mzmlhttp.WithLogger(a.logger))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", target, err)
	}
	r, err := mzml.Open(src, opts...)
	if err != nil {
		return nil, err
	}
	return &document{Reader: r}, nil
}
