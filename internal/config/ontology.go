package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/meigma/mzml/internal/diskcache"
	"github.com/meigma/mzml/ontology"
)

// Registry builds a vocabulary registry from the configured locations.
func (o OntologyConfig) Registry(logger *slog.Logger) (*ontology.Registry, error) {
	httpOpts := []ontology.HTTPOption{ontology.WithSourceLogger(logger)}
	if o.CacheDir != "" {
		var cacheOpts []diskcache.Option
		if o.MaxCacheBytes > 0 {
			cacheOpts = append(cacheOpts, diskcache.WithMaxBytes(o.MaxCacheBytes))
		}
		cache, err := diskcache.New(o.CacheDir, cacheOpts...)
		if err != nil {
			return nil, fmt.Errorf("ontology cache: %w", err)
		}
		httpOpts = append(httpOpts, ontology.WithCache(cache))
	}

	r := ontology.NewRegistry(ontology.WithLogger(logger))
	r.Register("MS", source(o.PSIMS, httpOpts))
	r.Register("UO", source(o.UO, httpOpts))
	return r, nil
}

func source(location string, opts []ontology.HTTPOption) ontology.Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return ontology.NewHTTPSource(location, opts...)
	}
	return ontology.FileSource(strings.TrimPrefix(location, "file://"))
}
