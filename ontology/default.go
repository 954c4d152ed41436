package ontology

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/meigma/mzml/internal/diskcache"
)

// Vocabulary locations used by the default registry.
const (
	PSIMSURL = "https://raw.githubusercontent.com/HUPO-PSI/psi-ms-CV/refs/tags/v4.1.184/psi-ms.obo"
	UOURL    = "https://raw.githubusercontent.com/bio-ontology-research-group/unit-ontology/master/uo.obo"
)

// DefaultCacheDir returns the directory the default registry caches
// vocabularies in: $MZML_ONTOLOGY_CACHE_DIR, or mzml/ontology under the
// user cache directory.
func DefaultCacheDir() string {
	if dir := os.Getenv("MZML_ONTOLOGY_CACHE_DIR"); dir != "" {
		return dir
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "mzml", "ontology")
}

// NewDefaultRegistry returns a registry with the PSI-MS ("MS") and Unit
// Ontology ("UO") vocabularies, fetched over HTTP and cached in cacheDir.
// An empty cacheDir disables caching.
func NewDefaultRegistry(cacheDir string, opts ...Option) *Registry {
	r := NewRegistry(opts...)
	var httpOpts []HTTPOption
	if r.logger != nil {
		httpOpts = append(httpOpts, WithSourceLogger(r.logger))
	}
	if cacheDir != "" {
		if cache, err := diskcache.New(cacheDir); err == nil {
			httpOpts = append(httpOpts, WithCache(cache))
		} else {
			r.log().Warn("vocabulary cache disabled", "dir", cacheDir, "error", err)
		}
	}
	r.Register("MS", NewHTTPSource(PSIMSURL, httpOpts...))
	r.Register("UO", NewHTTPSource(UOURL, httpOpts...))
	return r
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	return NewDefaultRegistry(DefaultCacheDir())
})

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry()
}

// DescendantsOf looks accession up in the process-wide registry.
func DescendantsOf(accession string) (Set, error) {
	return Default().DescendantsOf(accession)
}
