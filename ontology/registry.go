package ontology

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Registry maps namespace prefixes to vocabularies. Each vocabulary is
// loaded at most once; every caller, including concurrent ones, sees the
// same graph or the same failure.
type Registry struct {
	mu     sync.RWMutex
	loads  map[string]func() (*Graph, error)
	logger *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger for vocabulary loads.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{loads: make(map[string]func() (*Graph, error))}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) log() *slog.Logger {
	if r.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.logger
}

// Register binds prefix to src. Registering a prefix again replaces the
// binding for later lookups; graphs already handed out stay valid.
func (r *Registry) Register(prefix string, src Source) {
	load := sync.OnceValues(func() (*Graph, error) {
		start := time.Now()
		g, err := load(src)
		if err != nil {
			r.log().Warn("vocabulary load failed", "prefix", prefix, "source", src.String(), "error", err)
			return nil, fmt.Errorf("%w: %s from %s: %w", ErrOntologyUnavailable, prefix, src, err)
		}
		r.log().Info("vocabulary loaded",
			"prefix", prefix,
			"source", src.String(),
			"terms", g.Len(),
			"version", g.Version(),
			"duration", time.Since(start))
		return g, nil
	})

	r.mu.Lock()
	r.loads[prefix] = load
	r.mu.Unlock()
}

func load(src Source) (*Graph, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, err
	}
	g, parseErr := ParseOBO(rc)
	closeErr := rc.Close()
	if parseErr != nil {
		return nil, parseErr
	}
	return g, closeErr
}

// Registered reports whether prefix has a vocabulary.
func (r *Registry) Registered(prefix string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.loads[prefix]
	return ok
}

// Graph returns the vocabulary registered for prefix, loading it on first use.
func (r *Registry) Graph(prefix string) (*Graph, error) {
	r.mu.RLock()
	load, ok := r.loads[prefix]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNamespace, prefix)
	}
	return load()
}

// DescendantsOf returns the transitive is_a descendants of accession within
// the vocabulary selected by its prefix.
func (r *Registry) DescendantsOf(accession string) (Set, error) {
	g, err := r.Graph(Prefix(accession))
	if err != nil {
		return nil, err
	}
	return g.DescendantsOf(accession), nil
}

// Known reports whether accession is defined by its vocabulary.
func (r *Registry) Known(accession string) (bool, error) {
	g, err := r.Graph(Prefix(accession))
	if err != nil {
		return false, err
	}
	return g.Has(accession), nil
}

// IsUnavailable reports whether err came from a failed vocabulary load.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrOntologyUnavailable)
}
