package ontology

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	nethttp "net/http"
	"os"
	"time"

	"github.com/opencontainers/go-digest"
	"golang.org/x/sync/singleflight"

	"github.com/meigma/mzml/internal/diskcache"
	"github.com/meigma/mzml/internal/sizing"
)

// Source supplies the OBO text of one vocabulary.
type Source interface {
	// Open returns a reader over the OBO document. The caller closes it.
	Open() (io.ReadCloser, error)
	// String names the source in logs and errors.
	String() string
}

// fetches deduplicates concurrent downloads of the same URL across all
// registries in the process.
var fetches singleflight.Group

// DefaultMaxDocumentSize bounds a downloaded vocabulary (64 MiB).
const DefaultMaxDocumentSize = 64 << 20

// HTTPSource downloads a vocabulary over HTTP, optionally through a disk cache.
type HTTPSource struct {
	url     string
	client  *nethttp.Client
	cache   *diskcache.Cache
	maxSize uint64
	logger  *slog.Logger
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient sets the client used for downloads.
func WithHTTPClient(client *nethttp.Client) HTTPOption {
	return func(s *HTTPSource) {
		s.client = client
	}
}

// WithCache stores downloads in cache and serves later opens from it.
func WithCache(cache *diskcache.Cache) HTTPOption {
	return func(s *HTTPSource) {
		s.cache = cache
	}
}

// WithMaxDocumentSize bounds the size of a downloaded document.
func WithMaxDocumentSize(n uint64) HTTPOption {
	return func(s *HTTPSource) {
		s.maxSize = n
	}
}

// WithSourceLogger sets the logger for download events.
func WithSourceLogger(logger *slog.Logger) HTTPOption {
	return func(s *HTTPSource) {
		s.logger = logger
	}
}

// NewHTTPSource returns a source that downloads url.
func NewHTTPSource(url string, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		url:     url,
		client:  &nethttp.Client{Timeout: 2 * time.Minute},
		maxSize: DefaultMaxDocumentSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = nethttp.DefaultClient
	}
	return s
}

func (s *HTTPSource) log() *slog.Logger {
	if s.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.logger
}

// String returns the URL.
func (s *HTTPSource) String() string {
	return s.url
}

// Open returns the cached document when present, otherwise downloads it.
func (s *HTTPSource) Open() (io.ReadCloser, error) {
	key := digest.FromString(s.url)
	if s.cache != nil {
		if f, ok := s.cache.Get(key); ok {
			s.log().Debug("vocabulary cache hit", "url", s.url)
			return f, nil
		}
	}

	v, err, shared := fetches.Do(s.url, func() (any, error) {
		return s.download()
	})
	if err != nil {
		return nil, err
	}
	data, _ := v.([]byte) //nolint:errcheck // download returns []byte
	s.log().Debug("vocabulary downloaded", "url", s.url, "bytes", len(data), "shared", shared)

	if s.cache != nil {
		if err := s.cache.Put(key, bytes.NewReader(data)); err != nil {
			s.log().Warn("vocabulary cache write failed", "url", s.url, "error", err)
		}
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *HTTPSource) download() ([]byte, error) {
	resp, err := s.client.Get(s.url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != nethttp.StatusOK {
		return nil, fmt.Errorf("fetch %s: %s", s.url, resp.Status)
	}
	return sizing.ReadAllWithLimit(resp.Body, s.maxSize, fmt.Errorf("fetch %s: document exceeds %d bytes", s.url, s.maxSize))
}

// FileSource reads a vocabulary from a local file.
type FileSource string

// Open opens the file.
func (p FileSource) Open() (io.ReadCloser, error) {
	return os.Open(string(p))
}

func (p FileSource) String() string {
	return "file:" + string(p)
}

// BytesSource serves a vocabulary held in memory.
type BytesSource struct {
	Name string
	Data []byte
}

// Open returns a reader over the data.
func (b BytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b.Data)), nil
}

func (b BytesSource) String() string {
	return b.Name
}
