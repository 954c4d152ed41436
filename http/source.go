// Package http provides a ByteSource backed by HTTP range requests, so remote
// mzML documents can be opened without downloading them.
//
// Reads are aligned to fixed-size blocks and the most recently used blocks
// are kept in memory. Index scans and record reads issue many small reads
// over neighboring bytes; the block cache turns them into a few range
// requests.
package http

import (
	"container/list"
	"errors"
	"fmt"
	"io"
	"log/slog"
	nethttp "net/http"
	"strconv"
	"strings"
	"sync"
)

// Defaults for the block cache.
const (
	DefaultBlockSize = 256 << 10
	DefaultMaxBlocks = 64
)

var (
	// ErrRangeUnsupported is returned when the server ignores range requests.
	ErrRangeUnsupported = errors.New("mzml: range requests not supported")

	// ErrSourceChanged is returned when the remote content changed after the
	// source was opened.
	ErrSourceChanged = errors.New("mzml: remote content changed")
)

// Source implements random access reads via HTTP range requests.
// It satisfies mzml.ByteSource and is safe for concurrent use.
type Source struct {
	url          string
	client       *nethttp.Client
	headers      nethttp.Header
	logger       *slog.Logger
	size         int64
	etag         string
	lastModified string

	blockSize int64
	maxBlocks int

	mu     sync.Mutex
	blocks map[int64]*list.Element
	lru    *list.List
}

type block struct {
	index int64
	data  []byte
}

// Option configures a Source.
type Option func(*Source)

// WithClient sets the HTTP client used for requests.
func WithClient(client *nethttp.Client) Option {
	return func(s *Source) {
		s.client = client
	}
}

// WithHeaders sets additional headers on each request.
func WithHeaders(headers nethttp.Header) Option {
	return func(s *Source) {
		if headers == nil {
			return
		}
		s.headers = headers.Clone()
	}
}

// WithHeader sets a single header on each request.
func WithHeader(key, value string) Option {
	return func(s *Source) {
		if s.headers == nil {
			s.headers = make(nethttp.Header)
		}
		s.headers.Set(key, value)
	}
}

// WithBlockSize sets the size of each cached block. Values <= 0 select
// DefaultBlockSize.
func WithBlockSize(n int64) Option {
	return func(s *Source) {
		s.blockSize = n
	}
}

// WithMaxBlocks sets how many blocks are kept in memory. Zero disables the
// cache; every read then issues exactly one range request.
func WithMaxBlocks(n int) Option {
	return func(s *Source) {
		s.maxBlocks = n
	}
}

// WithLogger sets the logger for range requests.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		s.logger = logger
	}
}

// NewSource creates a Source backed by HTTP range requests.
// It probes the remote to determine the content size.
func NewSource(url string, opts ...Option) (*Source, error) {
	s := &Source{
		url:       url,
		client:    nethttp.DefaultClient,
		blockSize: DefaultBlockSize,
		maxBlocks: DefaultMaxBlocks,
		blocks:    make(map[int64]*list.Element),
		lru:       list.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = nethttp.DefaultClient
	}
	if s.blockSize <= 0 {
		s.blockSize = DefaultBlockSize
	}

	size, etag, lastModified, err := s.fetchMetadata()
	if err != nil {
		return nil, err
	}
	s.size = size
	s.etag = etag
	s.lastModified = lastModified
	s.log().Debug("remote source opened",
		slog.String("url", url),
		slog.Int64("size", size),
		slog.String("etag", etag))
	return s, nil
}

func (s *Source) log() *slog.Logger {
	if s.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.logger
}

// Size returns the total size of the remote content.
func (s *Source) Size() int64 {
	return s.size
}

// SourceID identifies the remote content by URL and, when the server
// provides one, its ETag.
func (s *Source) SourceID() string {
	if s.etag == "" {
		return s.url
	}
	return s.url + "#" + strings.Trim(s.etag, `"`)
}

// ReadAt reads data from the remote at the given offset.
func (s *Source) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off < 0 {
		return 0, fmt.Errorf("read at %d: negative offset", off)
	}
	if off >= s.size {
		return 0, io.EOF
	}
	if s.maxBlocks <= 0 {
		return s.readRange(p, off)
	}

	n := 0
	for n < len(p) && off+int64(n) < s.size {
		pos := off + int64(n)
		b, err := s.block(pos / s.blockSize)
		if err != nil {
			return n, err
		}
		n += copy(p[n:], b[pos%s.blockSize:])
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// block returns the cached block with the given index, fetching it on a miss.
func (s *Source) block(index int64) ([]byte, error) {
	s.mu.Lock()
	if el, ok := s.blocks[index]; ok {
		s.lru.MoveToFront(el)
		data := el.Value.(*block).data //nolint:forcetypeassert // the list only holds blocks
		s.mu.Unlock()
		return data, nil
	}
	s.mu.Unlock()

	start := index * s.blockSize
	buf := make([]byte, min(s.blockSize, s.size-start))
	if _, err := s.readRange(buf, start); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.blocks[index]; ok {
		return el.Value.(*block).data, nil //nolint:forcetypeassert // the list only holds blocks
	}
	s.blocks[index] = s.lru.PushFront(&block{index: index, data: buf})
	for s.lru.Len() > s.maxBlocks {
		oldest := s.lru.Back()
		s.lru.Remove(oldest)
		delete(s.blocks, oldest.Value.(*block).index) //nolint:forcetypeassert // the list only holds blocks
	}
	return buf, nil
}

// readRange issues one range request for p at off.
func (s *Source) readRange(p []byte, off int64) (int, error) {
	end := off + int64(len(p)) - 1
	expected := len(p)
	if end >= s.size {
		end = s.size - 1
		expected = int(end - off + 1)
	}

	req, err := s.newRequest(nethttp.MethodGet)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", off, end))

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
	s.log().Debug("range request", slog.Int64("offset", off), slog.Int64("end", end), slog.Int("status", resp.StatusCode))

	switch resp.StatusCode {
	case nethttp.StatusPartialContent:
		// ok
	case nethttp.StatusRequestedRangeNotSatisfiable:
		return 0, io.EOF
	case nethttp.StatusPreconditionFailed:
		return 0, fmt.Errorf("%w: %s", ErrSourceChanged, s.url)
	case nethttp.StatusOK:
		return 0, ErrRangeUnsupported
	default:
		return 0, fmt.Errorf("range request failed: %s", resp.Status)
	}

	n, err := io.ReadFull(resp.Body, p[:expected])
	if err != nil {
		return n, err
	}
	if expected < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (s *Source) fetchMetadata() (int64, string, string, error) {
	size := int64(-1)
	etag := ""
	lastModified := ""

	if resp, err := s.doHead(); err == nil {
		size = resp.ContentLength
		etag = resp.Header.Get("ETag")
		lastModified = resp.Header.Get("Last-Modified")
		resp.Body.Close()
	}

	rangeSize, rangeETag, rangeLastModified, err := s.rangeProbe()
	if err != nil {
		return 0, "", "", err
	}
	if size > 0 && size != rangeSize {
		return 0, "", "", fmt.Errorf("content size mismatch: head=%d range=%d", size, rangeSize)
	}
	if etag == "" {
		etag = rangeETag
	}
	if lastModified == "" {
		lastModified = rangeLastModified
	}
	return rangeSize, etag, lastModified, nil
}

func (s *Source) rangeProbe() (int64, string, string, error) {
	req, err := s.newRequest(nethttp.MethodGet)
	if err != nil {
		return 0, "", "", err
	}
	req.Header.Set("Range", "bytes=0-0")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, "", "", err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != nethttp.StatusPartialContent {
		if resp.StatusCode == nethttp.StatusOK {
			return 0, "", "", ErrRangeUnsupported
		}
		return 0, "", "", fmt.Errorf("range probe failed: %s", resp.Status)
	}

	crange := resp.Header.Get("Content-Range")
	if crange == "" {
		return 0, "", "", errors.New("range probe missing Content-Range")
	}
	size, err := parseContentRange(crange)
	if err != nil {
		return 0, "", "", err
	}

	return size, resp.Header.Get("ETag"), resp.Header.Get("Last-Modified"), nil
}

func (s *Source) doHead() (*nethttp.Response, error) {
	req, err := s.newRequest(nethttp.MethodHead)
	if err != nil {
		return nil, err
	}
	return s.client.Do(req)
}

func (s *Source) newRequest(method string) (*nethttp.Request, error) {
	req, err := nethttp.NewRequest(method, s.url, nil)
	if err != nil {
		return nil, err
	}
	for key, values := range s.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	// Byte ranges must address the identity encoding.
	if req.Header.Get("Accept-Encoding") == "" {
		req.Header.Set("Accept-Encoding", "identity")
	}
	if method == nethttp.MethodGet {
		if s.etag != "" && req.Header.Get("If-Match") == "" {
			req.Header.Set("If-Match", s.etag)
		}
		if s.lastModified != "" && req.Header.Get("If-Unmodified-Since") == "" {
			req.Header.Set("If-Unmodified-Since", s.lastModified)
		}
	}
	return req, nil
}

func parseContentRange(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, "bytes ") {
		return 0, fmt.Errorf("invalid Content-Range %q", value)
	}
	parts := strings.SplitN(strings.TrimPrefix(value, "bytes "), "/", 2)
	if len(parts) != 2 || parts[1] == "*" {
		return 0, fmt.Errorf("invalid Content-Range %q", value)
	}
	size, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || size < 0 {
		return 0, fmt.Errorf("invalid Content-Range %q", value)
	}
	return size, nil
}
