package mzml

import (
	"fmt"
	"io"
	"os"

	"github.com/meigma/mzml/internal/index"
	"github.com/meigma/mzml/internal/write"
)

// BuildIndex scans src and returns an index stamped with its fingerprint,
// suitable for SaveIndex and later reuse through WithIndex. chunkSize <= 0
// selects DefaultChunkSize.
func BuildIndex(src ByteSource, chunkSize int) (*Index, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	idx, _, err := index.Build(io.NewSectionReader(src, 0, src.Size()), chunkSize)
	if err != nil {
		return nil, fmt.Errorf("scan index: %w", err)
	}
	return index.Stamp(idx, src, src.Size())
}

// StampIndex returns a copy of idx bound to the current content of src.
func StampIndex(idx *Index, src ByteSource) (*Index, error) {
	return index.Stamp(idx, src, src.Size())
}

// LoadIndex decodes an index produced by Index.MarshalBinary.
func LoadIndex(data []byte) (*Index, error) {
	return index.Load(data)
}

// LoadIndexFile reads a persisted index from path.
func LoadIndexFile(path string) (*Index, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided path is intentional
	if err != nil {
		return nil, fmt.Errorf("read index file: %w", err)
	}
	return index.Load(data)
}

// SaveIndex writes idx to path, replacing any existing file atomically.
// Parent directories are created as needed.
func SaveIndex(path string, idx *Index) error {
	data, err := idx.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	if err := write.Bytes(path, 0o600, data); err != nil {
		return fmt.Errorf("write index file: %w", err)
	}
	return nil
}

// IndexPath returns the default persisted index path for a document.
func IndexPath(docPath string) string {
	return docPath + DefaultIndexSuffix
}
