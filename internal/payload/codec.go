// Package payload decodes and encodes mzML binary data arrays.
//
// An array is base64 text, optionally zlib compressed, holding little-endian
// 32- or 64-bit values. Compression and value type are declared by cvParam
// accessions on the array element.
package payload

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"
	"math"
	"strings"
	"sync"

	"github.com/klauspost/compress/zlib"

	"github.com/meigma/mzml/internal/sizing"
)

// Sentinel errors for payload decoding.
var (
	// ErrCompressionUndeclared is returned when no compression term is declared.
	ErrCompressionUndeclared = errors.New("mzml: compression undeclared")

	// ErrUnknownCodec is returned when the declared compression is not supported.
	ErrUnknownCodec = errors.New("mzml: unknown codec")

	// ErrDataTypeUndeclared is returned when no binary data type term is declared.
	ErrDataTypeUndeclared = errors.New("mzml: binary data type undeclared")

	// ErrUnknownDataType is returned when the declared data type is not supported.
	ErrUnknownDataType = errors.New("mzml: unknown binary data type")

	// ErrPayloadSize is returned when decoded bytes are not a multiple of the value width.
	ErrPayloadSize = errors.New("mzml: payload length is not a multiple of value width")

	// ErrDecompression is returned when a payload fails to inflate.
	ErrDecompression = errors.New("mzml: decompression failed")

	// ErrPayloadTooLarge is returned when an inflated payload exceeds the codec limit.
	ErrPayloadTooLarge = errors.New("mzml: inflated payload exceeds size limit")
)

// Compression is the accession of a binary data compression type.
type Compression string

// Supported compression types.
const (
	CompressionNone Compression = "MS:1000576"
	CompressionZlib Compression = "MS:1000574"
)

// compressionFamily holds every compression accession the reader recognizes as
// a declaration, including ones it cannot decode.
var compressionFamily = map[string]struct{}{
	string(CompressionNone): {},
	string(CompressionZlib): {},
	"MS:1002312":            {}, // MS-Numpress linear prediction
	"MS:1002313":            {}, // MS-Numpress positive integer
	"MS:1002314":            {}, // MS-Numpress short logged float
	"MS:1002746":            {}, // numpress linear + zlib
	"MS:1002747":            {}, // numpress pic + zlib
	"MS:1002748":            {}, // numpress slof + zlib
	"MS:1003088":            {}, // truncation + zlib
	"MS:1003089":            {}, // truncation, linear prediction + zlib
	"MS:1003090":            {}, // truncation, delta prediction + zlib
}

// DataType is the accession of a binary data type.
type DataType string

// Supported value types.
const (
	Float32 DataType = "MS:1000521"
	Float64 DataType = "MS:1000523"
	Int32   DataType = "MS:1000519"
	Int64   DataType = "MS:1000522"
)

var dataTypeFamily = map[string]struct{}{
	string(Float32): {},
	string(Float64): {},
	string(Int32):   {},
	string(Int64):   {},
	"MS:1001479":    {}, // null-terminated ASCII string
}

// Width returns the byte width of one value, or 0 for unsupported types.
func (t DataType) Width() int {
	switch t {
	case Float32, Int32:
		return 4
	case Float64, Int64:
		return 8
	default:
		return 0
	}
}

// Declared scans accessions for the compression and data type declarations.
// Either result is empty when the corresponding term is absent.
func Declared(accessions iter.Seq[string]) (Compression, DataType) {
	var c Compression
	var t DataType
	for acc := range accessions {
		if _, ok := compressionFamily[acc]; ok && c == "" {
			c = Compression(acc)
		}
		if _, ok := dataTypeFamily[acc]; ok && t == "" {
			t = DataType(acc)
		}
	}
	return c, t
}

// DefaultMaxInflated is the default limit on inflated payload size (1 GiB).
const DefaultMaxInflated = 1 << 30

// Codec decodes and encodes binary arrays. The zero value is not usable; use
// NewCodec. A Codec is safe for concurrent use.
type Codec struct {
	readers     sync.Pool
	maxInflated uint64
}

// NewCodec returns a codec that refuses to inflate more than maxInflated bytes.
// A maxInflated of 0 selects DefaultMaxInflated.
func NewCodec(maxInflated uint64) *Codec {
	if maxInflated == 0 {
		maxInflated = DefaultMaxInflated
	}
	return &Codec{maxInflated: maxInflated}
}

var defaultCodec = NewCodec(0)

// Decode decodes text with the default codec.
func Decode(text string, c Compression, t DataType) ([]float64, error) {
	return defaultCodec.Decode(text, c, t)
}

// Encode encodes values with the default codec.
func Encode(values []float64, c Compression, t DataType) (string, error) {
	return defaultCodec.Encode(values, c, t)
}

// Decode base64-decodes text, inflates it when c is CompressionZlib and
// converts the result to float64 values of type t.
func (cd *Codec) Decode(text string, c Compression, t DataType) ([]float64, error) {
	if c == "" {
		return nil, ErrCompressionUndeclared
	}
	if c != CompressionNone && c != CompressionZlib {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCodec, c)
	}
	if t == "" {
		return nil, ErrDataTypeUndeclared
	}
	width := t.Width()
	if width == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDataType, t)
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	if c == CompressionZlib {
		raw, err = cd.inflate(raw)
		if err != nil {
			return nil, err
		}
	}
	if len(raw)%width != 0 {
		return nil, fmt.Errorf("%w: %d bytes, width %d", ErrPayloadSize, len(raw), width)
	}

	values := make([]float64, len(raw)/width)
	for i := range values {
		chunk := raw[i*width : (i+1)*width]
		switch t {
		case Float32:
			values[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(chunk)))
		case Float64:
			values[i] = math.Float64frombits(binary.LittleEndian.Uint64(chunk))
		case Int32:
			values[i] = float64(int32(binary.LittleEndian.Uint32(chunk))) //nolint:gosec // two's complement reinterpretation
		case Int64:
			values[i] = float64(int64(binary.LittleEndian.Uint64(chunk))) //nolint:gosec // two's complement reinterpretation
		}
	}
	return values, nil
}

// Encode converts values to type t, deflates them when c is CompressionZlib
// and returns the base64 text.
func (cd *Codec) Encode(values []float64, c Compression, t DataType) (string, error) {
	if c != CompressionNone && c != CompressionZlib {
		return "", fmt.Errorf("%w: %q", ErrUnknownCodec, c)
	}
	width := t.Width()
	if width == 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownDataType, t)
	}

	raw := make([]byte, len(values)*width)
	for i, v := range values {
		chunk := raw[i*width : (i+1)*width]
		switch t {
		case Float32:
			binary.LittleEndian.PutUint32(chunk, math.Float32bits(float32(v)))
		case Float64:
			binary.LittleEndian.PutUint64(chunk, math.Float64bits(v))
		case Int32:
			binary.LittleEndian.PutUint32(chunk, uint32(int32(v))) //nolint:gosec // caller supplies in-range values
		case Int64:
			binary.LittleEndian.PutUint64(chunk, uint64(int64(v))) //nolint:gosec // caller supplies in-range values
		}
	}

	if c == CompressionZlib {
		var buf bytes.Buffer
		zw := zlib.NewWriter(&buf)
		if _, err := zw.Write(raw); err != nil {
			return "", fmt.Errorf("deflate: %w", err)
		}
		if err := zw.Close(); err != nil {
			return "", fmt.Errorf("deflate: %w", err)
		}
		raw = buf.Bytes()
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func (cd *Codec) inflate(raw []byte) ([]byte, error) {
	zr, release, err := cd.reader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecompression, err)
	}
	defer release()

	out, err := sizing.ReadAllWithLimit(zr, cd.maxInflated, ErrPayloadTooLarge)
	if err != nil {
		if errors.Is(err, ErrPayloadTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrDecompression, err)
	}
	return out, nil
}

// reader returns a zlib reader over r and a release function that returns
// it to the pool.
func (cd *Codec) reader(r io.Reader) (io.ReadCloser, func(), error) {
	if v := cd.readers.Get(); v != nil {
		if zr, ok := v.(io.ReadCloser); ok {
			if resetter, ok := zr.(zlib.Resetter); ok && resetter.Reset(r, nil) == nil {
				return zr, func() { cd.readers.Put(zr) }, nil
			}
		}
	}
	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, nil, err
	}
	return zr, func() { cd.readers.Put(zr) }, nil
}
