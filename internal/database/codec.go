package database

import (
	"encoding/binary"
	"fmt"
	"math"
)

// bytesPerElement is the width of one encoded embedding element (float64).
const bytesPerElement = 8

// EncodeEmbedding packs a vector into the flat little-endian float64 blob stored per student.
func EncodeEmbedding(v []float64) []byte {
	buf := make([]byte, len(v)*bytesPerElement)
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*bytesPerElement:], math.Float64bits(f))
	}
	return buf
}

// DecodeEmbedding unpacks a blob produced by EncodeEmbedding.
// dim is the expected number of elements; a blob of any other length is rejected
// rather than decoded into a truncated or padded vector.
func DecodeEmbedding(b []byte, dim int) ([]float64, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: non-positive dimension %d", ErrInvalidEncoding, dim)
	}
	if len(b) != dim*bytesPerElement {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidEncoding, len(b), dim*bytesPerElement)
	}

	v := make([]float64, dim)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*bytesPerElement:]))
	}
	return v, nil
}
