package similarity

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch indicates the two vectors have different lengths.
// This is a programmer error and is reported immediately rather than
// silently truncating the longer vector.
var ErrDimensionMismatch = errors.New("vector dimensions do not match")

// Cosine returns the cosine similarity of a and b in [-1, 1]. A zero
// vector has no direction, so similarity against one is defined as 0.
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
