package facematch

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// EuclideanDistance returns the L2 distance between two embeddings.
// Vectors of different or zero length are infinitely far apart.
func EuclideanDistance(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}
	return floats.Distance(a, b, 2)
}

// RoundDistance rounds a distance to two decimals for reporting.
func RoundDistance(d float64) float64 {
	return math.Round(d*100) / 100
}
