package util

import (
	"fmt"
	"math"
)

// CosineSimilarity returns the cosine of the angle between two vectors of
// equal length. A zero-magnitude vector has similarity 0 with everything.
func CosineSimilarity(vec1 []float32, vec2 []float32) (float64, error) {
	if len(vec1) == 0 || len(vec2) == 0 {
		return 0, fmt.Errorf("input vectors cannot be empty")
	}
	if len(vec1) != len(vec2) {
		return 0, fmt.Errorf("vector dimensions do not match: %d vs %d", len(vec1), len(vec2))
	}

	var dot, mag1, mag2 float64
	for i := range vec1 {
		a, b := float64(vec1[i]), float64(vec2[i])
		dot += a * b
		mag1 += a * a
		mag2 += b * b
	}
	if mag1 == 0 || mag2 == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(mag1) * math.Sqrt(mag2)), nil
}

// MaxSimilarity returns the highest similarity between vec and any of
// others. Vectors with a mismatched dimension are skipped.
func MaxSimilarity(vec []float32, others [][]float32) float64 {
	best := 0.0
	for _, o := range others {
		s, err := CosineSimilarity(vec, o)
		if err == nil && s > best {
			best = s
		}
	}
	return best
}
