package utils

import "math"

// CosineSimilarity returns the cosine of the angle between two vectors in
// [-1, 1]. Mismatched lengths or a zero vector yield 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// MeanVector returns the element-wise mean of the given vectors, skipping nil
// entries. Returns nil when no usable vector exists.
func MeanVector(vectors [][]float64) []float64 {
	var mean []float64
	count := 0
	for _, v := range vectors {
		if len(v) == 0 {
			continue
		}
		if mean == nil {
			mean = make([]float64, len(v))
		}
		if len(v) != len(mean) {
			continue
		}
		for i := range v {
			mean[i] += v[i]
		}
		count++
	}
	if count == 0 {
		return nil
	}
	for i := range mean {
		mean[i] /= float64(count)
	}
	return mean
}
