// Package match turns per-frame descriptor observations into stable identity
// labels: nearest-neighbour matching against the registry, a short per-slot
// history to stop label flicker, a per-frame claim set so two faces never
// share one label, and lazy descriptor resolution for portrait-only entries.
package match

import "math"

// EuclideanDistance computes the L2 distance between two descriptors.
// Returns +Inf for mismatched or empty inputs so they can never match.
func EuclideanDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// CosineDistance computes the cosine distance between two vectors.
// Returns a value between 0 (identical) and 2 (opposite); 2.0 for invalid
// input. Selected over EuclideanDistance via MetricByName("cosine") for
// descriptor models that ship unnormalized vectors.
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 2.0
	}

	similarity := dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
	// Clamp to [-1, 1] to handle floating point errors
	if similarity > 1 {
		similarity = 1
	}
	if similarity < -1 {
		similarity = -1
	}

	return 1 - similarity
}
