package vectorstore

import (
	"math"
)

// SquaredDistance returns the squared L2 distance between a and b, or +Inf
// when their lengths differ. Accumulation is done in float64.
func SquaredDistance(a, b []float32) float32 {
	if len(a) != len(b) {
		return float32(math.Inf(1))
	}

	var sum float64
	for i := range a {
		diff := float64(a[i]) - float64(b[i])
		sum += diff * diff
	}
	return float32(sum)
}

// SquaredDistanceFromSimilarity converts the cosine similarity of two unit
// vectors into their squared L2 distance, in [0, 4].
func SquaredDistanceFromSimilarity(similarity float32) float32 {
	return 2 - 2*similarity
}

// Relevance maps a squared L2 distance to a percentage rounded to two
// decimals. Values are not clamped, so distances above 2 go negative.
func Relevance(distance float32) float64 {
	score := 100 * (1 - float64(distance)/2)
	return math.Round(score*100) / 100
}

// NormalizeVector returns a unit-length copy of v. Zero vectors are returned as is.
func NormalizeVector(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}

	inv := 1 / math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}
