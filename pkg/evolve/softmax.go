// Package evolve implements the island-model evolutionary search: an
// append-only population store, similarity-banded clusters, independent
// island sub-populations, and the batched evolution driver that ties them to
// the generation and judging models.
package evolve

import "math"

// Softmax converts raw scores into a normalized distribution, emphasizing
// relative differences while preserving ordering. The maximum is subtracted
// before exponentiating for numerical stability. NaN inputs propagate to NaN
// outputs; callers decide how to treat them.
func Softmax(scores []float64) []float64 {
	if len(scores) == 0 {
		return nil
	}

	max := math.Inf(-1)
	for _, s := range scores {
		if s > max {
			max = s
		}
	}

	exp := make([]float64, len(scores))
	sum := 0.0
	for i, s := range scores {
		exp[i] = math.Exp(s - max)
		if !math.IsNaN(exp[i]) {
			sum += exp[i]
		}
	}

	out := make([]float64, len(scores))
	for i := range exp {
		out[i] = exp[i] / sum
	}
	return out
}
