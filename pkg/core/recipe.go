package core

import "math"

// Recipe is a candidate artifact produced by the generator: the creative
// fields, the normalized ingredient/instruction data, the seven judged
// dimension scores and the derived weighted fitness.
type Recipe struct {
	IslandID     int
	Idea         string
	Essay        string
	Name         string
	Ingredients  []string
	Instructions string

	// Scores holds only the dimensions the judge actually resolved.
	Scores        map[string]float64
	WeightedScore float64

	// Formatted is filled in by the house-style formatter after a run.
	Formatted string
}

// Evaluation is the outcome of judging one candidate. Dimensions the judge
// failed to resolve are simply absent from Scores.
type Evaluation struct {
	Scores        map[string]float64
	WeightedScore float64
	IslandID      int
}

// Complete reports whether every expected dimension resolved to a value and
// the weighted score is a finite number. Incomplete evaluations are dropped
// by registration, never stored half-populated.
func (e Evaluation) Complete(keys []string) bool {
	if math.IsNaN(e.WeightedScore) || math.IsInf(e.WeightedScore, 0) {
		return false
	}
	for _, key := range keys {
		v, ok := e.Scores[key]
		if !ok || math.IsNaN(v) {
			return false
		}
	}
	return true
}
