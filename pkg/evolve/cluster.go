package evolve

import (
	"math"

	"github.com/evolune/funsearch-go/pkg/core"
)

// similarityThreshold is the fitness band a cluster accepts around its
// representative score.
const similarityThreshold = 0.5

type member struct {
	recipe *core.Recipe
	score  float64
}

// Cluster groups recipes whose weighted scores fall within a narrow band of
// the representative score. The representative is frozen at creation and
// never recalculated as members arrive, even when later additions drift away
// from it; membership always compares against the original value.
type Cluster struct {
	score   float64
	members []member
}

// NewCluster seeds a cluster with its first recipe; that recipe's score
// becomes the representative.
func NewCluster(score float64, recipe *core.Recipe) *Cluster {
	return &Cluster{
		score:   score,
		members: []member{{recipe: recipe, score: score}},
	}
}

// Score returns the representative score of this cluster.
func (c *Cluster) Score() float64 {
	return c.score
}

// Admit reports whether a recipe with the given score belongs in this
// cluster.
func (c *Cluster) Admit(score float64) bool {
	return math.Abs(c.score-score) < similarityThreshold
}

// Add appends a recipe to the cluster.
func (c *Cluster) Add(recipe *core.Recipe, score float64) {
	c.members = append(c.members, member{recipe: recipe, score: score})
}

// Len returns the number of member recipes.
func (c *Cluster) Len() int {
	return len(c.members)
}

// Best returns the member with the highest softmax-normalized score, plus
// that member's raw score. The softmax distribution is computed in full even
// though its argmax matches the raw argmax; NaN entries never win, and a
// degenerate set falls back to the first member.
func (c *Cluster) Best() (*core.Recipe, float64) {
	if len(c.members) == 0 {
		return nil, math.Inf(-1)
	}

	scores := make([]float64, len(c.members))
	for i, m := range c.members {
		scores[i] = m.score
	}
	dist := Softmax(scores)

	bestIdx := -1
	bestVal := math.Inf(-1)
	for i, v := range dist {
		if !math.IsNaN(v) && v > bestVal {
			bestIdx = i
			bestVal = v
		}
	}
	if bestIdx < 0 {
		bestIdx = 0
	}

	return c.members[bestIdx].recipe, c.members[bestIdx].score
}
