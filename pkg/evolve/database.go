package evolve

import (
	"context"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/evolune/funsearch-go/pkg/core"
	"github.com/evolune/funsearch-go/pkg/errors"
	"github.com/evolune/funsearch-go/pkg/logging"
)

// Database owns the set of islands for one run: it drives their concurrent
// bootstrap, the post-bootstrap clustering pass, and cross-island ranking.
type Database struct {
	template  string
	store     *Store
	generator core.Generator
	evaluator core.Evaluator
	islands   []*Island
}

// RankedIsland pairs an island with its softmax-normalized best score.
type RankedIsland struct {
	Island  *Island
	Softmax float64
}

// NewDatabase creates a database over the injected population store and
// model collaborators.
func NewDatabase(template string, store *Store, generator core.Generator, evaluator core.Evaluator) *Database {
	return &Database{
		template:  template,
		store:     store,
		generator: generator,
		evaluator: evaluator,
	}
}

// InitializeIslands constructs numIslands islands, each with a fresh random
// seed, and runs every bootstrap concurrently. Clustering runs sequentially
// after the join barrier so it only ever reads a settled store. An island
// that exhausts its seed attempts is left empty and does not abort the rest.
func (d *Database) InitializeIslands(ctx context.Context, numIslands int, temperature float64, modelName string, maxSeedAttempts int) error {
	logger := logging.GetLogger()

	p := pool.New().WithMaxGoroutines(numIslands)
	for i := 0; i < numIslands; i++ {
		island := NewIsland(i, d.template, d.store, d.generator, d.evaluator)
		d.islands = append(d.islands, island)

		seed := uuid.NewString()
		p.Go(func() {
			if err := island.Initialize(ctx, seed, temperature, modelName, maxSeedAttempts); err != nil {
				logger.Warn(ctx, "Island %d failed to seed: %v", island.ID(), err)
			}
		})
	}
	p.Wait()

	if err := errors.CheckContext(ctx, "island initialization"); err != nil {
		return err
	}

	for _, island := range d.islands {
		island.Cluster()
	}

	logger.Info(ctx, "Initialized %d islands, population size %d", numIslands, d.store.Len())
	return nil
}

// Islands returns all islands in creation order.
func (d *Database) Islands() []*Island {
	return d.islands
}

// BestRecipes returns each island's best-across-clusters recipe, skipping
// islands that never produced one.
func (d *Database) BestRecipes() []*core.Recipe {
	var out []*core.Recipe
	for _, island := range d.islands {
		if best := island.BestFromClusters(); best != nil {
			out = append(out, best)
		}
	}
	return out
}

// RankIslands sorts islands descending by the softmax-normalized score of
// their best-across-clusters recipe; islands without one score zero. The sort
// is stable, so ties keep the original island order.
func (d *Database) RankIslands() []RankedIsland {
	scores := make([]float64, len(d.islands))
	for i, island := range d.islands {
		if best := island.BestFromClusters(); best != nil {
			scores[i] = best.WeightedScore
		}
	}

	dist := Softmax(scores)
	ranked := make([]RankedIsland, len(d.islands))
	for i, island := range d.islands {
		ranked[i] = RankedIsland{Island: island, Softmax: dist[i]}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].Softmax, ranked[j].Softmax
		if math.IsNaN(a) {
			return false
		}
		if math.IsNaN(b) {
			return true
		}
		return a > b
	})

	return ranked
}
