package evolve

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/evolune/funsearch-go/pkg/core"
	"github.com/evolune/funsearch-go/pkg/errors"
	"github.com/evolune/funsearch-go/pkg/logging"
	"github.com/evolune/funsearch-go/pkg/scoring"
)

// DefaultMaxSeedAttempts caps how often an island retries to produce its
// first valid recipe before it gives up and contributes nothing.
const DefaultMaxSeedAttempts = 100

// RejectReason explains why a registration was dropped.
type RejectReason int

const (
	ReasonNone RejectReason = iota
	ReasonMissingFields
	ReasonIncompleteScores
)

func (r RejectReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonMissingFields:
		return "missing_fields"
	case ReasonIncompleteScores:
		return "incomplete_scores"
	default:
		return "unknown"
	}
}

// RegisterResult reports the outcome of one registration attempt. Rejections
// are a normal, silent part of control flow; the reason exists so callers and
// tests can observe why a candidate was dropped.
type RegisterResult struct {
	Registered bool
	Reason     RejectReason
	Recipe     *core.Recipe
}

// Ranked pairs a recipe with its softmax score over the island's current
// population.
type Ranked struct {
	Recipe  *core.Recipe
	Softmax float64
}

// Island is an independent sub-population: it generates candidates, validates
// and registers them into the shared store, tracks its running best, and
// partitions its own recipes into clusters.
type Island struct {
	id        int
	template  string
	store     *Store
	generator core.Generator
	evaluator core.Evaluator

	rngMu sync.Mutex
	rng   *rand.Rand

	mu        sync.Mutex
	best      *core.Recipe
	bestScore float64
	clusters  []*Cluster
}

// NewIsland creates an island bound to the shared store and the external
// model collaborators.
func NewIsland(id int, template string, store *Store, generator core.Generator, evaluator core.Evaluator) *Island {
	return &Island{
		id:        id,
		template:  template,
		store:     store,
		generator: generator,
		evaluator: evaluator,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano() + int64(id))),
		bestScore: math.Inf(-1),
	}
}

// ID returns the island identifier.
func (is *Island) ID() int {
	return is.id
}

// Initialize repeatedly generates, judges and registers candidates until one
// valid seed recipe lands in the store. Empty generations back off briefly;
// rejected registrations back off a little longer. maxAttempts <= 0 uses
// DefaultMaxSeedAttempts. Exhausting the cap is a degraded state, reported as
// a SeedExhausted error the caller can detect without aborting other islands.
func (is *Island) Initialize(ctx context.Context, seed string, temperature float64, modelName string, maxAttempts int) error {
	logger := logging.GetLogger()
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxSeedAttempts
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := errors.CheckContext(ctx, "island initialization"); err != nil {
			return err
		}

		logger.Info(ctx, "[Island %d] Attempt %d to generate a recipe (seed=%s)", is.id, attempt, seed)

		program, err := is.generator.Generate(ctx, is.template,
			core.WithTemperature(temperature),
			core.WithMaxTokens(512),
		)
		if err != nil {
			if ctx.Err() != nil {
				return errors.Wrap(ctx.Err(), errors.Canceled, "island initialization canceled")
			}
			logger.Warn(ctx, "[Island %d] Generation failed: %v", is.id, err)
			program = ""
		}
		if program == "" {
			logger.Warn(ctx, "[Island %d] Failed to generate a recipe. Retrying...", is.id)
			if err := is.sleepJitter(ctx, 500*time.Millisecond, 1500*time.Millisecond); err != nil {
				return err
			}
			continue
		}

		eval, err := is.evaluator.Evaluate(ctx, program, is.id, modelName)
		if err != nil {
			return errors.Wrap(err, errors.Canceled, "island initialization canceled")
		}

		result := is.Register(program, is.id, eval)
		if result.Registered {
			logger.Info(ctx, "[Island %d] Successfully registered a valid recipe.", is.id)
			return nil
		}

		logger.Warn(ctx, "[Island %d] Recipe was invalid (%s). Retrying...", is.id, result.Reason)
		if err := is.sleepJitter(ctx, 500*time.Millisecond, 2000*time.Millisecond); err != nil {
			return err
		}
	}

	logger.Error(ctx, "[Island %d] Max attempts reached. Giving up.", is.id)
	return errors.WithFields(
		errors.New(errors.SeedExhausted, "island produced no valid seed recipe"),
		errors.Fields{"island_id": is.id, "max_attempts": maxAttempts})
}

// sleepJitter pauses for a random duration in [min, max), aborting on
// cancellation.
func (is *Island) sleepJitter(ctx context.Context, min, max time.Duration) error {
	is.rngMu.Lock()
	d := min + time.Duration(is.rng.Int63n(int64(max-min)))
	is.rngMu.Unlock()

	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), errors.Canceled, "island backoff canceled")
	case <-time.After(d):
		return nil
	}
}

// Register validates a raw candidate against its evaluation and, if every
// required field and score is present, appends it to the shared store and
// updates the island's running best. Invalid candidates are dropped without
// error; the result carries the reason.
func (is *Island) Register(raw string, islandID int, eval core.Evaluation) RegisterResult {
	details := scoring.ExtractDetails(raw)

	if details.Name == "" || details.Instructions == "" || len(details.Ingredients) == 0 {
		return RegisterResult{Reason: ReasonMissingFields}
	}

	if !eval.Complete(scoring.Dimensions) {
		return RegisterResult{Reason: ReasonIncompleteScores}
	}

	recipe := &core.Recipe{
		IslandID:      islandID,
		Idea:          details.Idea,
		Essay:         details.Essay,
		Name:          details.Name,
		Ingredients:   details.Ingredients,
		Instructions:  details.Instructions,
		Scores:        eval.Scores,
		WeightedScore: eval.WeightedScore,
	}

	is.store.Append(recipe)
	is.updateBest(recipe)

	return RegisterResult{Registered: true, Recipe: recipe}
}

func (is *Island) updateBest(recipe *core.Recipe) {
	is.mu.Lock()
	defer is.mu.Unlock()
	if recipe.WeightedScore > is.bestScore {
		is.best = recipe
		is.bestScore = recipe.WeightedScore
	}
}

// Best returns the island's running best recipe, or nil if none registered.
func (is *Island) Best() *core.Recipe {
	is.mu.Lock()
	defer is.mu.Unlock()
	return is.best
}

// Cluster partitions the island's recipes, in registration order, into
// similarity-banded clusters: each recipe joins the first existing cluster
// that admits its score, otherwise it seeds a new one. The greedy single pass
// makes the result depend on registration order; that order dependence is
// part of the algorithm, not an accident.
func (is *Island) Cluster() {
	recipes := is.store.ByIsland(is.id)
	if len(recipes) == 0 {
		return
	}

	is.mu.Lock()
	defer is.mu.Unlock()

	for _, recipe := range recipes {
		score := recipe.WeightedScore
		added := false
		for _, cluster := range is.clusters {
			if cluster.Admit(score) {
				cluster.Add(recipe, score)
				added = true
				break
			}
		}
		if !added {
			is.clusters = append(is.clusters, NewCluster(score, recipe))
		}
	}
}

// Clusters returns the island's current clusters.
func (is *Island) Clusters() []*Cluster {
	is.mu.Lock()
	defer is.mu.Unlock()
	out := make([]*Cluster, len(is.clusters))
	copy(out, is.clusters)
	return out
}

// BestFromClusters returns the highest-scoring representative across all of
// the island's clusters, or nil when the island has no clusters.
func (is *Island) BestFromClusters() *core.Recipe {
	clusters := is.Clusters()

	var best *core.Recipe
	bestScore := math.Inf(-1)
	for _, cluster := range clusters {
		recipe, score := cluster.Best()
		if recipe == nil {
			continue
		}
		if score > bestScore {
			best = recipe
			bestScore = score
		}
	}
	return best
}

// Rank returns the island's recipes sorted descending by softmax-normalized
// fitness, with the softmax value attached. The distribution is recomputed
// over the full current population on every call. NaN scores sort last.
func (is *Island) Rank() []Ranked {
	recipes := is.store.ByIsland(is.id)
	if len(recipes) == 0 {
		return nil
	}

	scores := make([]float64, len(recipes))
	for i, r := range recipes {
		scores[i] = r.WeightedScore
	}
	dist := Softmax(scores)

	ranked := make([]Ranked, len(recipes))
	for i, r := range recipes {
		ranked[i] = Ranked{Recipe: r, Softmax: dist[i]}
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
