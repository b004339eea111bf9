package evolve

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/evolune/funsearch-go/pkg/core"
	"github.com/evolune/funsearch-go/pkg/errors"
	"github.com/evolune/funsearch-go/pkg/logging"
	"github.com/evolune/funsearch-go/pkg/prompts"
	"github.com/evolune/funsearch-go/pkg/scoring"
)

// Config controls one evolutionary search run.
type Config struct {
	NumBatches           int     `yaml:"num_batches" validate:"required,min=1"`
	RecipesPerBatch      int     `yaml:"recipes_per_batch" validate:"required,min=1"`
	NumIslands           int     `yaml:"num_islands" validate:"required,min=1"`
	GeneratorTemperature float64 `yaml:"generator_temperature" validate:"min=0,max=2"`
	EvaluatorModel       string  `yaml:"evaluator_model" validate:"required"`
	Template             string  `yaml:"template" validate:"required"`
	MaxSeedAttempts      int     `yaml:"max_seed_attempts" validate:"min=0"`

	// ParentCount is how many top-ranked recipes seed each evolution step.
	ParentCount int `yaml:"parent_count" validate:"min=0"`
}

func (c *Config) applyDefaults() {
	if c.MaxSeedAttempts == 0 {
		c.MaxSeedAttempts = DefaultMaxSeedAttempts
	}
	if c.ParentCount == 0 {
		c.ParentCount = 2
	}
}

// FunSearch is the outer evolution driver: it bootstraps the island
// population, then runs batches of concurrent per-island evolution steps with
// a strict join barrier between batches.
type FunSearch struct {
	config    Config
	generator core.Generator
	evaluator core.Evaluator
}

// New validates the configuration and the score weight table and returns a
// ready driver.
func New(config Config, generator core.Generator, evaluator core.Evaluator) (*FunSearch, error) {
	config.applyDefaults()

	if config.NumBatches < 1 || config.RecipesPerBatch < 1 || config.NumIslands < 1 {
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "batch, recipe and island counts must be positive"),
			errors.Fields{
				"num_batches":       config.NumBatches,
				"recipes_per_batch": config.RecipesPerBatch,
				"num_islands":       config.NumIslands,
			})
	}
	if config.Template == "" {
		return nil, errors.New(errors.InvalidInput, "recipe template is required")
	}
	if err := scoring.ValidateWeights(scoring.Weights, scoring.Dimensions); err != nil {
		return nil, errors.Wrap(err, errors.ValidationFailed, "score weight table is invalid")
	}

	return &FunSearch{
		config:    config,
		generator: generator,
		evaluator: evaluator,
	}, nil
}

// Run executes the full search and returns the population store with every
// validated recipe from every island. A canceled context aborts between
// phases; recipes from an interrupted batch are never partially registered.
func (f *FunSearch) Run(ctx context.Context) (*Store, error) {
	logger := logging.GetLogger()

	store := NewStore()
	db := NewDatabase(f.config.Template, store, f.generator, f.evaluator)

	if err := db.InitializeIslands(ctx, f.config.NumIslands, f.config.GeneratorTemperature, f.config.EvaluatorModel, f.config.MaxSeedAttempts); err != nil {
		return store, err
	}

	for batch := 0; batch < f.config.NumBatches; batch++ {
		if err := errors.CheckContext(ctx, "evolution batch"); err != nil {
			return store, err
		}

		logger.Info(ctx, "Starting batch %d/%d, population size %d", batch+1, f.config.NumBatches, store.Len())

		p := pool.New().WithMaxGoroutines(f.config.NumIslands)
		for _, island := range db.Islands() {
			p.Go(func() {
				f.islandStep(ctx, island)
			})
		}
		p.Wait()
	}

	if err := errors.CheckContext(ctx, "evolution run"); err != nil {
		return store, err
	}

	logger.Info(ctx, "Search complete: %d recipes across %d islands", store.Len(), f.config.NumIslands)
	return store, nil
}

// Database runs the search like Run but returns the island database, for
// callers that need island-level ranking afterwards.
func (f *FunSearch) Database(ctx context.Context) (*Database, error) {
	store := NewStore()
	db := NewDatabase(f.config.Template, store, f.generator, f.evaluator)

	if err := db.InitializeIslands(ctx, f.config.NumIslands, f.config.GeneratorTemperature, f.config.EvaluatorModel, f.config.MaxSeedAttempts); err != nil {
		return db, err
	}

	for batch := 0; batch < f.config.NumBatches; batch++ {
		if err := errors.CheckContext(ctx, "evolution batch"); err != nil {
			return db, err
		}

		p := pool.New().WithMaxGoroutines(f.config.NumIslands)
		for _, island := range db.Islands() {
			p.Go(func() {
				f.islandStep(ctx, island)
			})
		}
		p.Wait()
	}

	return db, errors.CheckContext(ctx, "evolution run")
}

type scoredCandidate struct {
	raw  string
	eval core.Evaluation
}

// islandStep runs one evolution step for a single island: re-read the current
// top parents, evolve and judge recipesPerBatch candidates concurrently, then
// register the survivors. Parents come only from this island's own recipes;
// concurrent steps on other islands never leak in.
func (f *FunSearch) islandStep(ctx context.Context, island *Island) {
	logger := logging.GetLogger()

	parents := f.topParents(island)
	prompt := prompts.Evolve(parents, f.config.Template)

	var mu sync.Mutex
	var candidates []scoredCandidate

	p := pool.New().WithMaxGoroutines(f.config.RecipesPerBatch)
	for i := 0; i < f.config.RecipesPerBatch; i++ {
		p.Go(func() {
			evolved, err := f.generator.Generate(ctx, prompt,
				core.WithTemperature(f.config.GeneratorTemperature),
				core.WithMaxTokens(512),
			)
			if err != nil || evolved == "" {
				if err != nil && ctx.Err() == nil {
					logger.Warn(ctx, "[Island %d] Evolution call failed: %v", island.ID(), err)
				}
				return
			}

			eval, err := f.evaluator.Evaluate(ctx, evolved, island.ID(), f.config.EvaluatorModel)
			if err != nil {
				return
			}

			mu.Lock()
			candidates = append(candidates, scoredCandidate{raw: evolved, eval: eval})
			mu.Unlock()
		})
	}
	p.Wait()

	// A canceled batch registers nothing; partial results must not look like
	// a completed step.
	if ctx.Err() != nil {
		return
	}

	reg := pool.New().WithMaxGoroutines(f.config.RecipesPerBatch)
	for _, candidate := range candidates {
		reg.Go(func() {
			result := island.Register(candidate.raw, island.ID(), candidate.eval)
			if !result.Registered {
				logger.Debug(ctx, "[Island %d] Candidate dropped: %s", island.ID(), result.Reason)
			}
		})
	}
	reg.Wait()
}

// topParents serializes the island's current top-ranked recipes for the
// evolution prompt. The ranking is re-read at the start of every step.
func (f *FunSearch) topParents(island *Island) []string {
	ranked := island.Rank()
	if len(ranked) > f.config.ParentCount {
		ranked = ranked[:f.config.ParentCount]
	}

	parents := make([]string, 0, len(ranked))
	for _, r := range ranked {
		payload := map[string]interface{}{
			"recipe_idea":   r.Recipe.Idea,
			"essay":         r.Recipe.Essay,
			"recipe_name":   r.Recipe.Name,
			"ingredients":   r.Recipe.Ingredients,
			"instructions":  r.Recipe.Instructions,
			"softmax_score": r.Softmax,
		}
		encoded, err := json.Marshal(payload)
		if err != nil {
			continue
		}
		parents = append(parents, string(encoded))
	}
	return parents
}
