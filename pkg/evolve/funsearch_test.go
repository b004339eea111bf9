package evolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evolune/funsearch-go/internal/testutil"
)

func searchConfig() Config {
	return Config{
		NumBatches:           2,
		RecipesPerBatch:      2,
		NumIslands:           2,
		GeneratorTemperature: 0.7,
		EvaluatorModel:       "bad",
		Template:             "the contest template",
		MaxSeedAttempts:      3,
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.applyDefaults()
	assert.Equal(t, DefaultMaxSeedAttempts, cfg.MaxSeedAttempts)
	assert.Equal(t, 2, cfg.ParentCount)
}

func TestNewRejectsInvalidCounts(t *testing.T) {
	cfg := searchConfig()
	cfg.NumIslands = 0
	_, err := New(cfg, alwaysValidGenerator{}, &scorePerIslandEvaluator{})
	assert.Error(t, err)

	cfg = searchConfig()
	cfg.NumBatches = -1
	_, err = New(cfg, alwaysValidGenerator{}, &scorePerIslandEvaluator{})
	assert.Error(t, err)
}

func TestNewRejectsMissingTemplate(t *testing.T) {
	cfg := searchConfig()
	cfg.Template = ""
	_, err := New(cfg, alwaysValidGenerator{}, &scorePerIslandEvaluator{})
	assert.Error(t, err)
}

func TestRunRegistersSeedsAndBatches(t *testing.T) {
	search, err := New(searchConfig(), alwaysValidGenerator{}, &scorePerIslandEvaluator{})
	require.NoError(t, err)

	store, err := search.Run(context.Background())
	require.NoError(t, err)

	// One seed per island plus batches * islands * recipesPerBatch.
	assert.Equal(t, 2+2*2*2, store.Len())
	assert.Len(t, store.ByIsland(0), 5)
	assert.Len(t, store.ByIsland(1), 5)
}

func TestRunCanceledBeforeStart(t *testing.T) {
	search, err := New(searchConfig(), alwaysValidGenerator{}, &scorePerIslandEvaluator{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store, err := search.Run(ctx)
	assert.Error(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestDatabaseRunExposesIslandRanking(t *testing.T) {
	search, err := New(searchConfig(), alwaysValidGenerator{}, &scorePerIslandEvaluator{})
	require.NoError(t, err)

	db, err := search.Database(context.Background())
	require.NoError(t, err)

	ranked := db.RankIslands()
	require.Len(t, ranked, 2)
	assert.Equal(t, 1, ranked[0].Island.ID())
}

func TestTopParentsLimitsToParentCount(t *testing.T) {
	store := NewStore()
	island := newTestIsland(0, store)
	for _, score := range []float64{2.0, 3.0, 4.0, 5.0} {
		island.Register(testutil.ValidRecipePayload, 0, completeEval(0, score))
	}

	search, err := New(searchConfig(), alwaysValidGenerator{}, &scorePerIslandEvaluator{})
	require.NoError(t, err)

	parents := search.topParents(island)
	require.Len(t, parents, 2)
	assert.Contains(t, parents[0], `"recipe_name"`)
	assert.Contains(t, parents[0], `"softmax_score"`)
}
