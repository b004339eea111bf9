package evolve

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evolune/funsearch-go/internal/testutil"
	"github.com/evolune/funsearch-go/pkg/core"
	errs "github.com/evolune/funsearch-go/pkg/errors"
	"github.com/evolune/funsearch-go/pkg/scoring"
)

func completeEval(islandID int, score float64) core.Evaluation {
	scores := make(map[string]float64, len(scoring.Dimensions))
	for _, key := range scoring.Dimensions {
		scores[key] = score
	}
	return core.Evaluation{Scores: scores, WeightedScore: score, IslandID: islandID}
}

func newTestIsland(id int, store *Store) *Island {
	return NewIsland(id, "the contest template", store,
		testutil.NewScriptedGenerator(),
		&testutil.StaticEvaluator{Score: 3.0, Keys: scoring.Dimensions})
}

func TestRegisterValidRecipe(t *testing.T) {
	store := NewStore()
	island := newTestIsland(0, store)

	result := island.Register(testutil.ValidRecipePayload, 0, completeEval(0, 3.2))

	require.True(t, result.Registered)
	assert.Equal(t, ReasonNone, result.Reason)
	require.NotNil(t, result.Recipe)
	assert.Equal(t, "Miso Caramel Monkey Bread", result.Recipe.Name)
	assert.Equal(t, 3.2, result.Recipe.WeightedScore)
	assert.Equal(t, 1, store.Len())
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	store := NewStore()
	island := newTestIsland(0, store)

	raw := `{"recipe_name": "Nameless Wonder", "ingredients": []}`
	result := island.Register(raw, 0, completeEval(0, 4.0))

	assert.False(t, result.Registered)
	assert.Equal(t, ReasonMissingFields, result.Reason)
	assert.Equal(t, 0, store.Len())
	assert.Nil(t, island.Best())
}

func TestRegisterRejectsIncompleteScores(t *testing.T) {
	store := NewStore()
	island := newTestIsland(0, store)

	eval := core.Evaluation{
		Scores:        map[string]float64{"taste": 4},
		WeightedScore: 0.7,
	}
	result := island.Register(testutil.ValidRecipePayload, 0, eval)

	assert.False(t, result.Registered)
	assert.Equal(t, ReasonIncompleteScores, result.Reason)
	assert.Equal(t, 0, store.Len())
}

func TestBestNeverDecreases(t *testing.T) {
	store := NewStore()
	island := newTestIsland(0, store)

	island.Register(testutil.ValidRecipePayload, 0, completeEval(0, 4.0))
	first := island.Best()
	require.NotNil(t, first)
	assert.Equal(t, 4.0, first.WeightedScore)

	island.Register(testutil.ValidRecipePayload, 0, completeEval(0, 2.0))
	assert.Equal(t, 4.0, island.Best().WeightedScore)

	island.Register(testutil.ValidRecipePayload, 0, completeEval(0, 4.5))
	assert.Equal(t, 4.5, island.Best().WeightedScore)
}

func TestConcurrentRegistrationKeepsEveryRecipe(t *testing.T) {
	store := NewStore()
	island := newTestIsland(0, store)

	const n = 32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(score float64) {
			defer wg.Done()
			island.Register(testutil.ValidRecipePayload, 0, completeEval(0, score))
		}(1.0 + float64(i%4))
	}
	wg.Wait()

	assert.Equal(t, n, store.Len())
	assert.Equal(t, 4.0, island.Best().WeightedScore)
}

func TestClusterPartitionsByScoreBand(t *testing.T) {
	store := NewStore()
	island := newTestIsland(0, store)

	for _, score := range []float64{3.0, 3.2, 4.1, 2.9, 4.4} {
		island.Register(testutil.ValidRecipePayload, 0, completeEval(0, score))
	}
	island.Cluster()

	clusters := island.Clusters()
	require.Len(t, clusters, 2)
	assert.Equal(t, 3, clusters[0].Len()) // 3.0, 3.2, 2.9
	assert.Equal(t, 2, clusters[1].Len()) // 4.1, 4.4
}

func TestBestFromClusters(t *testing.T) {
	store := NewStore()
	island := newTestIsland(0, store)

	for _, score := range []float64{3.0, 4.1, 2.9} {
		island.Register(testutil.ValidRecipePayload, 0, completeEval(0, score))
	}
	island.Cluster()

	best := island.BestFromClusters()
	require.NotNil(t, best)
	assert.Equal(t, 4.1, best.WeightedScore)
}

func TestBestFromClustersEmptyIsland(t *testing.T) {
	island := newTestIsland(0, NewStore())
	island.Cluster()
	assert.Nil(t, island.BestFromClusters())
}

func TestRankSortsDescendingAndSumsToOne(t *testing.T) {
	store := NewStore()
	island := newTestIsland(0, store)

	for _, score := range []float64{2.0, 5.0, 3.0} {
		island.Register(testutil.ValidRecipePayload, 0, completeEval(0, score))
	}

	ranked := island.Rank()
	require.Len(t, ranked, 3)

	assert.Equal(t, 5.0, ranked[0].Recipe.WeightedScore)
	assert.Equal(t, 3.0, ranked[1].Recipe.WeightedScore)
	assert.Equal(t, 2.0, ranked[2].Recipe.WeightedScore)

	sum := 0.0
	for _, r := range ranked {
		sum += r.Softmax
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestRankEmptyIsland(t *testing.T) {
	island := newTestIsland(0, NewStore())
	assert.Nil(t, island.Rank())
}

func TestInitializeSucceedsAfterEmptyGenerations(t *testing.T) {
	store := NewStore()
	gen := testutil.NewEmptyThenValidGenerator(2, testutil.ValidRecipePayload)
	island := NewIsland(0, "template", store, gen,
		&testutil.StaticEvaluator{Score: 3.0, Keys: scoring.Dimensions})

	err := island.Initialize(context.Background(), "seed", 0.7, "bad", 5)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
	assert.NotNil(t, island.Best())
}

func TestInitializeExhaustsSeedAttempts(t *testing.T) {
	store := NewStore()
	gen := testutil.NewScriptedGenerator() // always empty
	island := NewIsland(0, "template", store, gen,
		&testutil.StaticEvaluator{Score: 3.0, Keys: scoring.Dimensions})

	err := island.Initialize(context.Background(), "seed", 0.7, "bad", 2)
	require.Error(t, err)

	var e *errs.Error
	require.True(t, stderrors.As(err, &e))
	assert.Equal(t, errs.SeedExhausted, e.Code())
	assert.Equal(t, 0, store.Len())
}

func TestInitializeCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	island := newTestIsland(0, NewStore())
	err := island.Initialize(ctx, "seed", 0.7, "bad", 5)
	require.Error(t, err)

	var e *errs.Error
	require.True(t, stderrors.As(err, &e))
	assert.Equal(t, errs.Canceled, e.Code())
}

func TestRejectReasonString(t *testing.T) {
	assert.Equal(t, "none", ReasonNone.String())
	assert.Equal(t, "missing_fields", ReasonMissingFields.String())
	assert.Equal(t, "incomplete_scores", ReasonIncompleteScores.String())
	assert.Equal(t, "unknown", RejectReason(99).String())
}
