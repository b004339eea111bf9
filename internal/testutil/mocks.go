// Package testutil provides shared test doubles for the search engine's
// external model collaborators.
package testutil

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/evolune/funsearch-go/pkg/core"
)

// MockGenerator is a testify mock implementation of core.Generator.
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string, options ...core.GenerateOption) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// MockEvaluator is a testify mock implementation of core.Evaluator.
type MockEvaluator struct {
	mock.Mock
}

func (m *MockEvaluator) Evaluate(ctx context.Context, recipe string, islandID int, modelName string) (core.Evaluation, error) {
	args := m.Called(ctx, recipe, islandID, modelName)
	return args.Get(0).(core.Evaluation), args.Error(1)
}

// ScriptedGenerator returns canned responses in order and empty strings once
// the script runs out. Safe for concurrent use.
type ScriptedGenerator struct {
	mu        sync.Mutex
	responses []string
	calls     int
}

// NewScriptedGenerator creates a generator that replays the given responses.
func NewScriptedGenerator(responses ...string) *ScriptedGenerator {
	return &ScriptedGenerator{responses: responses}
}

func (g *ScriptedGenerator) Generate(ctx context.Context, prompt string, options ...core.GenerateOption) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if len(g.responses) == 0 {
		return "", nil
	}
	next := g.responses[0]
	g.responses = g.responses[1:]
	return next, nil
}

// Calls returns how many times Generate was invoked.
func (g *ScriptedGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// EmptyThenValidGenerator returns empty output for the first n calls and the
// given payload afterwards. Safe for concurrent use.
type EmptyThenValidGenerator struct {
	mu      sync.Mutex
	empties int
	payload string
	calls   int
}

func NewEmptyThenValidGenerator(empties int, payload string) *EmptyThenValidGenerator {
	return &EmptyThenValidGenerator{empties: empties, payload: payload}
}

func (g *EmptyThenValidGenerator) Generate(ctx context.Context, prompt string, options ...core.GenerateOption) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.calls <= g.empties {
		return "", nil
	}
	return g.payload, nil
}

// StaticEvaluator always returns a complete evaluation with every dimension
// set to Score. Safe for concurrent use.
type StaticEvaluator struct {
	Score float64
	Keys  []string
}

func (e *StaticEvaluator) Evaluate(ctx context.Context, recipe string, islandID int, modelName string) (core.Evaluation, error) {
	scores := make(map[string]float64, len(e.Keys))
	for _, key := range e.Keys {
		scores[key] = e.Score
	}
	return core.Evaluation{
		Scores:        scores,
		WeightedScore: e.Score,
		IslandID:      islandID,
	}, nil
}

// ValidRecipePayload is a minimal generation payload that passes field
// extraction and normalization.
const ValidRecipePayload = `{
    "recipe_idea": "A comforting fusion bake",
    "essay": "My grandmother taught me that dough remembers patience.",
    "recipe_name": "Miso Caramel Monkey Bread",
    "ingredients": ["refrigerated biscuit dough", "white miso", "brown sugar", "butter", "toasted sesame"],
    "instructions": ["Preheat oven to 350F.", "Coat dough pieces in miso caramel.", "Bake 35 minutes in a bundt pan."]
}`
