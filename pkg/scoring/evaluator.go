package scoring

import (
	"context"
	"sync"

	"github.com/evolune/funsearch-go/pkg/core"
	"github.com/evolune/funsearch-go/pkg/logging"
	"github.com/evolune/funsearch-go/pkg/prompts"
)

// Friendly evaluator names map onto hosted model IDs; anything that is not
// the strong judge falls back to the small one.
const (
	StrongJudgeModel = "meta-llama/Llama-4-Scout-17B-16E-Instruct"
	WeakJudgeModel   = "meta-llama/Meta-Llama-3.1-8B-Instruct"
)

// ResolveJudgeModel translates a friendly model name to a hosted model ID.
func ResolveJudgeModel(name string) string {
	if name == "good" {
		return StrongJudgeModel
	}
	return WeakJudgeModel
}

// GeneratorFactory builds a generator bound to a specific hosted model.
type GeneratorFactory func(model string) (core.Generator, error)

// LLMJudge scores recipes by prompting an evaluation model and extracting the
// seven dimension scores from its free-form reply. It implements
// core.Evaluator.
type LLMJudge struct {
	factory GeneratorFactory

	mu      sync.Mutex
	clients map[string]core.Generator
}

// NewLLMJudge creates a judge that obtains per-model generators from factory.
func NewLLMJudge(factory GeneratorFactory) *LLMJudge {
	return &LLMJudge{
		factory: factory,
		clients: make(map[string]core.Generator),
	}
}

func (j *LLMJudge) clientFor(model string) (core.Generator, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if gen, ok := j.clients[model]; ok {
		return gen, nil
	}
	gen, err := j.factory(model)
	if err != nil {
		return nil, err
	}
	j.clients[model] = gen
	return gen, nil
}

// Evaluate implements core.Evaluator. Any transport or parse failure yields
// an incomplete Evaluation; the registration path drops those candidates.
// Only context cancellation is returned as an error.
func (j *LLMJudge) Evaluate(ctx context.Context, recipe string, islandID int, modelName string) (core.Evaluation, error) {
	logger := logging.GetLogger()
	empty := core.Evaluation{IslandID: islandID}

	if err := ctx.Err(); err != nil {
		return empty, err
	}

	model := ResolveJudgeModel(modelName)
	gen, err := j.clientFor(model)
	if err != nil {
		logger.Error(ctx, "Failed to build judge client for %s: %v", model, err)
		return empty, nil
	}

	response, err := gen.Generate(ctx, prompts.Judge(recipe),
		core.WithTemperature(0.25),
		core.WithMaxTokens(512),
	)
	if err != nil {
		if ctx.Err() != nil {
			return empty, ctx.Err()
		}
		logger.Error(ctx, "Judge call failed for island %d: %v", islandID, err)
		return empty, nil
	}
	if response == "" {
		logger.Warn(ctx, "Judge returned empty response for island %d", islandID)
		return empty, nil
	}

	scores := ExtractScores(response, Dimensions)
	eval := core.Evaluation{
		Scores:        scores.Values(),
		WeightedScore: scores.Weighted(Weights),
		IslandID:      islandID,
	}
	if !scores.Complete() {
		logger.Warn(ctx, "Judge response resolved %d/%d dimensions for island %d",
			scores.Len(), len(Dimensions), islandID)
	}
	return eval, nil
}
