package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

var dimensionKeys = []string{"taste", "appearance", "creativity"}

func TestEvaluationComplete(t *testing.T) {
	eval := Evaluation{
		Scores:        map[string]float64{"taste": 4, "appearance": 3, "creativity": 5},
		WeightedScore: 3.9,
	}
	assert.True(t, eval.Complete(dimensionKeys))
}

func TestEvaluationIncompleteWhenKeyMissing(t *testing.T) {
	eval := Evaluation{
		Scores:        map[string]float64{"taste": 4},
		WeightedScore: 0.7,
	}
	assert.False(t, eval.Complete(dimensionKeys))
}

func TestEvaluationIncompleteWhenScoreNaN(t *testing.T) {
	eval := Evaluation{
		Scores:        map[string]float64{"taste": math.NaN(), "appearance": 3, "creativity": 5},
		WeightedScore: 2.6,
	}
	assert.False(t, eval.Complete(dimensionKeys))
}

func TestEvaluationIncompleteWhenWeightedScoreNotFinite(t *testing.T) {
	scores := map[string]float64{"taste": 4, "appearance": 3, "creativity": 5}

	eval := Evaluation{Scores: scores, WeightedScore: math.NaN()}
	assert.False(t, eval.Complete(dimensionKeys))

	eval = Evaluation{Scores: scores, WeightedScore: math.Inf(1)}
	assert.False(t, eval.Complete(dimensionKeys))
}

func TestGenerateOptionsDefaults(t *testing.T) {
	opts := NewGenerateOptions()
	assert.Equal(t, 512, opts.MaxTokens)
	assert.Equal(t, 0.5, opts.Temperature)
}

func TestGenerateOptionsApply(t *testing.T) {
	opts := NewGenerateOptions()
	for _, opt := range []GenerateOption{
		WithMaxTokens(256),
		WithTemperature(1.0),
		WithTopP(0.9),
		WithStopSequences("END"),
	} {
		opt(opts)
	}

	assert.Equal(t, 256, opts.MaxTokens)
	assert.Equal(t, 1.0, opts.Temperature)
	assert.Equal(t, 0.9, opts.TopP)
	assert.Equal(t, []string{"END"}, opts.Stop)
}
