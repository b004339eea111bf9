package creativity

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evolune/funsearch-go/internal/testutil"
	"github.com/evolune/funsearch-go/pkg/core"
)

const panelResponse = `{
    "fluency_quality_assess": "several distinct creative elements",
    "fluency": 4,
    "flexibility": 3,
    "elaboration": 5,
    "originality": 4
}`

func TestExtractScoresCompleteRow(t *testing.T) {
	row := ExtractScores(panelResponse, "Monkey Bread", "llama")

	assert.Equal(t, "Monkey Bread", row.Recipe)
	assert.Equal(t, "llama", row.Model)
	assert.Equal(t, 4.0, row.Scores["fluency"])
	assert.Equal(t, 4.0, row.Average)
}

func TestExtractScoresIncompleteRowHasNaNAverage(t *testing.T) {
	row := ExtractScores(`{"fluency": 4, "flexibility": 3}`, "Monkey Bread", "phi")

	assert.Len(t, row.Scores, 2)
	assert.True(t, math.IsNaN(row.Average))
}

func TestExtractScoresEmptyResponse(t *testing.T) {
	row := ExtractScores("", "Monkey Bread", "meta")
	assert.Empty(t, row.Scores)
	assert.True(t, math.IsNaN(row.Average))
}

func TestPanelScoreProducesModelAndAverageRows(t *testing.T) {
	panel := NewPanel()
	panel.AddModel("llama", testutil.NewScriptedGenerator(panelResponse))

	recipes := []*core.Recipe{
		{Name: "Monkey Bread", Formatted: "the formatted recipe"},
	}
	summary := panel.Score(context.Background(), recipes)

	require.Len(t, summary.Rows, 2)
	assert.Equal(t, "llama", summary.Rows[0].Model)
	assert.Equal(t, AverageModel, summary.Rows[1].Model)
	assert.Equal(t, 4.0, summary.Rows[1].Average)
	assert.Equal(t, 0, summary.TotalMissing)
	assert.Equal(t, 0, summary.OutOfRange)
}

func TestPanelScoreSkipsUnformattedRecipes(t *testing.T) {
	panel := NewPanel()
	panel.AddModel("llama", testutil.NewScriptedGenerator(panelResponse))

	summary := panel.Score(context.Background(), []*core.Recipe{
		{Name: "Unformatted"},
	})
	assert.Empty(t, summary.Rows)
}

func TestSummarizeCountsMissingCells(t *testing.T) {
	rows := []Row{
		{
			Recipe:  "A",
			Model:   "llama",
			Scores:  map[string]float64{"fluency": 4, "flexibility": 3},
			Average: math.NaN(),
		},
	}

	summary := summarize(rows, []string{"llama"})
	require.Len(t, summary.Rows, 2)

	// Model row misses elaboration, originality and its average; the
	// synthetic average row inherits the same gaps.
	assert.Equal(t, 6, summary.TotalMissing)
	assert.Equal(t, 0, summary.OutOfRange)
}

func TestSummarizeAverageRowIgnoresUnresolvedCells(t *testing.T) {
	rows := []Row{
		{Recipe: "A", Model: "llama",
			Scores:  map[string]float64{"fluency": 4, "flexibility": 4, "elaboration": 4, "originality": 4},
			Average: 4.0},
		{Recipe: "A", Model: "phi",
			Scores:  map[string]float64{"fluency": 2},
			Average: math.NaN()},
	}

	summary := summarize(rows, []string{"llama", "phi"})
	require.Len(t, summary.Rows, 3)

	avg := summary.Rows[2]
	assert.Equal(t, AverageModel, avg.Model)
	assert.Equal(t, 3.0, avg.Scores["fluency"])
	assert.Equal(t, 4.0, avg.Scores["flexibility"])
	assert.Equal(t, 4.0, avg.Average)
}

func TestSummarizeKeepsModelOrder(t *testing.T) {
	rows := []Row{
		{Recipe: "A", Model: "phi", Scores: map[string]float64{}, Average: math.NaN()},
		{Recipe: "A", Model: "llama", Scores: map[string]float64{}, Average: math.NaN()},
	}

	summary := summarize(rows, []string{"llama", "phi"})
	require.Len(t, summary.Rows, 3)
	assert.Equal(t, "llama", summary.Rows[0].Model)
	assert.Equal(t, "phi", summary.Rows[1].Model)
	assert.Equal(t, AverageModel, summary.Rows[2].Model)
}
