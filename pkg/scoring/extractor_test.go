package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractScoresJSONBlock(t *testing.T) {
	text := `Here is my verdict:
{
    "taste_quality_assess": "balanced and rich",
    "taste": 4,
    "appearance": 3.5,
    "creativity": 5,
    "crowd_appeal": 4,
    "recipe_ties_story": 3,
    "story_brings_to_life": 4,
    "passion": 5,
    "overall": 4
}`

	set := ExtractScores(text, Dimensions)
	require.True(t, set.Complete())

	v, ok := set.Get("taste")
	assert.True(t, ok)
	assert.Equal(t, 4.0, v)

	v, ok = set.Get("appearance")
	assert.True(t, ok)
	assert.Equal(t, 3.5, v)
}

func TestExtractScoresJSONIgnoresOutOfRange(t *testing.T) {
	text := "{\n\"taste\": 9,\n\"creativity\": 3\n}"

	set := ExtractScores(text, []string{"taste", "creativity"})

	// 9 falls outside [1,5]; neither fallback tier can resolve it either.
	_, ok := set.Get("taste")
	assert.False(t, ok)

	v, ok := set.Get("creativity")
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)
}

func TestExtractScoresStrictFallback(t *testing.T) {
	text := `No JSON today.
taste: 4
"appearance" = "3"
creativity: 2.5`

	set := ExtractScores(text, []string{"taste", "appearance", "creativity"})

	v, ok := set.Get("taste")
	assert.True(t, ok)
	assert.Equal(t, 4.0, v)

	v, ok = set.Get("appearance")
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)

	v, ok = set.Get("creativity")
	assert.True(t, ok)
	assert.Equal(t, 2.5, v)
}

func TestExtractScoresLooseFallback(t *testing.T) {
	text := `I would rate the taste of this dish a solid 4 out of five.`

	set := ExtractScores(text, []string{"taste"})

	v, ok := set.Get("taste")
	assert.True(t, ok)
	assert.Equal(t, 4.0, v)
}

func TestExtractScoresLooseStaysOnOneLine(t *testing.T) {
	// The key and the digit sit on different lines; the loose tier must not
	// bridge them.
	text := "taste was excellent\nmaybe a 4"

	set := ExtractScores(text, []string{"taste"})
	_, ok := set.Get("taste")
	assert.False(t, ok)
}

func TestExtractScoresTiersFillOnlyMissingKeys(t *testing.T) {
	// JSON resolves taste; appearance arrives via the strict pattern after
	// the block. The JSON value must win for taste.
	text := `{"taste": 5}
taste: 1
appearance: 2`

	set := ExtractScores(text, []string{"taste", "appearance"})

	v, _ := set.Get("taste")
	assert.Equal(t, 5.0, v)
	v, _ = set.Get("appearance")
	assert.Equal(t, 2.0, v)
}

func TestExtractScoresUnresolvedKeysAbsent(t *testing.T) {
	set := ExtractScores("nothing useful here", Dimensions)
	assert.Equal(t, 0, set.Len())
	assert.False(t, set.Complete())
}

func TestWeightedDefaultsMissingToZeroAndRounds(t *testing.T) {
	set := ExtractScores(`{"taste": 4, "appearance": 3}`, Dimensions)
	require.False(t, set.Complete())

	// 4*0.175 + 3*0.175 = 1.225, rounded to 1.23.
	assert.Equal(t, 1.23, set.Weighted(Weights))
}

func TestWeightedFullSet(t *testing.T) {
	text := `{"taste": 5, "appearance": 5, "creativity": 5, "crowd_appeal": 5,
              "recipe_ties_story": 5, "story_brings_to_life": 5, "passion": 5}`
	set := ExtractScores(text, Dimensions)
	require.True(t, set.Complete())
	assert.Equal(t, 5.0, set.Weighted(Weights))
}

func TestValidateWeights(t *testing.T) {
	assert.NoError(t, ValidateWeights(Weights, Dimensions))

	bad := map[string]float64{"taste": 0.5, "appearance": 0.6}
	err := ValidateWeights(bad, []string{"taste", "appearance"})
	assert.Error(t, err)

	err = ValidateWeights(map[string]float64{"taste": 1.0}, []string{"taste", "appearance"})
	assert.Error(t, err)
}

func TestScoreSetValuesIsACopy(t *testing.T) {
	set := ExtractScores(`{"taste": 3}`, []string{"taste"})
	values := set.Values()
	values["taste"] = math.NaN()

	v, ok := set.Get("taste")
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)
}
