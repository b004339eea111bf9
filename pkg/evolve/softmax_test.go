package evolve

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSoftmaxSumsToOne(t *testing.T) {
	dist := Softmax([]float64{2.0, 5.0, 3.0})
	require.Len(t, dist, 3)

	sum := 0.0
	for _, v := range dist {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestSoftmaxPreservesOrdering(t *testing.T) {
	dist := Softmax([]float64{2.0, 5.0, 3.0})
	assert.Greater(t, dist[1], dist[2])
	assert.Greater(t, dist[2], dist[0])
}

func TestSoftmaxUniformForEqualScores(t *testing.T) {
	dist := Softmax([]float64{3.5, 3.5, 3.5, 3.5})
	for _, v := range dist {
		assert.InDelta(t, 0.25, v, 1e-12)
	}
}

func TestSoftmaxLargeScoresStayFinite(t *testing.T) {
	dist := Softmax([]float64{1000, 1001, 1002})
	sum := 0.0
	for _, v := range dist {
		require.False(t, math.IsNaN(v))
		require.False(t, math.IsInf(v, 0))
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestSoftmaxNaNPropagates(t *testing.T) {
	dist := Softmax([]float64{1.0, math.NaN(), 2.0})
	assert.False(t, math.IsNaN(dist[0]))
	assert.True(t, math.IsNaN(dist[1]))

	// The finite entries still form a valid distribution on their own.
	assert.InDelta(t, 1.0, dist[0]+dist[2], 1e-12)
}

func TestSoftmaxEmpty(t *testing.T) {
	assert.Nil(t, Softmax(nil))
}
