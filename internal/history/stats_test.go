package history

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.Count)
	assert.Nil(t, s.Current)
	assert.Nil(t, s.Average)
	assert.Nil(t, s.Min)
	assert.Nil(t, s.Max)
}

func TestSummarize_Values(t *testing.T) {
	s := Summarize([]float64{4, 2, 6})
	require.Equal(t, 3, s.Count)
	assert.Equal(t, 6.0, *s.Current)
	assert.Equal(t, 4.0, *s.Average)
	assert.Equal(t, 2.0, *s.Min)
	assert.Equal(t, 6.0, *s.Max)
}

func TestSummarize_SkipsInvalid(t *testing.T) {
	s := Summarize([]float64{math.NaN(), 3, math.Inf(1)})
	require.Equal(t, 1, s.Count)
	assert.Equal(t, 3.0, *s.Current)

	s = Summarize([]float64{math.NaN()})
	assert.Equal(t, 0, s.Count)
	assert.Nil(t, s.Average)
}
