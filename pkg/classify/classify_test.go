package classify

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

var testBands = Bands{
	{Upper: 0.5, Interpretation: "low"},
	{Upper: 0.8, Interpretation: "moderate"},
	{Upper: 1.2, Interpretation: "high"},
	{Interpretation: "very high"},
}

func TestClassifyBands(t *testing.T) {
	cases := []struct {
		score float64
		want  Level
	}{
		{0, Low},
		{0.49, Low},
		{0.5, Moderate}, // exclusive upper bound
		{0.79, Moderate},
		{0.8, High},
		{1.19, High},
		{1.2, VeryHigh},
		{100, VeryHigh},
	}

	for _, tc := range cases {
		level, interp := testBands.Classify(tc.score)
		assert.Equal(t, tc.want, level, "score %v", tc.score)
		assert.NotEmpty(t, interp)
	}
}

func TestClassifyExhaustive(t *testing.T) {
	// Every finite score maps to exactly one of the four levels.
	for score := -10.0; score < 10.0; score += 0.01 {
		level, _ := testBands.Classify(score)
		assert.True(t, level >= Low && level <= VeryHigh)
	}

	level, _ := testBands.Classify(math.MaxFloat64)
	assert.Equal(t, VeryHigh, level)
}

func TestLevelStrings(t *testing.T) {
	assert.Equal(t, "Low", Low.String())
	assert.Equal(t, "Moderate", Moderate.String())
	assert.Equal(t, "High", High.String())
	assert.Equal(t, "Very High", VeryHigh.String())
	assert.Equal(t, "Not Evaluable", NotEvaluable.String())
}
