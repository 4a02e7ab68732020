package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
)

var (
	testWeights = config.ScorerWeights{Structural: 3, Trend: 3, Quality: 2, Context: 2}
	testTiers   = config.TierFractions{High: 0.78, MediumHigh: 0.55, Medium: 0.40, LowMedium: 0.25}
)

func TestScorePartialCredit(t *testing.T) {
	f := models.Features{Structural: 1, Trend: 0.5, Quality: 0, Context: 1}
	assert.InDelta(t, 3+1.5+0+2, Score(f, testWeights), 1e-9)
}

func TestScoreClampsFactors(t *testing.T) {
	f := models.Features{Structural: 2, Trend: -1, Quality: 1, Context: 1}
	assert.InDelta(t, 3+0+2+2, Score(f, testWeights), 1e-9)
}

func TestTierBoundaries(t *testing.T) {
	max := testWeights.Max()
	cases := []struct {
		frac float64
		want models.Confidence
	}{
		{1.00, models.ConfidenceHigh},
		{0.78, models.ConfidenceHigh},
		{0.77, models.ConfidenceMediumHigh},
		{0.55, models.ConfidenceMediumHigh},
		{0.54, models.ConfidenceMedium},
		{0.40, models.ConfidenceMedium},
		{0.39, models.ConfidenceLowMedium},
		{0.25, models.ConfidenceLowMedium},
		{0.24, models.ConfidenceLow},
		{0, models.ConfidenceLow},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Tier(tc.frac*max, testWeights, testTiers), "frac %v", tc.frac)
	}
}

func TestTierIsTotalAndDeterministic(t *testing.T) {
	max := testWeights.Max()
	for score := -1.0; score <= max+1; score += 0.05 {
		a := Tier(score, testWeights, testTiers)
		b := Tier(score, testWeights, testTiers)
		assert.Equal(t, a, b, "score %v", score)
		assert.GreaterOrEqual(t, a, models.ConfidenceLow)
		assert.LessOrEqual(t, a, models.ConfidenceHigh)
	}
}

func TestGradeDoesNotMutateInput(t *testing.T) {
	p := config.InstrumentParams{Weights: testWeights, Tiers: testTiers}
	in := models.Signal{Features: models.Features{Structural: 1, Trend: 1, Quality: 1, Context: 1}}

	out := Grade(in, p)

	assert.Zero(t, in.Score)
	assert.Equal(t, models.ConfidenceLow, in.Confidence)
	assert.InDelta(t, testWeights.Max(), out.Score, 1e-9)
	assert.Equal(t, models.ConfidenceHigh, out.Confidence)
}

func TestStrongBreakoutWithStrongTrendReachesMediumHigh(t *testing.T) {
	// strong structural and trend factors alone clear the MEDIUM_HIGH bar
	p := config.InstrumentParams{Weights: testWeights, Tiers: testTiers}
	sig := Grade(models.Signal{
		Features: models.Features{Structural: 1, Trend: 1},
	}, p)

	assert.True(t, sig.Confidence.AtLeast(models.ConfidenceMediumHigh))
}
