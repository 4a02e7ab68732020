package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal_bot/internal/models"
)

func TestSMA(t *testing.T) {
	t.Run("fills after lookback", func(t *testing.T) {
		out := SMA([]float64{1, 2, 3, 4, 5}, 3)
		require.Len(t, out, 5)
		assert.Zero(t, out[0])
		assert.Zero(t, out[1])
		assert.InDelta(t, 2.0, out[2], 1e-9)
		assert.InDelta(t, 3.0, out[3], 1e-9)
		assert.InDelta(t, 4.0, out[4], 1e-9)
	})

	t.Run("short series stays zero", func(t *testing.T) {
		out := SMA([]float64{1, 2}, 3)
		assert.Equal(t, []float64{0, 0}, out)
	})
}

func TestEMA(t *testing.T) {
	out := EMA([]float64{2, 2, 2, 2, 10}, 3)
	require.Len(t, out, 5)
	assert.InDelta(t, 2.0, out[2], 1e-9)
	assert.InDelta(t, 2.0, out[3], 1e-9)
	// k=0.5: 10*0.5 + 2*0.5
	assert.InDelta(t, 6.0, out[4], 1e-9)
}

func TestRSI(t *testing.T) {
	t.Run("all gains saturates at 100", func(t *testing.T) {
		out := RSI([]float64{1, 2, 3, 4, 5, 6}, 3)
		assert.InDelta(t, 100.0, out[5], 1e-9)
	})

	t.Run("flat series reads neutral extremes", func(t *testing.T) {
		out := RSI([]float64{5, 5, 5, 5, 5}, 3)
		// no losses at all, Wilder convention pins to 100
		assert.InDelta(t, 100.0, out[4], 1e-9)
	})
}

func TestATR(t *testing.T) {
	candles := []models.Candle{
		{High: 11, Low: 9, Close: 10},
		{High: 12, Low: 10, Close: 11},
		{High: 13, Low: 11, Close: 12},
		{High: 14, Low: 12, Close: 13},
	}
	out := ATR(candles, 3)
	require.Len(t, out, 4)
	assert.Zero(t, out[0])
	assert.InDelta(t, 2.0, out[2], 1e-9)
	assert.InDelta(t, 2.0, out[3], 1e-9)
}

func TestBucketsClassify(t *testing.T) {
	b := DefaultRatioBuckets
	cases := []struct {
		ratio float64
		want  Strength
	}{
		{0.90, StrengthStrong},
		{0.60, StrengthStrong},
		{0.59, StrengthMedium},
		{0.40, StrengthMedium},
		{0.39, StrengthWeak},
		{0.25, StrengthWeak},
		{0.249, StrengthInvalid},
		{0, StrengthInvalid},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, b.Classify(tc.ratio), "ratio %v", tc.ratio)
	}
}

func TestBucketsAreTotal(t *testing.T) {
	// every ratio lands in exactly one bucket and the mapping is monotone
	b := DefaultRatioBuckets
	prev := StrengthStrong
	for r := 1.0; r >= 0; r -= 0.01 {
		s := b.Classify(r)
		assert.LessOrEqual(t, s, prev, "ratio %v", r)
		prev = s
	}
}

func TestNormalizerClamp(t *testing.T) {
	n := Normalizer{Default: 0.0010, CapMult: 5}

	t.Run("degenerate falls back to default", func(t *testing.T) {
		assert.Equal(t, 0.0010, n.Clamp(0))
		assert.Equal(t, 0.0010, n.Clamp(-1))
		assert.Equal(t, 0.0010, n.Clamp(math.NaN()))
		assert.Equal(t, 0.0010, n.Clamp(math.Inf(1)))
	})

	t.Run("extreme capped at multiple", func(t *testing.T) {
		assert.InDelta(t, 0.0050, n.Clamp(0.5), 1e-9)
	})

	t.Run("sane value passes through", func(t *testing.T) {
		assert.Equal(t, 0.0012, n.Clamp(0.0012))
	})
}

func TestRatio(t *testing.T) {
	assert.InDelta(t, 0.9, Ratio(0.0009, 0.0010), 1e-9)
	assert.InDelta(t, 0.9, Ratio(-0.0009, 0.0010), 1e-9)
	assert.Zero(t, Ratio(1, 0))
}

func TestRoundToStep(t *testing.T) {
	t.Run("rounds to nearest level", func(t *testing.T) {
		assert.InDelta(t, 2050.0, RoundToStep(2031.40, 50), 1e-9)
		assert.InDelta(t, 2000.0, RoundToStep(2024.9, 50), 1e-9)
	})

	t.Run("distance never exceeds half a step", func(t *testing.T) {
		for p := 1900.0; p < 2100; p += 7.3 {
			lvl := RoundToStep(p, 50)
			assert.LessOrEqual(t, math.Abs(p-lvl), 25.0+1e-9, "price %v", p)
		}
	})
}
