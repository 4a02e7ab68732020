package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal_bot/internal/models"
	"signal_bot/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestStaticStoreFillsDefaults(t *testing.T) {
	s := NewStaticStore(&Config{})
	cfg := s.Get()

	assert.Equal(t, 90*time.Second, cfg.Scan.Interval)
	assert.Equal(t, []int{0, 12}, cfg.Throttle.ResetHours)
	assert.Equal(t, 12, cfg.Throttle.AggregateMax)
	assert.InDelta(t, 0.78, cfg.Scorer.Tiers.High, 1e-9)
	require.Len(t, cfg.Instruments, 3)
}

func TestDefaultParamsPerInstrument(t *testing.T) {
	cfg := NewStaticStore(&Config{}).Get()

	t.Run("eurusd is volatility scaled", func(t *testing.T) {
		p := cfg.Params(models.EURUSD)
		assert.Equal(t, 1.5, p.SLMult)
		assert.Equal(t, 2.0, p.TPRR)
		assert.Zero(t, p.FixedSL)
		assert.Equal(t, 600*time.Second, p.CooldownInstrument)
		assert.Equal(t, 4, p.MaxPerPeriod)
	})

	t.Run("xauusd has fixed risk and sessions", func(t *testing.T) {
		p := cfg.Params(models.XAUUSD)
		assert.Equal(t, 8.0, p.FixedSL)
		assert.Equal(t, 16.0, p.FixedTP)
		assert.Equal(t, 50.0, p.LevelStep)
		require.Len(t, p.Sessions, 2)
		assert.True(t, p.Sessions[0].Contains(8))
		assert.False(t, p.Sessions[0].Contains(17))
	})

	t.Run("btceur carries expiry bounds", func(t *testing.T) {
		p := cfg.Params(models.BTCEUR)
		assert.Equal(t, 180*time.Minute, p.ExpiryMin)
		assert.Equal(t, 240*time.Minute, p.ExpiryMax)
		assert.Equal(t, 5, p.MaxPerPeriod)
	})
}

func TestMergeKeepsExplicitValues(t *testing.T) {
	in := &Config{
		Instruments: map[string]InstrumentParams{
			"EURUSD": {SLMult: 2.5, MaxPerPeriod: 1},
		},
	}
	cfg := NewStaticStore(in).Get()
	p := cfg.Params(models.EURUSD)

	assert.Equal(t, 2.5, p.SLMult)
	assert.Equal(t, 1, p.MaxPerPeriod)
	// unset fields still get defaults
	assert.Equal(t, 14, p.ATRPeriod)
	assert.Equal(t, 0.0050, p.ZoneWidth)
}

func TestParamsResolvesScorerOverrides(t *testing.T) {
	in := &Config{
		Instruments: map[string]InstrumentParams{
			"XAUUSD": {Weights: ScorerWeights{Structural: 4, Trend: 2, Quality: 2, Context: 2}},
		},
	}
	cfg := NewStaticStore(in).Get()

	assert.Equal(t, 4.0, cfg.Params(models.XAUUSD).Weights.Structural)
	// no override falls through to the top-level scorer defaults
	assert.Equal(t, 3.0, cfg.Params(models.EURUSD).Weights.Structural)
	assert.InDelta(t, 0.55, cfg.Params(models.EURUSD).Tiers.MediumHigh, 1e-9)
}

func TestSessionWindow(t *testing.T) {
	w := SessionWindow{Start: 13, End: 22}
	assert.True(t, w.Contains(13))
	assert.True(t, w.Contains(21))
	assert.False(t, w.Contains(22))
	assert.False(t, w.Contains(7))
}

func TestNormalizeCanonicalizesInstrumentKeys(t *testing.T) {
	in := &Config{Instruments: map[string]InstrumentParams{
		"eurusd": {MinRR: 2.5},
	}}
	cfg := NewStaticStore(in).Get()

	assert.Equal(t, 2.5, cfg.Params(models.EURUSD).MinRR)
	_, lower := cfg.Instruments["eurusd"]
	assert.False(t, lower)
}
