package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
)

var resets = []int{0, 12}

func throttleParams(inst models.Instrument, max int) config.InstrumentParams {
	return config.InstrumentParams{Instrument: inst, MaxPerPeriod: max}
}

func TestPeriodStart(t *testing.T) {
	cases := []struct {
		now  time.Time
		want time.Time
	}{
		{
			time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		},
		{
			time.Date(2026, 3, 10, 5, 30, 0, 0, time.UTC),
			time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, periodStart(resets, tc.now), "now %v", tc.now)
	}

	t.Run("before first boundary rolls to previous day", func(t *testing.T) {
		now := time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC)
		want := time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC)
		assert.Equal(t, want, periodStart([]int{6, 18}, now))
	})
}

func TestThrottleCeilingRejectsNextSignal(t *testing.T) {
	p := throttleParams(models.EURUSD, 2)
	s := NewState()
	now := time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC)

	for i := 0; i < 2; i++ {
		assert.True(t, s.CheckThrottle(p, 12, resets, now).OK)
		s.MarkExecuted(models.EURUSD, resets, now)
	}

	v := s.CheckThrottle(p, 12, resets, now)
	assert.False(t, v.OK)
	assert.Equal(t, ReasonThrottleInstrument, v.Reason)
}

func TestThrottleAggregateCeiling(t *testing.T) {
	s := NewState()
	now := time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC)

	s.MarkExecuted(models.EURUSD, resets, now)
	s.MarkExecuted(models.XAUUSD, resets, now)

	v := s.CheckThrottle(throttleParams(models.BTCEUR, 5), 2, resets, now)
	assert.False(t, v.OK)
	assert.Equal(t, ReasonThrottleAggregate, v.Reason)
}

func TestThrottleLazyResetAtBoundary(t *testing.T) {
	p := throttleParams(models.EURUSD, 1)
	s := NewState()
	before := time.Date(2026, 3, 10, 11, 50, 0, 0, time.UTC)

	s.MarkExecuted(models.EURUSD, resets, before)
	assert.False(t, s.CheckThrottle(p, 12, resets, before).OK)

	// first access after the 12:00 boundary observes zeroed counters
	after := time.Date(2026, 3, 10, 12, 1, 0, 0, time.UTC)
	assert.True(t, s.CheckThrottle(p, 12, resets, after).OK)

	st := s.Stats(resets, after)
	assert.Zero(t, st.Total)
	assert.Equal(t, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC), st.WindowStart)
}

func TestThrottleCountsNeverNegative(t *testing.T) {
	s := NewState()
	now := time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC)
	st := s.Stats(resets, now)

	assert.Zero(t, st.Total)
	for _, c := range st.Counts {
		assert.GreaterOrEqual(t, c, 0)
	}
}

func TestTryExecuteClaimsOrRejects(t *testing.T) {
	p := throttleParams(models.EURUSD, 1)
	s := NewState()
	now := time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC)

	assert.True(t, s.TryExecute(p, 12, resets, now).OK)

	// the ceiling is reached, a second claim fails and does not count
	v := s.TryExecute(p, 12, resets, now.Add(time.Minute))
	assert.False(t, v.OK)
	assert.Equal(t, ReasonThrottleInstrument, v.Reason)

	st := s.Stats(resets, now.Add(time.Minute))
	assert.Equal(t, 1, st.Counts[models.EURUSD])
	assert.Equal(t, 1, st.Total)

	t.Run("aggregate ceiling", func(t *testing.T) {
		s := NewState()
		assert.True(t, s.TryExecute(throttleParams(models.XAUUSD, 3), 1, resets, now).OK)

		v := s.TryExecute(throttleParams(models.BTCEUR, 5), 1, resets, now)
		assert.False(t, v.OK)
		assert.Equal(t, ReasonThrottleAggregate, v.Reason)
		assert.Equal(t, 1, s.Stats(resets, now).Total)
	})
}
