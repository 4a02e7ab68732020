package service

import (
	"sort"
	"time"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
)

// periodStart returns the most recent reset boundary at or before now.
// Boundaries are fixed UTC hours, typically two per day.
func periodStart(resetHours []int, now time.Time) time.Time {
	if len(resetHours) == 0 {
		return now.UTC().Truncate(24 * time.Hour)
	}
	hours := append([]int(nil), resetHours...)
	sort.Ints(hours)

	u := now.UTC()
	day := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	for i := len(hours) - 1; i >= 0; i-- {
		b := day.Add(time.Duration(hours[i]) * time.Hour)
		if !b.After(u) {
			return b
		}
	}
	// before the first boundary of today: last boundary of yesterday
	return day.AddDate(0, 0, -1).Add(time.Duration(hours[len(hours)-1]) * time.Hour)
}

// roll lazily zeroes the counters when a reset boundary has passed.
// Callers hold s.mu.
func (s *State) roll(resetHours []int, now time.Time) {
	start := periodStart(resetHours, now)
	if s.windowStart.Equal(start) {
		return
	}
	s.windowStart = start
	s.counts = make(map[models.Instrument]int)
	s.total = 0
}

// CheckThrottle verifies both the per-instrument and the aggregate ceilings
// have headroom in the current window. Read-only apart from the lazy reset.
func (s *State) CheckThrottle(p config.InstrumentParams, aggregateMax int, resetHours []int, now time.Time) models.Verdict {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roll(resetHours, now)

	if s.counts[p.Instrument] >= p.MaxPerPeriod {
		return models.Reject(ReasonThrottleInstrument)
	}
	if s.total >= aggregateMax {
		return models.Reject(ReasonThrottleAggregate)
	}
	return models.Accept()
}

// TryExecute claims one execution slot: both ceilings are verified and the
// counters incremented in the same lock window. Execution paths use this
// rather than CheckThrottle+MarkExecuted, because a concurrent confirmation
// can consume the last slot between a separate check and increment.
func (s *State) TryExecute(p config.InstrumentParams, aggregateMax int, resetHours []int, now time.Time) models.Verdict {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roll(resetHours, now)

	if s.counts[p.Instrument] >= p.MaxPerPeriod {
		return models.Reject(ReasonThrottleInstrument)
	}
	if s.total >= aggregateMax {
		return models.Reject(ReasonThrottleAggregate)
	}
	s.counts[p.Instrument]++
	s.total++
	return models.Accept()
}

// MarkExecuted unconditionally records an execution against the current
// window, e.g. a trade placed outside the gate.
func (s *State) MarkExecuted(inst models.Instrument, resetHours []int, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roll(resetHours, now)

	s.counts[inst]++
	s.total++
}
