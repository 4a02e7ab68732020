// Package service holds the gating pipeline: confidence scoring, the
// duplicate/cooldown filter, the period trade throttle and the execution
// gate. All shared mutable state lives in State behind one mutex so the
// scan loop and the asynchronous confirmation handler never race.
package service

import (
	"sync"
	"time"

	"signal_bot/internal/models"
)

type dirKey struct {
	inst models.Instrument
	side models.Side
}

type zoneKey struct {
	inst models.Instrument
	side models.Side
	zone float64
}

type zoneRecord struct {
	at    time.Time
	price float64
}

// State is the only mutable store of the gating pipeline: cooldown records
// and the period trade counters. Injected explicitly into the scan loop and
// the confirmation handler; tests build a fresh one each.
type State struct {
	mu sync.Mutex

	lastInstrument map[models.Instrument]time.Time
	lastDirection  map[dirKey]time.Time
	lastPrice      map[models.Instrument]float64
	zones          map[zoneKey]zoneRecord

	windowStart time.Time
	counts      map[models.Instrument]int
	total       int
}

func NewState() *State {
	return &State{
		lastInstrument: make(map[models.Instrument]time.Time),
		lastDirection:  make(map[dirKey]time.Time),
		lastPrice:      make(map[models.Instrument]float64),
		zones:          make(map[zoneKey]zoneRecord),
		counts:         make(map[models.Instrument]int),
	}
}

// Stats is a point-in-time snapshot of the gating state, for the status
// command and the periodic summary log.
type Stats struct {
	WindowStart time.Time
	Counts      map[models.Instrument]int
	Total       int
	ActiveZones int
	LastSignal  map[models.Instrument]time.Time
}

// Stats returns a copy of the current counters, rolling the throttle window
// first so a stale period is never reported.
func (s *State) Stats(resetHours []int, now time.Time) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roll(resetHours, now)

	st := Stats{
		WindowStart: s.windowStart,
		Counts:      make(map[models.Instrument]int, len(s.counts)),
		Total:       s.total,
		ActiveZones: len(s.zones),
		LastSignal:  make(map[models.Instrument]time.Time, len(s.lastInstrument)),
	}
	for k, v := range s.counts {
		st.Counts[k] = v
	}
	for k, v := range s.lastInstrument {
		st.LastSignal[k] = v
	}
	return st
}

// GC drops cooldown records older than the retention horizon.
func (s *State) GC(horizon time.Duration, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, rec := range s.zones {
		if now.Sub(rec.at) > horizon {
			delete(s.zones, k)
			removed++
		}
	}
	return removed
}
