package service

import (
	"sync/atomic"
	"time"
)

// State tracks process health for the admin endpoints. Liveness is
// implicit (the HTTP server answers), readiness means the market feed
// is connected and the scan loop has completed at least one cycle
// recently.
type State struct {
	started time.Time

	ready       atomic.Bool
	feedUp      atomic.Bool
	lastCycleNS atomic.Int64
}

func NewState() *State {
	return &State{started: time.Now()}
}

// SetReady flips the top-level readiness bit. The scanner sets it once
// its loop is running.
func (s *State) SetReady(v bool) { s.ready.Store(v) }

// SetFeedUp records whether the market data websocket is currently
// connected.
func (s *State) SetFeedUp(v bool) { s.feedUp.Store(v) }

// TouchCycle stamps the completion time of a scan cycle.
func (s *State) TouchCycle(now time.Time) { s.lastCycleNS.Store(now.UnixNano()) }

func (s *State) Ready() bool  { return s.ready.Load() }
func (s *State) FeedUp() bool { return s.feedUp.Load() }

// LastCycle returns the time of the most recent completed scan cycle,
// zero if none has run yet.
func (s *State) LastCycle() time.Time {
	ns := s.lastCycleNS.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

func (s *State) Uptime() time.Duration { return time.Since(s.started) }
