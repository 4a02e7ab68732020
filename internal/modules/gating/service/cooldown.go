package service

import (
	"math"
	"time"

	"signal_bot/internal/indicator"
	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
)

// Rejection reason codes recorded in the audit trail. Stable strings, the
// sink and operators grep for them.
const (
	ReasonCooldownInstrument = "cooldown_instrument"
	ReasonCooldownDirection  = "cooldown_direction"
	ReasonZoneRecent         = "zone_recent"
	ReasonMinPriceMove       = "min_price_move"
	ReasonThrottleInstrument = "throttle_instrument"
	ReasonThrottleAggregate  = "throttle_aggregate"
	ReasonLowConfidence      = "low_confidence"
	ReasonRiskReward         = "risk_reward"
)

// CheckCooldown runs the four suppression checks in order, short-circuiting
// on the first failure. It never mutates state; acceptance is recorded
// separately via MarkAccepted.
func (s *State) CheckCooldown(sig models.Signal, p config.InstrumentParams, now time.Time) models.Verdict {
	s.mu.Lock()
	defer s.mu.Unlock()

	if at, ok := s.lastInstrument[sig.Instrument]; ok && now.Sub(at) < p.CooldownInstrument {
		return models.Reject(ReasonCooldownInstrument)
	}

	dk := dirKey{inst: sig.Instrument, side: sig.Side}
	if at, ok := s.lastDirection[dk]; ok && now.Sub(at) < p.CooldownDirection {
		return models.Reject(ReasonCooldownDirection)
	}

	zk := zoneKey{inst: sig.Instrument, side: sig.Side, zone: indicator.RoundToStep(sig.Entry, p.ZoneWidth)}
	if rec, ok := s.zones[zk]; ok && now.Sub(rec.at) < p.ZoneRetention {
		return models.Reject(ReasonZoneRecent)
	}

	if last, ok := s.lastPrice[sig.Instrument]; ok && math.Abs(sig.Entry-last) < p.MinPriceMove {
		return models.Reject(ReasonMinPriceMove)
	}

	return models.Accept()
}

// MarkAccepted refreshes every cooldown record touched by an accepted
// signal. Timestamps only move forward.
func (s *State) MarkAccepted(sig models.Signal, p config.InstrumentParams, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if at, ok := s.lastInstrument[sig.Instrument]; !ok || now.After(at) {
		s.lastInstrument[sig.Instrument] = now
	}
	dk := dirKey{inst: sig.Instrument, side: sig.Side}
	if at, ok := s.lastDirection[dk]; !ok || now.After(at) {
		s.lastDirection[dk] = now
	}
	zk := zoneKey{inst: sig.Instrument, side: sig.Side, zone: indicator.RoundToStep(sig.Entry, p.ZoneWidth)}
	if rec, ok := s.zones[zk]; !ok || now.After(rec.at) {
		s.zones[zk] = zoneRecord{at: now, price: sig.Entry}
	}
	s.lastPrice[sig.Instrument] = sig.Entry
}
