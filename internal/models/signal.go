package models

import (
	"fmt"
	"time"
)

// Side is the direction of a proposed trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Opposite returns the other direction.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// Confidence is the ordinal tier assigned by the scorer. Higher is stronger.
type Confidence int

const (
	ConfidenceLow Confidence = iota
	ConfidenceLowMedium
	ConfidenceMedium
	ConfidenceMediumHigh
	ConfidenceHigh
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "HIGH"
	case ConfidenceMediumHigh:
		return "MEDIUM_HIGH"
	case ConfidenceMedium:
		return "MEDIUM"
	case ConfidenceLowMedium:
		return "LOW_MEDIUM"
	default:
		return "LOW"
	}
}

// AtLeast reports whether c is the given tier or stronger.
func (c Confidence) AtLeast(min Confidence) bool {
	return c >= min
}

// Decision is the execution route chosen by the gate.
type Decision string

const (
	DecisionLogOnly       Decision = "LOG_ONLY"
	DecisionManualConfirm Decision = "MANUAL_CONFIRM"
	DecisionAutoExecute   Decision = "AUTO_EXECUTE"
)

// Features holds the per-factor inputs to the scorer in [0,1], plus the raw
// strategy measurements kept for the audit trail.
type Features struct {
	Structural float64            `json:"structural"`
	Trend      float64            `json:"trend"`
	Quality    float64            `json:"quality"`
	Context    float64            `json:"context"`
	Raw        map[string]float64 `json:"raw,omitempty"`
}

// Signal is an immutable trade proposal produced by a strategy evaluator.
// Scoring and gating annotate copies; the originating evaluator output is
// never mutated after creation.
type Signal struct {
	Instrument Instrument
	Side       Side
	Strategy   string

	Entry      float64
	StopLoss   float64
	TakeProfit float64

	Features   Features
	Score      float64
	Confidence Confidence

	CreatedAt time.Time
	ExpiresAt time.Time
}

// Fingerprint identifies the signal for duplicate detection: instrument,
// direction, and the entry rounded to the instrument's zone width are what
// make two signals "the same trade".
func (s Signal) Fingerprint(zoneWidth float64) string {
	zone := s.Entry
	if zoneWidth > 0 {
		zone = float64(int64(s.Entry/zoneWidth+0.5)) * zoneWidth
	}
	return fmt.Sprintf("%s:%s:%.5f", s.Instrument, s.Side, zone)
}

// RiskReward returns take-profit distance over stop-loss distance, or zero
// when the stop distance is degenerate.
func (s Signal) RiskReward() float64 {
	risk := s.Entry - s.StopLoss
	reward := s.TakeProfit - s.Entry
	if s.Side == SideSell {
		risk, reward = -risk, -reward
	}
	if risk <= 0 {
		return 0
	}
	return reward / risk
}

// Verdict is the outcome of a single gating check. Reason is machine
// readable and stable, suitable for the audit sink.
type Verdict struct {
	OK     bool
	Reason string
}

// Accept is the passing verdict.
func Accept() Verdict {
	return Verdict{OK: true}
}

// Reject builds a failing verdict with a stable reason code.
func Reject(reason string) Verdict {
	return Verdict{OK: false, Reason: reason}
}
