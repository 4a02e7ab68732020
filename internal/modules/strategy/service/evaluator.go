package service

import (
	"time"

	"signal_bot/internal/indicator"
	"signal_bot/internal/models"
)

// Evaluator maps a market snapshot to at most one candidate signal.
// "No setup" (ok=false) is the common outcome, not an error.
type Evaluator interface {
	Name() string
	Evaluate(snap models.Snapshot, now time.Time) (models.Signal, bool)
}

// Chain tries evaluators in order and stops at the first one that produces
// a signal.
type Chain struct {
	evals []Evaluator
}

func NewChain(evals ...Evaluator) Chain {
	return Chain{evals: evals}
}

func (c Chain) Evaluate(snap models.Snapshot, now time.Time) (models.Signal, bool) {
	for _, e := range c.evals {
		if sig, ok := e.Evaluate(snap, now); ok {
			return sig, true
		}
	}
	return models.Signal{}, false
}

// Names lists the chained evaluators in order, for logging.
func (c Chain) Names() []string {
	out := make([]string, 0, len(c.evals))
	for _, e := range c.evals {
		out = append(out, e.Name())
	}
	return out
}

// strengthScore converts a bucket into a factor value in [0,1].
func strengthScore(s indicator.Strength) float64 {
	switch s {
	case indicator.StrengthStrong:
		return 1.0
	case indicator.StrengthMedium:
		return 0.7
	case indicator.StrengthWeak:
		return 0.4
	default:
		return 0
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
