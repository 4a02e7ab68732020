package service

import (
	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
)

// Score sums the four weighted factors. Factors are clamped into [0,1] so a
// misbehaving evaluator cannot push the total past the weight ceiling;
// partial credit accumulates linearly.
func Score(f models.Features, w config.ScorerWeights) float64 {
	return clamp01(f.Structural)*w.Structural +
		clamp01(f.Trend)*w.Trend +
		clamp01(f.Quality)*w.Quality +
		clamp01(f.Context)*w.Context
}

// Tier maps a score onto the five-level confidence scale via fractions of
// the maximum attainable score. Total: every score lands in exactly one
// tier.
func Tier(score float64, w config.ScorerWeights, t config.TierFractions) models.Confidence {
	max := w.Max()
	if max <= 0 {
		return models.ConfidenceLow
	}
	frac := score / max
	switch {
	case frac >= t.High:
		return models.ConfidenceHigh
	case frac >= t.MediumHigh:
		return models.ConfidenceMediumHigh
	case frac >= t.Medium:
		return models.ConfidenceMedium
	case frac >= t.LowMedium:
		return models.ConfidenceLowMedium
	default:
		return models.ConfidenceLow
	}
}

// Grade returns a copy of the signal with its score and confidence tier
// attached. The input is never modified.
func Grade(sig models.Signal, p config.InstrumentParams) models.Signal {
	sig.Score = Score(sig.Features, p.Weights)
	sig.Confidence = Tier(sig.Score, p.Weights, p.Tiers)
	return sig
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
