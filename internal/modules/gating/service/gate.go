package service

import "signal_bot/internal/models"

// Decide is the final execution gate. Pure and total: every combination of
// confidence and verdicts maps to exactly one decision, and a cooldown or
// throttle rejection forces log-only regardless of confidence. Only HIGH
// confidence with both verdicts passing auto-executes.
func Decide(conf models.Confidence, cooldown, throttle models.Verdict) models.Decision {
	if !cooldown.OK || !throttle.OK {
		return models.DecisionLogOnly
	}
	switch conf {
	case models.ConfidenceHigh:
		return models.DecisionAutoExecute
	case models.ConfidenceMediumHigh:
		return models.DecisionManualConfirm
	default:
		return models.DecisionLogOnly
	}
}
