package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"signal_bot/internal/models"
)

func TestGateOnlyHighAutoExecutes(t *testing.T) {
	pass := models.Accept()
	all := []models.Confidence{
		models.ConfidenceLow,
		models.ConfidenceLowMedium,
		models.ConfidenceMedium,
		models.ConfidenceMediumHigh,
		models.ConfidenceHigh,
	}

	for _, c := range all {
		got := Decide(c, pass, pass)
		switch c {
		case models.ConfidenceHigh:
			assert.Equal(t, models.DecisionAutoExecute, got)
		case models.ConfidenceMediumHigh:
			assert.Equal(t, models.DecisionManualConfirm, got)
		default:
			assert.Equal(t, models.DecisionLogOnly, got, "confidence %s", c)
		}
	}
}

func TestGateRejectionForcesLogOnly(t *testing.T) {
	pass := models.Accept()
	fail := models.Reject(ReasonCooldownInstrument)

	for _, c := range []models.Confidence{models.ConfidenceHigh, models.ConfidenceMediumHigh} {
		assert.Equal(t, models.DecisionLogOnly, Decide(c, fail, pass), "cooldown reject, %s", c)
		assert.Equal(t, models.DecisionLogOnly, Decide(c, pass, fail), "throttle reject, %s", c)
		assert.Equal(t, models.DecisionLogOnly, Decide(c, fail, fail), "both reject, %s", c)
	}
}

func TestGateIsTotal(t *testing.T) {
	verdicts := []models.Verdict{models.Accept(), models.Reject("x")}
	for c := models.ConfidenceLow; c <= models.ConfidenceHigh; c++ {
		for _, cv := range verdicts {
			for _, tv := range verdicts {
				got := Decide(c, cv, tv)
				assert.Contains(t, []models.Decision{
					models.DecisionLogOnly,
					models.DecisionManualConfirm,
					models.DecisionAutoExecute,
				}, got)
			}
		}
	}
}
