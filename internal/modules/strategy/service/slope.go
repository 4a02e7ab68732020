package service

import (
	"time"

	"signal_bot/internal/indicator"
	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
)

// Slope trades in the direction of a medium-term moving average's slope.
// Crossover and separation features are volatility ratios, and every signal
// carries an explicit expiry.
type Slope struct {
	p    config.InstrumentParams
	norm indicator.Normalizer
}

func NewSlope(p config.InstrumentParams) *Slope {
	return &Slope{
		p:    p,
		norm: indicator.NewNormalizer(p.Instrument, p.VolCapMult),
	}
}

func (e *Slope) Name() string { return "momentum_slope" }

func (e *Slope) Evaluate(snap models.Snapshot, now time.Time) (models.Signal, bool) {
	need := e.p.SMAPeriod + e.p.SlopeBars
	if n := e.p.EMASlow + 1; n > need {
		need = n
	}
	if snap.Len() < need {
		return models.Signal{}, false
	}

	i := snap.Len() - 1
	smaNow := snap.SMAMid[i]
	smaPrev := snap.SMAMid[i-e.p.SlopeBars]
	if smaNow == 0 || smaPrev == 0 {
		return models.Signal{}, false
	}

	slope := smaNow - smaPrev
	if slope == 0 {
		return models.Signal{}, false
	}
	// the slope sign alone sets the direction bias
	side := models.SideBuy
	if slope < 0 {
		side = models.SideSell
	}

	rawATR := snap.LastATR()
	vol := e.norm.Clamp(rawATR)

	slopeRatio := indicator.Ratio(slope, vol)
	bucket := indicator.DefaultTrendBuckets.Classify(slopeRatio)
	structural := strengthScore(bucket)
	if structural == 0 {
		return models.Signal{}, false
	}

	sep := snap.EMAFast[i] - snap.EMASlow[i]
	sepAligned := (side == models.SideBuy && sep > 0) || (side == models.SideSell && sep < 0)
	sepRatio := indicator.Ratio(sep, vol)
	trend := 0.0
	if sepAligned {
		trend = strengthScore(indicator.DefaultTrendBuckets.Classify(sepRatio))
		if trend == 0 {
			trend = 0.3
		}
	}

	price := snap.Price()
	quality := 0.4
	if (side == models.SideBuy && price > smaNow) || (side == models.SideSell && price < smaNow) {
		quality = 1.0
	}

	context := 1.0
	if vol != rawATR {
		context = 0.5
	}

	slDist := vol * e.p.SLMult
	tpDist := slDist * e.p.TPRR
	sl, tp := price-slDist, price+tpDist
	if side == models.SideSell {
		sl, tp = price+slDist, price-tpDist
	}

	// stronger slopes stay actionable longer, bounded by the config window
	expiry := e.p.ExpiryMin + time.Duration(float64(e.p.ExpiryMax-e.p.ExpiryMin)*clamp01(structural))

	return models.Signal{
		Instrument: snap.Instrument,
		Side:       side,
		Strategy:   e.Name(),
		Entry:      price,
		StopLoss:   sl,
		TakeProfit: tp,
		Features: models.Features{
			Structural: structural,
			Trend:      trend,
			Quality:    quality,
			Context:    context,
			Raw: map[string]float64{
				"slope":            slope,
				"slope_ratio":      slopeRatio,
				"separation_ratio": sepRatio,
				"atr":              vol,
			},
		},
		CreatedAt: now,
		ExpiresAt: now.Add(expiry),
	}, true
}
