package service

import (
	"time"

	"signal_bot/internal/indicator"
	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
)

// Breakout detects price escaping an N-bar range, with an EMA trend filter
// and an asymmetric RSI window per direction. Risk is volatility scaled.
type Breakout struct {
	p    config.InstrumentParams
	norm indicator.Normalizer
}

func NewBreakout(p config.InstrumentParams) *Breakout {
	return &Breakout{
		p:    p,
		norm: indicator.NewNormalizer(p.Instrument, p.VolCapMult),
	}
}

func (e *Breakout) Name() string { return "breakout" }

func (e *Breakout) Evaluate(snap models.Snapshot, now time.Time) (models.Signal, bool) {
	need := e.p.RangeBars + 1
	if n := e.p.EMASlow + 1; n > need {
		need = n
	}
	if snap.Len() < need {
		return models.Signal{}, false
	}

	last := snap.Last().Close
	// range over the bars preceding the current one
	hi, lo := rangeBounds(snap.Candles[snap.Len()-1-e.p.RangeBars : snap.Len()-1])

	var side models.Side
	var dist float64
	switch {
	case last > hi:
		side, dist = models.SideBuy, last-hi
	case last < lo:
		side, dist = models.SideSell, lo-last
	default:
		return models.Signal{}, false
	}

	rawATR := snap.LastATR()
	vol := e.norm.Clamp(rawATR)

	ratio := indicator.Ratio(dist, vol)
	bucket := indicator.DefaultRatioBuckets.Classify(ratio)
	if bucket == indicator.StrengthInvalid {
		return models.Signal{}, false
	}

	emaFast := snap.EMAFast[snap.Len()-1]
	emaSlow := snap.EMASlow[snap.Len()-1]
	sep := emaFast - emaSlow
	aligned := (side == models.SideBuy && sep > 0) || (side == models.SideSell && sep < 0)
	trendScore := 0.0
	trendRatio := indicator.Ratio(sep, vol)
	if aligned {
		trendScore = strengthScore(indicator.DefaultTrendBuckets.Classify(trendRatio))
		if trendScore == 0 {
			trendScore = 0.3
		}
	}

	rsi := snap.RSI[snap.Len()-1]
	window := e.p.RSILong
	if side == models.SideSell {
		window = e.p.RSIShort
	}
	quality := 0.0
	if window.Contains(rsi) {
		quality = 1.0
	} else if rsi >= window.Min-5 && rsi <= window.Max+5 {
		quality = 0.5
	}

	context := 1.0
	if vol != rawATR {
		// clamped or capped volatility, trust the ratio less
		context = 0.5
	}

	slDist := vol * e.p.SLMult
	tpDist := slDist * e.p.TPRR
	sl, tp := last-slDist, last+tpDist
	if side == models.SideSell {
		sl, tp = last+slDist, last-tpDist
	}

	return models.Signal{
		Instrument: snap.Instrument,
		Side:       side,
		Strategy:   e.Name(),
		Entry:      last,
		StopLoss:   sl,
		TakeProfit: tp,
		Features: models.Features{
			Structural: strengthScore(bucket),
			Trend:      trendScore,
			Quality:    quality,
			Context:    context,
			Raw: map[string]float64{
				"breakout_ratio": ratio,
				"trend_ratio":    trendRatio,
				"rsi":            rsi,
				"atr":            vol,
			},
		},
		CreatedAt: now,
	}, true
}

func rangeBounds(candles []models.Candle) (hi, lo float64) {
	hi, lo = candles[0].High, candles[0].Low
	for _, c := range candles[1:] {
		if c.High > hi {
			hi = c.High
		}
		if c.Low < lo {
			lo = c.Low
		}
	}
	return hi, lo
}
