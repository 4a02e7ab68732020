package service

import (
	"math"
	"time"

	"signal_bot/internal/indicator"
	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
)

// Levels is the mean-reversion evaluator around psychological price levels.
// Only active inside the configured session hours; risk is a fixed absolute
// distance, not volatility scaled.
type Levels struct {
	p config.InstrumentParams
}

func NewLevels(p config.InstrumentParams) *Levels {
	return &Levels{p: p}
}

func (e *Levels) Name() string { return "level_reversion" }

func (e *Levels) Evaluate(snap models.Snapshot, now time.Time) (models.Signal, bool) {
	if snap.Len() < 2 {
		return models.Signal{}, false
	}
	hour := now.UTC().Hour()
	if !e.inSession(hour) {
		return models.Signal{}, false
	}

	price := snap.Price()
	level := indicator.RoundToStep(price, e.p.LevelStep)
	dist := math.Abs(price - level)

	var structural float64
	switch {
	case dist <= e.p.LevelStrong:
		structural = 1.0
	case dist <= e.p.LevelMedium:
		structural = 0.7
	case dist <= e.p.LevelWeak:
		structural = 0.4
	default:
		return models.Signal{}, false
	}

	c := snap.Last()
	r := c.Range()
	if r <= 0 {
		return models.Signal{}, false
	}

	// the rejection wick picks the direction: a long lower wick means the
	// level held as support, a long upper wick means it held as resistance
	var side models.Side
	var wick float64
	switch {
	case c.LowerWick() >= e.p.WickMin*r:
		side, wick = models.SideBuy, c.LowerWick()
	case c.UpperWick() >= e.p.WickMin*r:
		side, wick = models.SideSell, c.UpperWick()
	default:
		return models.Signal{}, false
	}

	bullish := c.Close >= c.Open
	trend := 0.4
	if (side == models.SideBuy && bullish) || (side == models.SideSell && !bullish) {
		trend = 1.0
	}

	quality := clamp01(wick / r / (2 * e.p.WickMin))

	context := 0.7
	if e.inAllSessions(hour) {
		// session overlap carries the deepest liquidity
		context = 1.0
	}

	sl, tp := price-e.p.FixedSL, price+e.p.FixedTP
	if side == models.SideSell {
		sl, tp = price+e.p.FixedSL, price-e.p.FixedTP
	}

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
				"level":          level,
				"level_distance": dist,
				"wick_ratio":     wick / r,
				"session_hour":   float64(hour),
			},
		},
		CreatedAt: now,
	}, true
}

func (e *Levels) inSession(hour int) bool {
	for _, w := range e.p.Sessions {
		if w.Contains(hour) {
			return true
		}
	}
	return false
}

func (e *Levels) inAllSessions(hour int) bool {
	if len(e.p.Sessions) < 2 {
		return false
	}
	for _, w := range e.p.Sessions {
		if !w.Contains(hour) {
			return false
		}
	}
	return true
}
