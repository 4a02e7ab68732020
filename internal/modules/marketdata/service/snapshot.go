package service

import (
	"context"

	"github.com/pkg/errors"

	"signal_bot/internal/indicator"
	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
)

// ErrInsufficientHistory means the buffer is shorter than the evaluator
// lookback; the scan loop skips the instrument for the cycle.
var ErrInsufficientHistory = errors.New("insufficient candle history")

// Provider is what the scan loop sees of the market-data layer.
type Provider interface {
	Snapshot(ctx context.Context, inst models.Instrument, p config.InstrumentParams) (models.Snapshot, error)
}

// Snapshot copies the current buffer and attaches the derived series the
// instrument's evaluators need. Pure in-memory work, never blocks on IO.
func (c *Client) Snapshot(_ context.Context, inst models.Instrument, p config.InstrumentParams) (models.Snapshot, error) {
	c.mu.RLock()
	buf := c.buffers[inst]
	candles := make([]models.Candle, len(buf))
	copy(candles, buf)
	c.mu.RUnlock()

	if len(candles) < requiredBars(p) {
		return models.Snapshot{}, errors.Wrapf(ErrInsufficientHistory, "%s: %d bars", inst, len(candles))
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	snap := models.Snapshot{
		Instrument: inst,
		Candles:    candles,
		ATR:        indicator.ATR(candles, p.ATRPeriod),
	}
	if p.EMAFast > 0 {
		snap.EMAFast = indicator.EMA(closes, p.EMAFast)
	}
	if p.EMASlow > 0 {
		snap.EMASlow = indicator.EMA(closes, p.EMASlow)
	}
	if p.RSIPeriod > 0 {
		snap.RSI = indicator.RSI(closes, p.RSIPeriod)
	}
	if p.SMAPeriod > 0 {
		snap.SMAMid = indicator.SMA(closes, p.SMAPeriod)
	}
	return snap, nil
}

// requiredBars is the deepest lookback any evaluator of the instrument
// touches.
func requiredBars(p config.InstrumentParams) int {
	need := p.ATRPeriod + 1
	if n := p.EMASlow + 1; n > need {
		need = n
	}
	if n := p.RSIPeriod + 1; n > need {
		need = n
	}
	if n := p.RangeBars + 1; n > need {
		need = n
	}
	if n := p.SMAPeriod + p.SlopeBars; n > need {
		need = n
	}
	if need < 2 {
		need = 2
	}
	return need
}
