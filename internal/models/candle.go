package models

import "time"

// Candle is one closed OHLC bar.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Body returns the absolute body size of the candle.
func (c Candle) Body() float64 {
	b := c.Close - c.Open
	if b < 0 {
		return -b
	}
	return b
}

// Range returns high minus low.
func (c Candle) Range() float64 {
	return c.High - c.Low
}

// UpperWick returns the distance from the body top to the high.
func (c Candle) UpperWick() float64 {
	top := c.Open
	if c.Close > top {
		top = c.Close
	}
	return c.High - top
}

// LowerWick returns the distance from the body bottom to the low.
func (c Candle) LowerWick() float64 {
	bot := c.Open
	if c.Close < bot {
		bot = c.Close
	}
	return bot - c.Low
}

// Snapshot is the immutable per-instrument market view handed to evaluators.
// Candles are ordered oldest first; derived series are aligned with Candles
// (same length, leading entries may be zero until the lookback fills).
type Snapshot struct {
	Instrument Instrument
	Candles    []Candle

	ATR     []float64
	RSI     []float64
	EMAFast []float64
	EMASlow []float64
	SMAMid  []float64
}

// Len returns the number of candles in the snapshot.
func (s Snapshot) Len() int {
	return len(s.Candles)
}

// Last returns the most recent closed candle.
func (s Snapshot) Last() Candle {
	return s.Candles[len(s.Candles)-1]
}

// LastATR returns the most recent ATR value.
func (s Snapshot) LastATR() float64 {
	return s.ATR[len(s.ATR)-1]
}

// Price returns the close of the most recent candle.
func (s Snapshot) Price() float64 {
	return s.Last().Close
}
