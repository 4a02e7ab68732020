// Package indicator computes the derived series attached to market
// snapshots: moving averages, RSI and the ATR volatility measure, plus the
// ratio classification helpers shared by every strategy evaluator.
package indicator

import (
	"signal_bot/internal/models"
)

// SMA returns a simple moving average aligned to values. Entries before the
// lookback fills are zero.
func SMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if period <= 0 || len(values) < period {
		return out
	}

	var sum float64
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EMA returns an exponential moving average seeded with the SMA of the first
// period values. Entries before the lookback fills are zero.
func EMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if period <= 0 || len(values) < period {
		return out
	}

	var seed float64
	for i := 0; i < period; i++ {
		seed += values[i]
	}
	out[period-1] = seed / float64(period)

	k := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		out[i] = values[i]*k + out[i-1]*(1-k)
	}
	return out
}

// RSI returns the Wilder-smoothed relative strength index over closes.
// Entries before the lookback fills are zero.
func RSI(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	if period <= 0 || len(closes) <= period {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			avgGain += d
		} else {
			avgLoss -= d
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	p := float64(period)
	for i := period + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	return 100 - 100/(1+avgGain/avgLoss)
}

// ATR returns the Wilder-smoothed average true range over candles. Entries
// before the lookback fills are zero.
func ATR(candles []models.Candle, period int) []float64 {
	out := make([]float64, len(candles))
	if period <= 0 || len(candles) < period {
		return out
	}

	tr := make([]float64, len(candles))
	tr[0] = candles[0].Range()
	for i := 1; i < len(candles); i++ {
		tr[i] = trueRange(candles[i], candles[i-1].Close)
	}

	var seed float64
	for i := 0; i < period; i++ {
		seed += tr[i]
	}
	out[period-1] = seed / float64(period)

	p := float64(period)
	for i := period; i < len(candles); i++ {
		out[i] = (out[i-1]*(p-1) + tr[i]) / p
	}
	return out
}

func trueRange(c models.Candle, prevClose float64) float64 {
	r := c.Range()
	if hi := abs(c.High - prevClose); hi > r {
		r = hi
	}
	if lo := abs(c.Low - prevClose); lo > r {
		r = lo
	}
	return r
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
