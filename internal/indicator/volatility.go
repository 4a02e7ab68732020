package indicator

import (
	"math"

	"signal_bot/internal/models"
)

// Strength buckets a volatility-relative ratio. Ordered weakest to
// strongest so comparisons read naturally.
type Strength int

const (
	StrengthInvalid Strength = iota
	StrengthWeak
	StrengthMedium
	StrengthStrong
)

func (s Strength) String() string {
	switch s {
	case StrengthStrong:
		return "strong"
	case StrengthMedium:
		return "medium"
	case StrengthWeak:
		return "weak"
	default:
		return "invalid"
	}
}

// Buckets holds the ordered ratio thresholds for a classification.
// Strong > Medium > Weak is a config invariant, not enforced here.
type Buckets struct {
	Strong float64
	Medium float64
	Weak   float64
}

// DefaultRatioBuckets classifies breakout and level strength ratios.
var DefaultRatioBuckets = Buckets{Strong: 0.6, Medium: 0.4, Weak: 0.25}

// DefaultTrendBuckets classifies EMA-separation trend ratios. Anything
// below Weak still counts as weak alignment, not an invalid setup.
var DefaultTrendBuckets = Buckets{Strong: 0.5, Medium: 0.3, Weak: 0}

// Classify maps a ratio onto the bucket scale.
func (b Buckets) Classify(r float64) Strength {
	switch {
	case r >= b.Strong:
		return StrengthStrong
	case r >= b.Medium:
		return StrengthMedium
	case r >= b.Weak:
		return StrengthWeak
	default:
		return StrengthInvalid
	}
}

// DefaultVolatility is the per-instrument fallback volatility used when the
// computed ATR is degenerate or the series is too short.
func DefaultVolatility(inst models.Instrument) float64 {
	switch inst {
	case models.EURUSD:
		return 0.0010
	case models.XAUUSD:
		return 8.0
	case models.BTCEUR:
		return 400
	}
	return 1
}

// Normalizer clamps a raw volatility measure into a usable range for one
// instrument: degenerate values fall back to Default, extreme values are
// capped at CapMult multiples of it so one bad bar cannot skew every
// downstream ratio.
type Normalizer struct {
	Default float64
	CapMult float64
}

// NewNormalizer builds a normalizer for the instrument with a cap at
// capMult times the instrument default.
func NewNormalizer(inst models.Instrument, capMult float64) Normalizer {
	return Normalizer{Default: DefaultVolatility(inst), CapMult: capMult}
}

// Clamp sanitizes a raw volatility value.
func (n Normalizer) Clamp(vol float64) float64 {
	if vol <= 0 || math.IsNaN(vol) || math.IsInf(vol, 0) {
		return n.Default
	}
	if n.CapMult > 0 && vol > n.Default*n.CapMult {
		return n.Default * n.CapMult
	}
	return vol
}

// Ratio returns |distance| relative to the volatility measure. A
// non-positive volatility yields zero rather than a division blowup; callers
// are expected to Clamp first.
func Ratio(distance, vol float64) float64 {
	if vol <= 0 {
		return 0
	}
	return math.Abs(distance) / vol
}

// RoundToStep rounds a price to the nearest multiple of step. Used for
// psychological levels and cooldown zone keys.
func RoundToStep(price, step float64) float64 {
	if step <= 0 {
		return price
	}
	return math.Round(price/step) * step
}
