package config

import (
	"strings"
	"time"

	"signal_bot/internal/models"
	"signal_bot/pkg/logger"
)

// SessionWindow is a GMT hour range, start inclusive, end exclusive.
type SessionWindow struct {
	Start int `mapstructure:"start" yaml:"start"`
	End   int `mapstructure:"end" yaml:"end"`
}

// Contains reports whether the hour falls inside the window.
func (w SessionWindow) Contains(hour int) bool {
	return hour >= w.Start && hour < w.End
}

// ScorerWeights are the point values of the four scoring factors. The
// maximum attainable score is their sum.
type ScorerWeights struct {
	Structural float64 `mapstructure:"structural" yaml:"structural"`
	Trend      float64 `mapstructure:"trend" yaml:"trend"`
	Quality    float64 `mapstructure:"quality" yaml:"quality"`
	Context    float64 `mapstructure:"context" yaml:"context"`
}

// Max returns the highest attainable score for these weights.
func (w ScorerWeights) Max() float64 {
	return w.Structural + w.Trend + w.Quality + w.Context
}

// TierFractions map a score, as a fraction of the maximum, onto the five
// confidence tiers. Anything below LowMedium is LOW.
type TierFractions struct {
	High       float64 `mapstructure:"high" yaml:"high"`
	MediumHigh float64 `mapstructure:"medium_high" yaml:"medium_high"`
	Medium     float64 `mapstructure:"medium" yaml:"medium"`
	LowMedium  float64 `mapstructure:"low_medium" yaml:"low_medium"`
}

// RSIWindow is the favorable oscillator range for one direction.
type RSIWindow struct {
	Min float64 `mapstructure:"min" yaml:"min"`
	Max float64 `mapstructure:"max" yaml:"max"`
}

// Contains reports whether the value sits inside the window.
func (w RSIWindow) Contains(v float64) bool {
	return v >= w.Min && v <= w.Max
}

// InstrumentParams is the full per-instrument rule set. Every field has a
// documented default; malformed or missing config entries fall back field by
// field with a warning rather than failing startup.
type InstrumentParams struct {
	Instrument models.Instrument `mapstructure:"-" yaml:"-"`

	ATRPeriod  int     `mapstructure:"atr_period" yaml:"atr_period"`
	VolCapMult float64 `mapstructure:"vol_cap_mult" yaml:"vol_cap_mult"`

	// Volatility-scaled risk (breakout and slope families). Fixed-dollar
	// instruments use FixedSL/FixedTP instead and leave these zero.
	SLMult  float64 `mapstructure:"sl_mult" yaml:"sl_mult"`
	TPRR    float64 `mapstructure:"tp_rr" yaml:"tp_rr"`
	FixedSL float64 `mapstructure:"fixed_sl" yaml:"fixed_sl"`
	FixedTP float64 `mapstructure:"fixed_tp" yaml:"fixed_tp"`
	MinRR   float64 `mapstructure:"min_rr" yaml:"min_rr"`

	// Breakout family.
	RangeBars int       `mapstructure:"range_bars" yaml:"range_bars"`
	EMAFast   int       `mapstructure:"ema_fast" yaml:"ema_fast"`
	EMASlow   int       `mapstructure:"ema_slow" yaml:"ema_slow"`
	RSIPeriod int       `mapstructure:"rsi_period" yaml:"rsi_period"`
	RSILong   RSIWindow `mapstructure:"rsi_long" yaml:"rsi_long"`
	RSIShort  RSIWindow `mapstructure:"rsi_short" yaml:"rsi_short"`

	// Level-reversion family.
	LevelStep   float64         `mapstructure:"level_step" yaml:"level_step"`
	LevelStrong float64         `mapstructure:"level_strong" yaml:"level_strong"`
	LevelMedium float64         `mapstructure:"level_medium" yaml:"level_medium"`
	LevelWeak   float64         `mapstructure:"level_weak" yaml:"level_weak"`
	WickMin     float64         `mapstructure:"wick_min" yaml:"wick_min"`
	Sessions    []SessionWindow `mapstructure:"sessions" yaml:"sessions"`

	// Momentum-slope family.
	SMAPeriod int           `mapstructure:"sma_period" yaml:"sma_period"`
	SlopeBars int           `mapstructure:"slope_bars" yaml:"slope_bars"`
	ExpiryMin time.Duration `mapstructure:"expiry_min" yaml:"expiry_min"`
	ExpiryMax time.Duration `mapstructure:"expiry_max" yaml:"expiry_max"`

	// Cooldown / duplicate suppression.
	CooldownInstrument time.Duration `mapstructure:"cooldown_instrument" yaml:"cooldown_instrument"`
	CooldownDirection  time.Duration `mapstructure:"cooldown_direction" yaml:"cooldown_direction"`
	ZoneRetention      time.Duration `mapstructure:"zone_retention" yaml:"zone_retention"`
	ZoneWidth          float64       `mapstructure:"zone_width" yaml:"zone_width"`
	MinPriceMove       float64       `mapstructure:"min_price_move" yaml:"min_price_move"`

	MaxPerPeriod int `mapstructure:"max_per_period" yaml:"max_per_period"`

	// Optional per-instrument scorer overrides; zero values inherit the
	// top-level scorer settings.
	Weights ScorerWeights `mapstructure:"weights" yaml:"weights"`
	Tiers   TierFractions `mapstructure:"tiers" yaml:"tiers"`
}

// Config is one immutable configuration snapshot. Reload builds a new value
// and swaps the pointer; a snapshot is never mutated after publication.
type Config struct {
	Telegram struct {
		Token  string `mapstructure:"token" yaml:"token"`
		ChatID int64  `mapstructure:"chat_id" yaml:"chat_id"`
	} `mapstructure:"telegram" yaml:"telegram"`

	DB string `mapstructure:"db_dsn" yaml:"db_dsn"`

	// HealthAddr is the listen address of the liveness/readiness server.
	// Empty disables it.
	HealthAddr string `mapstructure:"health_addr" yaml:"health_addr"`

	Jaeger struct {
		Host string `mapstructure:"host" yaml:"host"`
		Port int    `mapstructure:"port" yaml:"port"`
	} `mapstructure:"jaeger" yaml:"jaeger"`

	Market struct {
		URL         string `mapstructure:"url" yaml:"url"`
		RESTURL     string `mapstructure:"rest_url" yaml:"rest_url"`
		Timeframe   string `mapstructure:"timeframe" yaml:"timeframe"`
		HistoryBars int    `mapstructure:"history_bars" yaml:"history_bars"`
	} `mapstructure:"market" yaml:"market"`

	Scan struct {
		Interval      time.Duration `mapstructure:"interval" yaml:"interval"`
		StatsInterval time.Duration `mapstructure:"stats_interval" yaml:"stats_interval"`
		ConfirmTTL    time.Duration `mapstructure:"confirm_ttl" yaml:"confirm_ttl"`
		Retention     time.Duration `mapstructure:"retention" yaml:"retention"`
	} `mapstructure:"scan" yaml:"scan"`

	Throttle struct {
		ResetHours   []int `mapstructure:"reset_hours" yaml:"reset_hours"`
		AggregateMax int   `mapstructure:"aggregate_max" yaml:"aggregate_max"`
	} `mapstructure:"throttle" yaml:"throttle"`

	Scorer struct {
		Weights ScorerWeights `mapstructure:"weights" yaml:"weights"`
		Tiers   TierFractions `mapstructure:"tiers" yaml:"tiers"`
	} `mapstructure:"scorer" yaml:"scorer"`

	Instruments map[string]InstrumentParams `mapstructure:"instruments" yaml:"instruments"`
}

// Params returns the effective rule set for an instrument, scorer overrides
// already resolved against the top-level scorer settings.
func (c *Config) Params(inst models.Instrument) InstrumentParams {
	p, ok := c.Instruments[string(inst)]
	if !ok {
		p = defaultParams(inst)
	}
	p.Instrument = inst
	if p.Weights.Max() == 0 {
		p.Weights = c.Scorer.Weights
	}
	if p.Tiers.High == 0 {
		p.Tiers = c.Scorer.Tiers
	}
	return p
}

func defaultScorerWeights() ScorerWeights {
	return ScorerWeights{Structural: 3, Trend: 3, Quality: 2, Context: 2}
}

func defaultTierFractions() TierFractions {
	return TierFractions{High: 0.78, MediumHigh: 0.55, Medium: 0.40, LowMedium: 0.25}
}

func defaultParams(inst models.Instrument) InstrumentParams {
	p := InstrumentParams{
		Instrument: inst,
		ATRPeriod:  14,
		VolCapMult: 5,
		MinRR:      1.0,
	}

	switch inst {
	case models.EURUSD:
		p.SLMult = 1.5
		p.TPRR = 2.0
		p.RangeBars = 20
		p.EMAFast = 9
		p.EMASlow = 21
		p.RSIPeriod = 14
		p.RSILong = RSIWindow{Min: 50, Max: 70}
		p.RSIShort = RSIWindow{Min: 30, Max: 50}
		p.CooldownInstrument = 600 * time.Second
		p.CooldownDirection = 900 * time.Second
		p.ZoneRetention = 600 * time.Second
		p.ZoneWidth = 0.0050
		p.MinPriceMove = 0.0008
		p.MaxPerPeriod = 4
	case models.XAUUSD:
		p.FixedSL = 8
		p.FixedTP = 16
		p.LevelStep = 50
		p.LevelStrong = 5
		p.LevelMedium = 8
		p.LevelWeak = 10
		p.WickMin = 0.30
		p.Sessions = []SessionWindow{
			{Start: 8, End: 17},  // London
			{Start: 13, End: 22}, // New York
		}
		p.CooldownInstrument = 1200 * time.Second
		p.CooldownDirection = 1800 * time.Second
		p.ZoneRetention = 1200 * time.Second
		p.ZoneWidth = 50
		p.MinPriceMove = 15
		p.MaxPerPeriod = 3
	case models.BTCEUR:
		p.SLMult = 2.0
		p.TPRR = 1.8
		p.SMAPeriod = 30
		p.SlopeBars = 3
		p.EMAFast = 9
		p.EMASlow = 21
		// fallback breakout evaluator parameters
		p.RangeBars = 20
		p.RSIPeriod = 14
		p.RSILong = RSIWindow{Min: 50, Max: 70}
		p.RSIShort = RSIWindow{Min: 30, Max: 50}
		p.ExpiryMin = 180 * time.Minute
		p.ExpiryMax = 240 * time.Minute
		p.CooldownInstrument = 600 * time.Second
		p.CooldownDirection = 900 * time.Second
		p.ZoneRetention = 600 * time.Second
		p.ZoneWidth = 1000
		p.MinPriceMove = 200
		p.MaxPerPeriod = 5
	}
	return p
}

// normalize fills gaps in a decoded config with documented defaults. It
// warns per substituted field group so operators see what was ignored.
func normalize(cfg *Config) {
	if cfg.Scan.Interval <= 0 {
		logger.Warn("config: scan interval missing, using default 90s")
		cfg.Scan.Interval = 90 * time.Second
	}
	if cfg.Scan.StatsInterval <= 0 {
		cfg.Scan.StatsInterval = 15 * time.Minute
	}
	if cfg.Scan.ConfirmTTL <= 0 {
		cfg.Scan.ConfirmTTL = 30 * time.Minute
	}
	if cfg.Scan.Retention <= 0 {
		cfg.Scan.Retention = 24 * time.Hour
	}
	if cfg.Market.Timeframe == "" {
		cfg.Market.Timeframe = "15m"
	}
	if cfg.Market.HistoryBars <= 0 {
		cfg.Market.HistoryBars = 120
	}
	if len(cfg.Throttle.ResetHours) == 0 {
		cfg.Throttle.ResetHours = []int{0, 12}
	}
	if cfg.Throttle.AggregateMax <= 0 {
		logger.Warn("config: aggregate throttle ceiling missing, using default 12")
		cfg.Throttle.AggregateMax = 12
	}
	if cfg.Scorer.Weights.Max() == 0 {
		cfg.Scorer.Weights = defaultScorerWeights()
	}
	if cfg.Scorer.Tiers.High == 0 {
		cfg.Scorer.Tiers = defaultTierFractions()
	}

	// viper lowercases map keys on decode
	canonical := make(map[string]InstrumentParams, len(cfg.Instruments))
	for k, v := range cfg.Instruments {
		canonical[strings.ToUpper(k)] = v
	}
	cfg.Instruments = canonical

	for _, inst := range models.Instruments() {
		got, ok := cfg.Instruments[string(inst)]
		def := defaultParams(inst)
		if !ok {
			logger.Warn("config: no entry for %s, using defaults", inst)
			cfg.Instruments[string(inst)] = def
			continue
		}
		cfg.Instruments[string(inst)] = mergeParams(inst, got, def)
	}
}

// mergeParams substitutes the default for every unset or out-of-range field.
func mergeParams(inst models.Instrument, got, def InstrumentParams) InstrumentParams {
	got.Instrument = inst
	if got.ATRPeriod <= 0 {
		got.ATRPeriod = def.ATRPeriod
	}
	if got.VolCapMult <= 0 {
		got.VolCapMult = def.VolCapMult
	}
	if got.MinRR <= 0 {
		got.MinRR = def.MinRR
	}
	if got.SLMult <= 0 {
		got.SLMult = def.SLMult
	}
	if got.TPRR <= 0 {
		got.TPRR = def.TPRR
	}
	if got.FixedSL <= 0 {
		got.FixedSL = def.FixedSL
	}
	if got.FixedTP <= 0 {
		got.FixedTP = def.FixedTP
	}
	if got.RangeBars <= 0 {
		got.RangeBars = def.RangeBars
	}
	if got.EMAFast <= 0 {
		got.EMAFast = def.EMAFast
	}
	if got.EMASlow <= 0 {
		got.EMASlow = def.EMASlow
	}
	if got.RSIPeriod <= 0 {
		got.RSIPeriod = def.RSIPeriod
	}
	if got.RSILong.Max <= got.RSILong.Min {
		got.RSILong = def.RSILong
	}
	if got.RSIShort.Max <= got.RSIShort.Min {
		got.RSIShort = def.RSIShort
	}
	if got.LevelStep <= 0 {
		got.LevelStep = def.LevelStep
	}
	if got.LevelStrong <= 0 || got.LevelMedium < got.LevelStrong || got.LevelWeak < got.LevelMedium {
		if def.LevelStep > 0 {
			logger.Warn("config: %s level buckets out of order, using defaults", inst)
		}
		got.LevelStrong = def.LevelStrong
		got.LevelMedium = def.LevelMedium
		got.LevelWeak = def.LevelWeak
	}
	if got.WickMin <= 0 || got.WickMin >= 1 {
		got.WickMin = def.WickMin
	}
	if len(got.Sessions) == 0 {
		got.Sessions = def.Sessions
	}
	for _, s := range got.Sessions {
		if s.Start < 0 || s.End > 24 || s.Start >= s.End {
			logger.Warn("config: %s session window %d-%d invalid, using defaults", inst, s.Start, s.End)
			got.Sessions = def.Sessions
			break
		}
	}
	if got.SMAPeriod <= 0 {
		got.SMAPeriod = def.SMAPeriod
	}
	if got.SlopeBars <= 0 {
		got.SlopeBars = def.SlopeBars
	}
	if got.ExpiryMin <= 0 {
		got.ExpiryMin = def.ExpiryMin
	}
	if got.ExpiryMax < got.ExpiryMin {
		got.ExpiryMax = def.ExpiryMax
	}
	if got.CooldownInstrument <= 0 {
		got.CooldownInstrument = def.CooldownInstrument
	}
	if got.CooldownDirection <= 0 {
		got.CooldownDirection = def.CooldownDirection
	}
	if got.ZoneRetention <= 0 {
		got.ZoneRetention = def.ZoneRetention
	}
	if got.ZoneWidth <= 0 {
		got.ZoneWidth = def.ZoneWidth
	}
	if got.MinPriceMove <= 0 {
		got.MinPriceMove = def.MinPriceMove
	}
	if got.MaxPerPeriod <= 0 {
		got.MaxPerPeriod = def.MaxPerPeriod
	}
	return got
}
