package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
)

var t0 = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func coolParams() config.InstrumentParams {
	return config.InstrumentParams{
		Instrument:         models.EURUSD,
		CooldownInstrument: 10 * time.Second,
		CooldownDirection:  20 * time.Second,
		ZoneRetention:      5 * time.Minute,
		ZoneWidth:          0.0050,
		MinPriceMove:       0.0008,
	}
}

func buySignal(entry float64) models.Signal {
	return models.Signal{Instrument: models.EURUSD, Side: models.SideBuy, Entry: entry}
}

func TestCooldownFreshStateAccepts(t *testing.T) {
	s := NewState()
	assert.True(t, s.CheckCooldown(buySignal(1.1000), coolParams(), t0).OK)
}

func TestCooldownChecksInOrder(t *testing.T) {
	p := coolParams()
	s := NewState()
	s.MarkAccepted(buySignal(1.1000), p, t0)

	t.Run("instrument cooldown fires first", func(t *testing.T) {
		v := s.CheckCooldown(buySignal(1.2000), p, t0.Add(5*time.Second))
		assert.False(t, v.OK)
		assert.Equal(t, ReasonCooldownInstrument, v.Reason)
	})

	t.Run("direction cooldown after instrument elapses", func(t *testing.T) {
		v := s.CheckCooldown(buySignal(1.2000), p, t0.Add(15*time.Second))
		assert.False(t, v.OK)
		assert.Equal(t, ReasonCooldownDirection, v.Reason)
	})

	t.Run("zone recency after direction elapses", func(t *testing.T) {
		v := s.CheckCooldown(buySignal(1.1010), p, t0.Add(30*time.Second))
		assert.False(t, v.OK)
		assert.Equal(t, ReasonZoneRecent, v.Reason)
	})

	t.Run("min move in a different zone", func(t *testing.T) {
		// new zone, but entry within the price tolerance of the last accept
		v := s.CheckCooldown(buySignal(1.10005), p, t0.Add(30*time.Second))
		assert.False(t, v.OK)
		assert.Equal(t, ReasonZoneRecent, v.Reason) // still same zone

		v = s.CheckCooldown(buySignal(1.1026), p, t0.Add(30*time.Second))
		assert.True(t, v.OK)
	})
}

func TestCooldownZoneWindowElapses(t *testing.T) {
	p := coolParams()
	s := NewState()
	sig := buySignal(1.1000)
	s.MarkAccepted(sig, p, t0)

	within := s.CheckCooldown(buySignal(1.1010), p, t0.Add(4*time.Minute))
	assert.False(t, within.OK)
	assert.Equal(t, ReasonZoneRecent, within.Reason)

	after := s.CheckCooldown(buySignal(1.1010), p, t0.Add(6*time.Minute))
	assert.True(t, after.OK)
}

func TestCooldownOppositeDirectionSkipsDirectionCheck(t *testing.T) {
	p := coolParams()
	s := NewState()
	s.MarkAccepted(buySignal(1.1000), p, t0)

	sell := models.Signal{Instrument: models.EURUSD, Side: models.SideSell, Entry: 1.1050}
	v := s.CheckCooldown(sell, p, t0.Add(15*time.Second))
	assert.True(t, v.OK)
}

func TestCooldownRejectionDoesNotMutate(t *testing.T) {
	p := coolParams()
	s := NewState()
	s.MarkAccepted(buySignal(1.1000), p, t0)

	// rejected attempt inside the instrument window
	assert.False(t, s.CheckCooldown(buySignal(1.2000), p, t0.Add(5*time.Second)).OK)

	// if the rejection had refreshed the record this would still be blocked
	sell := models.Signal{Instrument: models.EURUSD, Side: models.SideSell, Entry: 1.2000}
	assert.True(t, s.CheckCooldown(sell, p, t0.Add(12*time.Second)).OK)
}

func TestCooldownInstrumentsAreIndependent(t *testing.T) {
	p := coolParams()
	s := NewState()
	s.MarkAccepted(buySignal(1.1000), p, t0)

	gold := models.Signal{Instrument: models.XAUUSD, Side: models.SideBuy, Entry: 2048}
	gp := p
	gp.Instrument = models.XAUUSD
	gp.ZoneWidth = 50
	gp.MinPriceMove = 15

	assert.True(t, s.CheckCooldown(gold, gp, t0.Add(time.Second)).OK)
}

func TestMarkAcceptedTimestampsMonotonic(t *testing.T) {
	p := coolParams()
	s := NewState()
	s.MarkAccepted(buySignal(1.1000), p, t0)
	// a stale writer must not move the record backwards
	s.MarkAccepted(buySignal(1.1000), p, t0.Add(-time.Minute))

	v := s.CheckCooldown(buySignal(1.2000), p, t0.Add(5*time.Second))
	assert.False(t, v.OK)
}

func TestGCDropsOldRecords(t *testing.T) {
	p := coolParams()
	s := NewState()
	s.MarkAccepted(buySignal(1.1000), p, t0)
	s.MarkAccepted(models.Signal{Instrument: models.XAUUSD, Side: models.SideBuy, Entry: 2048}, p, t0.Add(23*time.Hour))

	removed := s.GC(24*time.Hour, t0.Add(25*time.Hour))
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, s.Stats([]int{0, 12}, t0.Add(25*time.Hour)).ActiveZones)
}
