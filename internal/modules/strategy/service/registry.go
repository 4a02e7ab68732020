package service

import (
	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
)

// Registry builds the evaluator chain for each instrument from the current
// configuration snapshot. Evaluators are cheap stateless values, so the
// chain is rebuilt per scan cycle and hot-reloaded config takes effect on
// the next cycle.
type Registry struct {
	store *config.Store
}

func NewRegistry(store *config.Store) *Registry {
	return &Registry{store: store}
}

// Chain returns the ordered evaluator chain for the instrument.
func (r *Registry) Chain(inst models.Instrument) Chain {
	return BuildChain(r.store.Get().Params(inst))
}

// BuildChain wires the primary evaluator per instrument family, with a
// conservative fallback where one applies.
func BuildChain(p config.InstrumentParams) Chain {
	switch p.Instrument {
	case models.EURUSD:
		return NewChain(NewBreakout(p))
	case models.XAUUSD:
		return NewChain(NewLevels(p))
	case models.BTCEUR:
		return NewChain(NewSlope(p), NewBreakout(p))
	}
	return NewChain()
}
