// Package service drives the decision pipeline: on a fixed cadence it pulls
// a snapshot per instrument, runs the evaluator chain, scores, filters,
// throttles and gates the result, and dispatches whatever survives.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	gating "signal_bot/internal/modules/gating/service"
	health "signal_bot/internal/modules/health/service"
	marketdata "signal_bot/internal/modules/marketdata/service"
	sink "signal_bot/internal/modules/sink/service"
	strategy "signal_bot/internal/modules/strategy/service"
	"signal_bot/pkg/logger"
)

// Notifier delivers accepted signals to the chat collaborator.
type Notifier interface {
	NotifySignal(ctx context.Context, sig models.Signal, decision models.Decision, ps *PendingSignal)
	NotifyExpired(ctx context.Context, ps PendingSignal)
}

type Scanner struct {
	store    *config.Store
	provider marketdata.Provider
	registry *strategy.Registry
	state    *gating.State
	pending  *Pending
	sink     sink.Auditor
	notifier Notifier
	health   *health.State

	now func() time.Time

	mu        sync.Mutex
	accepted  int
	rejected  map[string]int
	lastStats time.Time
}

func NewScanner(
	store *config.Store,
	provider marketdata.Provider,
	registry *strategy.Registry,
	state *gating.State,
	pending *Pending,
	auditor sink.Auditor,
	notifier Notifier,
	hs *health.State,
) *Scanner {
	return &Scanner{
		store:    store,
		provider: provider,
		registry: registry,
		state:    state,
		pending:  pending,
		sink:     auditor,
		notifier: notifier,
		health:   hs,
		now:      time.Now,
		rejected: make(map[string]int),
	}
}

// Run drives the loop until ctx is cancelled.
func (s *Scanner) Run(ctx context.Context) {
	s.mu.Lock()
	s.lastStats = s.now()
	s.mu.Unlock()

	ticker := time.NewTicker(s.store.Get().Scan.Interval)
	defer ticker.Stop()

	s.health.SetReady(true)
	defer s.health.SetReady(false)

	logger.Info("scan loop started, interval %s", s.store.Get().Scan.Interval)
	for {
		select {
		case <-ctx.Done():
			logger.Info("scan loop stopped")
			return
		case <-ticker.C:
			s.Cycle(ctx)

			cfg := s.store.Get()
			s.state.GC(cfg.Scan.Retention, s.now())
			s.maybeDumpStats(cfg.Scan.StatsInterval, cfg.Throttle.ResetHours)
			// the reload may have changed the cadence
			ticker.Reset(cfg.Scan.Interval)
		}
	}
}

// Cycle runs the pipeline once over every instrument and sweeps expired
// confirmations. At most one accepted signal per instrument per cycle.
func (s *Scanner) Cycle(ctx context.Context) {
	span := opentracing.StartSpan("scan_cycle")
	defer span.Finish()
	ctx = opentracing.ContextWithSpan(ctx, span)

	now := s.now()
	for _, inst := range models.Instruments() {
		s.scanInstrument(ctx, inst, now)
	}

	s.health.TouchCycle(now)

	for _, ps := range s.pending.Sweep(now) {
		logger.Info("confirmation expired: %s %s @ %.5f",
			ps.Signal.Instrument, ps.Signal.Side, ps.Signal.Entry)
		if s.notifier != nil {
			s.notifier.NotifyExpired(ctx, ps)
		}
	}
}

func (s *Scanner) scanInstrument(ctx context.Context, inst models.Instrument, now time.Time) {
	cfg := s.store.Get()
	p := cfg.Params(inst)

	snap, err := s.provider.Snapshot(ctx, inst, p)
	if err != nil {
		if errors.Is(err, marketdata.ErrInsufficientHistory) {
			logger.Debug("skip %s: %v", inst, err)
		} else {
			logger.Debug("skip %s: snapshot: %v", inst, err)
		}
		return
	}

	sig, ok := s.registry.Chain(inst).Evaluate(snap, now)
	if !ok {
		return
	}

	span, _ := opentracing.StartSpanFromContext(ctx, "gate_signal")
	span.SetTag("instrument", string(inst))
	span.SetTag("strategy", sig.Strategy)
	defer span.Finish()

	if rr := sig.RiskReward(); rr < p.MinRR {
		s.count(gating.ReasonRiskReward)
		s.sink.Record(sig, models.DecisionLogOnly, []string{gating.ReasonRiskReward})
		return
	}

	sig = gating.Grade(sig, p)
	cool := s.state.CheckCooldown(sig, p, now)
	throttle := s.state.CheckThrottle(p, cfg.Throttle.AggregateMax, cfg.Throttle.ResetHours, now)
	decision := gating.Decide(sig.Confidence, cool, throttle)

	var reasons []string
	if !cool.OK {
		reasons = append(reasons, cool.Reason)
	}
	if !throttle.OK {
		reasons = append(reasons, throttle.Reason)
	}

	if decision == models.DecisionAutoExecute {
		// claim the slot atomically; a confirmation may have taken the
		// last one since the check above
		if v := s.state.TryExecute(p, cfg.Throttle.AggregateMax, cfg.Throttle.ResetHours, now); !v.OK {
			decision = models.DecisionLogOnly
			reasons = append(reasons, v.Reason)
		}
	}
	if decision == models.DecisionLogOnly && len(reasons) == 0 {
		reasons = append(reasons, gating.ReasonLowConfidence)
	}

	// the audit trail gets every candidate, whatever the gate said
	s.sink.Record(sig, decision, reasons)

	switch decision {
	case models.DecisionAutoExecute:
		s.state.MarkAccepted(sig, p, now)
		s.countAccepted()
		logger.Info("auto signal: %s %s @ %.5f conf=%s score=%.2f",
			inst, sig.Side, sig.Entry, sig.Confidence, sig.Score)
		if s.notifier != nil {
			s.notifier.NotifySignal(ctx, sig, decision, nil)
		}

	case models.DecisionManualConfirm:
		s.state.MarkAccepted(sig, p, now)
		ps, created := s.pending.Add(sig, now)
		if !created {
			logger.Debug("duplicate of pending %s, not re-notifying", ps.Token)
			return
		}
		s.countAccepted()
		logger.Info("confirm signal: %s %s @ %.5f conf=%s until %s",
			inst, sig.Side, sig.Entry, sig.Confidence, ps.ExpiresAt.Format(time.RFC3339))
		if s.notifier != nil {
			s.notifier.NotifySignal(ctx, sig, decision, &ps)
		}

	default:
		for _, r := range reasons {
			s.count(r)
		}
	}
}

func (s *Scanner) count(reason string) {
	s.mu.Lock()
	s.rejected[reason]++
	s.mu.Unlock()
}

func (s *Scanner) countAccepted() {
	s.mu.Lock()
	s.accepted++
	s.mu.Unlock()
}

// maybeDumpStats logs the rolling acceptance/rejection summary once per
// stats interval and resets the counters.
func (s *Scanner) maybeDumpStats(interval time.Duration, resetHours []int) {
	now := s.now()

	s.mu.Lock()
	if now.Sub(s.lastStats) < interval {
		s.mu.Unlock()
		return
	}
	accepted := s.accepted
	rejected := s.rejected
	s.accepted = 0
	s.rejected = make(map[string]int)
	s.lastStats = now
	s.mu.Unlock()

	st := s.state.Stats(resetHours, now)
	logger.Info("scan stats: accepted=%d rejected=%v window=%s counts=%v zones=%d pending=%d",
		accepted, rejected, st.WindowStart.Format("15:04"), st.Counts, st.ActiveZones, s.pending.Len())
}
