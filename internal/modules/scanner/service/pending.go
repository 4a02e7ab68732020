package service

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/pkg/errors"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	gating "signal_bot/internal/modules/gating/service"
)

// ErrStaleConfirmation means the signal's confirmation window has passed;
// a late confirmation must be rejected, never executed.
var ErrStaleConfirmation = errors.New("confirmation window expired")

// ErrUnknownToken means the token matches no pending signal, typically a
// double tap on an already handled keyboard.
var ErrUnknownToken = errors.New("unknown confirmation token")

// ErrThrottleExceeded means the trade window filled while the signal was
// awaiting confirmation; the confirmation is dropped, not executed.
var ErrThrottleExceeded = errors.New("trade ceiling reached for the current window")

// PendingSignal is a MEDIUM_HIGH signal awaiting a human decision.
type PendingSignal struct {
	Token     string
	Signal    models.Signal
	ExpiresAt time.Time
}

// Pending is the book of signals awaiting manual confirmation. Confirmation
// arrives asynchronously from the chat handler while the scan loop keeps
// running, so the book shares the gating state's locking discipline.
type Pending struct {
	store *config.Store
	state *gating.State

	mu    sync.Mutex
	items map[string]PendingSignal
}

func NewPending(store *config.Store, state *gating.State) *Pending {
	return &Pending{
		store: store,
		state: state,
		items: make(map[string]PendingSignal),
	}
}

// Add registers a signal for confirmation. The window is the configured
// TTL, tightened by the signal's own expiry when that comes first. A signal
// fingerprint-identical to one already awaiting confirmation does not get a
// second token; the existing entry is returned with created=false.
func (p *Pending) Add(sig models.Signal, now time.Time) (PendingSignal, bool) {
	cfg := p.store.Get()

	deadline := now.Add(cfg.Scan.ConfirmTTL)
	if !sig.ExpiresAt.IsZero() && sig.ExpiresAt.Before(deadline) {
		deadline = sig.ExpiresAt
	}

	width := cfg.Params(sig.Instrument).ZoneWidth
	fp := sig.Fingerprint(width)

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, existing := range p.items {
		if existing.Signal.Fingerprint(width) == fp && !now.After(existing.ExpiresAt) {
			return existing, false
		}
	}

	ps := PendingSignal{
		Token:     newToken(),
		Signal:    sig,
		ExpiresAt: deadline,
	}
	p.items[ps.Token] = ps
	return ps, true
}

// Confirm resolves a token. On success the signal counts as executed and
// the throttle is incremented; a stale token is removed and rejected. The
// window may have filled while the operator deliberated, so the ceilings
// are re-verified and the slot claimed in one lock window.
func (p *Pending) Confirm(token string, now time.Time) (models.Signal, error) {
	p.mu.Lock()
	ps, ok := p.items[token]
	if ok {
		delete(p.items, token)
	}
	p.mu.Unlock()

	if !ok {
		return models.Signal{}, ErrUnknownToken
	}
	if now.After(ps.ExpiresAt) {
		return ps.Signal, ErrStaleConfirmation
	}

	cfg := p.store.Get()
	params := cfg.Params(ps.Signal.Instrument)
	if v := p.state.TryExecute(params, cfg.Throttle.AggregateMax, cfg.Throttle.ResetHours, now); !v.OK {
		return ps.Signal, errors.Wrap(ErrThrottleExceeded, v.Reason)
	}
	return ps.Signal, nil
}

// Reject drops a pending signal without executing it.
func (p *Pending) Reject(token string) (models.Signal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ps, ok := p.items[token]
	if !ok {
		return models.Signal{}, ErrUnknownToken
	}
	delete(p.items, token)
	return ps.Signal, nil
}

// Sweep removes every expired entry and returns them so the notifier can
// close out the messages.
func (p *Pending) Sweep(now time.Time) []PendingSignal {
	p.mu.Lock()
	defer p.mu.Unlock()

	var expired []PendingSignal
	for token, ps := range p.items {
		if now.After(ps.ExpiresAt) {
			expired = append(expired, ps)
			delete(p.items, token)
		}
	}
	return expired
}

// Len reports the number of signals awaiting confirmation.
func (p *Pending) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

func newToken() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return hex.EncodeToString([]byte(time.Now().String()))[:16]
	}
	return hex.EncodeToString(b[:])
}
