// Package service persists the audit trail: every evaluated candidate,
// accepted or rejected, with its full feature breakdown. Writes go through
// an in-memory buffer so a slow or unavailable database never stalls the
// scan loop.
package service

import (
	"context"
	"time"

	"github.com/bytedance/sonic"

	"signal_bot/internal/models"
	"signal_bot/pkg/db"
	"signal_bot/pkg/logger"
)

const (
	bufferSize   = 1024
	retryBackoff = 5 * time.Second
)

// Auditor is what the scan loop sees of the sink.
type Auditor interface {
	Record(sig models.Signal, decision models.Decision, reasons []string)
}

// Record is one audit row, features already encoded.
type Record struct {
	At         time.Time
	Instrument string
	Side       string
	Strategy   string
	Confidence string
	Score      float64
	Decision   string
	Reasons    []string
	Entry      float64
	StopLoss   float64
	TakeProfit float64
	Features   []byte
}

type Sink struct {
	tx      db.TxManager
	ch      chan Record
	backoff time.Duration
}

func NewSink(tx db.TxManager) *Sink {
	return &Sink{
		tx:      tx,
		ch:      make(chan Record, bufferSize),
		backoff: retryBackoff,
	}
}

// Record enqueues one audit row. Never blocks: when the buffer is full the
// row is dropped with a warning rather than stalling the caller.
func (s *Sink) Record(sig models.Signal, decision models.Decision, reasons []string) {
	features, err := sonic.Marshal(sig.Features)
	if err != nil {
		logger.Error("sink: encode features: %v", err)
		features = []byte("{}")
	}

	rec := Record{
		At:         sig.CreatedAt,
		Instrument: string(sig.Instrument),
		Side:       string(sig.Side),
		Strategy:   sig.Strategy,
		Confidence: sig.Confidence.String(),
		Score:      sig.Score,
		Decision:   string(decision),
		Reasons:    reasons,
		Entry:      sig.Entry,
		StopLoss:   sig.StopLoss,
		TakeProfit: sig.TakeProfit,
		Features:   features,
	}

	select {
	case s.ch <- rec:
	default:
		logger.Warn("sink: buffer full, dropping %s %s record", rec.Instrument, rec.Decision)
	}
}

// Pending reports the number of buffered rows, for the status command.
func (s *Sink) Pending() int {
	return len(s.ch)
}

// Run drains the buffer into the database, retrying each row until it lands
// or the context ends.
func (s *Sink) Run(ctx context.Context) {
	if err := s.ensureSchema(ctx); err != nil {
		logger.Error("sink: schema: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case rec := <-s.ch:
			for {
				if err := s.insert(ctx, rec); err == nil {
					break
				} else {
					logger.Error("sink: insert: %v", err)
				}
				select {
				case <-ctx.Done():
					return
				case <-time.After(s.backoff):
				}
			}
		}
	}
}

func (s *Sink) ensureSchema(ctx context.Context) error {
	return s.tx.Run(ctx, func(ctxTx context.Context, tx db.Transaction) error {
		_, err := tx.Exec(ctxTx, `
			CREATE TABLE IF NOT EXISTS signal_audit (
				id          BIGSERIAL PRIMARY KEY,
				created_at  TIMESTAMPTZ      NOT NULL,
				instrument  TEXT             NOT NULL,
				side        TEXT             NOT NULL,
				strategy    TEXT             NOT NULL,
				confidence  TEXT             NOT NULL,
				score       DOUBLE PRECISION NOT NULL,
				decision    TEXT             NOT NULL,
				reasons     TEXT[],
				entry       DOUBLE PRECISION,
				stop_loss   DOUBLE PRECISION,
				take_profit DOUBLE PRECISION,
				features    JSONB
			)`)
		return err
	})
}

func (s *Sink) insert(ctx context.Context, rec Record) error {
	return s.tx.Run(ctx, func(ctxTx context.Context, tx db.Transaction) error {
		_, err := tx.Exec(ctxTx, `
			INSERT INTO signal_audit
				(created_at, instrument, side, strategy, confidence, score,
				 decision, reasons, entry, stop_loss, take_profit, features)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			rec.At, rec.Instrument, rec.Side, rec.Strategy, rec.Confidence,
			rec.Score, rec.Decision, rec.Reasons, rec.Entry, rec.StopLoss,
			rec.TakeProfit, rec.Features,
		)
		return err
	})
}
