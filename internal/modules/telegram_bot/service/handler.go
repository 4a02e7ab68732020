package service

import (
	"context"
	"strings"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"signal_bot/internal/models"
	scanner "signal_bot/internal/modules/scanner/service"
	"signal_bot/pkg/logger"
)

func (b *Bot) handleUpdate(ctx context.Context, update tgbot.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	}
}

func (b *Bot) handleCallback(_ context.Context, q *tgbot.CallbackQuery) {
	parts := strings.SplitN(q.Data, "::", 2)
	if len(parts) != 2 {
		return
	}
	action, token := parts[0], parts[1]
	now := b.now()

	switch action {
	case callbackConfirm:
		sig, err := b.pending.Confirm(token, now)
		msgID, hasMsg := b.takeMsg(token)
		switch {
		case err == nil:
			logger.Info("confirmed: %s %s @ %.5f", sig.Instrument, sig.Side, sig.Entry)
			b.answer(q.ID, "Executing")
			if hasMsg {
				b.removeKeyboard(msgID)
				b.editText(msgID, formatSignal(sig, models.DecisionAutoExecute, nil)+"\n\n✅ Confirmed, executing")
			}
		case errors.Is(err, scanner.ErrThrottleExceeded):
			logger.Info("confirmation throttled: %s %s", sig.Instrument, sig.Side)
			b.answer(q.ID, "Trade limit reached for this window")
			if hasMsg {
				b.removeKeyboard(msgID)
				b.editText(msgID, formatSignal(sig, models.DecisionManualConfirm, nil)+"\n\n🚫 Trade limit reached, not executed")
			}
		case errors.Is(err, scanner.ErrStaleConfirmation):
			logger.Info("stale confirmation: %s %s", sig.Instrument, sig.Side)
			b.answer(q.ID, "Too late, the signal expired")
			if hasMsg {
				b.removeKeyboard(msgID)
				b.editText(msgID, formatSignal(sig, models.DecisionManualConfirm, nil)+"\n\n⏳ Expired, not executed")
			}
		default:
			b.answer(q.ID, "Signal no longer pending")
		}

	case callbackReject:
		sig, err := b.pending.Reject(token)
		msgID, hasMsg := b.takeMsg(token)
		if err != nil {
			b.answer(q.ID, "Signal no longer pending")
			return
		}
		logger.Info("rejected by operator: %s %s", sig.Instrument, sig.Side)
		b.answer(q.ID, "Skipped")
		if hasMsg {
			b.removeKeyboard(msgID)
			b.editText(msgID, formatSignal(sig, models.DecisionManualConfirm, nil)+"\n\n❌ Skipped by operator")
		}
	}
}

func (b *Bot) handleCommand(_ context.Context, msg *tgbot.Message) {
	switch msg.Command() {
	case "start":
		if _, err := b.send("Signal pipeline online. /status for the current gating state."); err != nil {
			logger.Error("telegram start reply: %v", err)
		}
	case "status":
		cfg := b.store.Get()
		st := b.state.Stats(cfg.Throttle.ResetHours, b.now())
		if _, err := b.send(formatStatus(st, b.pending.Len(), cfg.Throttle.AggregateMax)); err != nil {
			logger.Error("telegram status reply: %v", err)
		}
	}
}

func (b *Bot) answer(callbackID, text string) {
	if _, err := b.bot.Request(tgbot.NewCallback(callbackID, text)); err != nil {
		logger.Error("telegram callback answer: %v", err)
	}
}
