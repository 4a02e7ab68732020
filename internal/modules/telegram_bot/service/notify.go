package service

import (
	"context"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"signal_bot/internal/models"
	scanner "signal_bot/internal/modules/scanner/service"
	"signal_bot/pkg/logger"
)

const (
	callbackConfirm = "CONF"
	callbackReject  = "REJ"
)

// NotifySignal announces an accepted signal. Manual-confirm signals get the
// inline keyboard; auto-executed ones are plain announcements.
func (b *Bot) NotifySignal(_ context.Context, sig models.Signal, decision models.Decision, ps *scanner.PendingSignal) {
	text := formatSignal(sig, decision, ps)

	if decision != models.DecisionManualConfirm || ps == nil {
		if _, err := b.send(text); err != nil {
			logger.Error("telegram notify: %v", err)
		}
		return
	}

	btnYes := tgbot.NewInlineKeyboardButtonData("✅ Execute", callbackConfirm+"::"+ps.Token)
	btnNo := tgbot.NewInlineKeyboardButtonData("❌ Skip", callbackReject+"::"+ps.Token)
	msg := tgbot.NewMessage(b.chatID(), text)
	msg.ParseMode = tgbot.ModeMarkdown
	msg.ReplyMarkup = tgbot.NewInlineKeyboardMarkup(tgbot.NewInlineKeyboardRow(btnYes, btnNo))

	sent, err := b.bot.Send(msg)
	if err != nil {
		logger.Error("telegram confirm notify: %v", err)
		return
	}
	b.rememberMsg(ps.Token, sent.MessageID)
}

// NotifyExpired closes out the message of a confirmation nobody answered.
func (b *Bot) NotifyExpired(_ context.Context, ps scanner.PendingSignal) {
	msgID, ok := b.takeMsg(ps.Token)
	if !ok {
		return
	}
	b.removeKeyboard(msgID)
	b.editText(msgID, formatSignal(ps.Signal, models.DecisionManualConfirm, &ps)+"\n\n⏳ Expired without confirmation")
}
