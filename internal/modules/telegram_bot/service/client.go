package service

import (
	"context"
	"sync"
	"time"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"signal_bot/internal/modules/config"
	gating "signal_bot/internal/modules/gating/service"
	scanner "signal_bot/internal/modules/scanner/service"
	"signal_bot/pkg/logger"
)

// Bot is the notification and manual-confirmation collaborator. Accepted
// signals are announced in one chat; MEDIUM_HIGH signals carry an inline
// keyboard whose callbacks resolve against the pending book.
type Bot struct {
	bot     *tgbot.BotAPI
	store   *config.Store
	pending *scanner.Pending
	state   *gating.State

	now func() time.Time

	mu     sync.Mutex
	msgIDs map[string]int // confirmation token -> message id
}

func NewBot(store *config.Store, pending *scanner.Pending, state *gating.State) (*Bot, error) {
	b, err := tgbot.NewBotAPI(store.Get().Telegram.Token)
	if err != nil {
		return nil, errors.Wrap(err, "telegram init")
	}

	return &Bot{
		bot:     b,
		store:   store,
		pending: pending,
		state:   state,
		now:     time.Now,
		msgIDs:  make(map[string]int),
	}, nil
}

// Start runs the long-poll update loop until ctx ends.
func (b *Bot) Start(ctx context.Context) {
	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	updates := b.bot.GetUpdatesChan(u)

	logger.Info("telegram loop started")
	for {
		select {
		case <-ctx.Done():
			b.bot.StopReceivingUpdates()
			logger.Info("telegram loop stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) chatID() int64 {
	return b.store.Get().Telegram.ChatID
}

func (b *Bot) send(text string) (tgbot.Message, error) {
	msg := tgbot.NewMessage(b.chatID(), text)
	msg.ParseMode = tgbot.ModeMarkdown
	return b.bot.Send(msg)
}

func (b *Bot) editText(msgID int, text string) {
	edit := tgbot.NewEditMessageText(b.chatID(), msgID, text)
	edit.ParseMode = tgbot.ModeMarkdown
	if _, err := b.bot.Request(edit); err != nil {
		logger.Error("telegram edit: %v", err)
	}
}

func (b *Bot) removeKeyboard(msgID int) {
	rm := tgbot.InlineKeyboardMarkup{InlineKeyboard: [][]tgbot.InlineKeyboardButton{}}
	if _, err := b.bot.Request(tgbot.NewEditMessageReplyMarkup(b.chatID(), msgID, rm)); err != nil {
		logger.Error("telegram edit markup: %v", err)
	}
}

func (b *Bot) rememberMsg(token string, msgID int) {
	b.mu.Lock()
	b.msgIDs[token] = msgID
	b.mu.Unlock()
}

func (b *Bot) takeMsg(token string) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.msgIDs[token]
	if ok {
		delete(b.msgIDs, token)
	}
	return id, ok
}
