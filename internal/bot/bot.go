// Package bot adapts Telegram updates to the orchestrator and implements
// its outbound Responder. Whatever happens inside a handler, every update
// is acknowledged: Telegram re-delivers otherwise.
package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/masroufy/masroufy/internal/orchestrator"
	"github.com/masroufy/masroufy/internal/router"
	"go.uber.org/zap"
)

type Bot struct {
	api    *tgbotapi.BotAPI
	logger *zap.Logger
}

func New(token string, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return &Bot{api: api, logger: logger}, nil
}

// Start consumes the long-poll update channel until ctx is cancelled. Each
// update is handled in its own goroutine; there is no shared mutable state
// between them, everything cross-request lives in the stores.
func (b *Bot) Start(ctx context.Context, orch *orchestrator.Orchestrator) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, orch, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, orch *orchestrator.Orchestrator, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Panic while handling update", zap.Any("panic", r))
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		// Ack first so the button stops spinning regardless of outcome.
		if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
			b.logger.Error("Failed to ack callback query", zap.Error(err))
		}
		orch.HandleCallback(ctx, &router.Callback{
			Token:     cb.Data,
			UserID:    cb.From.ID,
			ChatID:    cb.Message.Chat.ID,
			MessageID: cb.Message.MessageID,
		})

	case update.Message != nil:
		message := update.Message
		content := message.Text
		if message.Caption != "" {
			content = message.Caption
		}
		if content == "" {
			return
		}
		orch.HandleMessage(ctx, message.From.ID, message.Chat.ID, content)
	}
}

// SendMessage implements orchestrator.Responder.
func (b *Bot) SendMessage(_ context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// SendKeyboard implements orchestrator.Responder, rendering button rows as
// an inline keyboard with the callback tokens embedded.
func (b *Bot) SendKeyboard(_ context.Context, chatID int64, text string, rows [][]orchestrator.Button) error {
	keyboardRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, button := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(button.Label, button.Token))
		}
		keyboardRows = append(keyboardRows, buttons)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(keyboardRows...)
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send keyboard: %w", err)
	}
	return nil
}
