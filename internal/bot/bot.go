// Package bot wires the Telegram transport to the command router. Inbound
// updates arrive over long polling; outbound messages go through Sender.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dkotenko/vlrbot/internal/pkg/config"
)

type Bot struct {
	api           *tgbotapi.BotAPI
	router        *Router
	updateTimeout int
}

// NewAPI creates the Telegram API client, so callers can build the Sender
// before the Router that needs it.
func NewAPI(cfg *config.TelegramConfig) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	api.Debug = false
	return api, nil
}

// New wraps an API client and router into a running bot.
func New(api *tgbotapi.BotAPI, updateTimeout int, router *Router) *Bot {
	return &Bot{api: api, router: router, updateTimeout: updateTimeout}
}

// Run consumes updates until ctx is cancelled. Handlers run inline: they are
// short request/response glue, and anything long-lived is a tracker goroutine.
func (b *Bot) Run(ctx context.Context) error {
	slog.Info("bot: authorized", "username", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.updateTimeout
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			b.router.HandleMessage(ctx, update.Message.Chat.ID, update.Message.Text)
		}
	}
}
