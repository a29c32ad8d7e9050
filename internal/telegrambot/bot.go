// Package telegrambot is the operator surface of the gate: admins manage
// the required-channel registry and run ad-hoc membership checks from a
// Telegram chat.
package telegrambot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/pulsescalp/channel-gate/internal/platform/config"
	"github.com/pulsescalp/channel-gate/internal/registry"
	"github.com/pulsescalp/channel-gate/internal/verifier"
)

const updateTimeoutSeconds = 60

type Bot struct {
	cfg      *config.Config
	registry *registry.Registry
	verifier *verifier.Verifier
	api      *tgbotapi.BotAPI
	logger   *zerolog.Logger
}

func New(cfg *config.Config, reg *registry.Registry, ver *verifier.Verifier, api *tgbotapi.BotAPI, logger *zerolog.Logger) *Bot {
	return &Bot{
		cfg:      cfg,
		registry: reg,
		verifier: ver,
		api:      api,
		logger:   logger,
	}
}

func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = updateTimeoutSeconds

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info().Msg("admin bot started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			if update.Message == nil {
				continue
			}

			if !b.isAdmin(update.Message.From.ID) {
				b.logger.Warn().Int64("user_id", update.Message.From.ID).Str("username", update.Message.From.UserName).Msg("Unauthorized access attempt")
				continue
			}

			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) isAdmin(userID int64) bool {
	for _, id := range b.cfg.AdminIDs {
		if id == userID {
			return true
		}
	}

	return false
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		return
	}

	b.logger.Info().Str("command", msg.Command()).Int64("user_id", msg.From.ID).Msg("Handling command")

	switch msg.Command() {
	case "start", "help":
		b.handleHelp(msg)
	case "channel":
		b.handleChannelNamespace(ctx, msg)
	case "check":
		b.handleCheck(ctx, msg)
	default:
		b.reply(msg, "Unknown command. See /help.")
	}
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ParseMode = tgbotapi.ModeHTML

	if _, err := b.api.Send(reply); err != nil {
		b.logger.Error().Err(err).Msg("failed to send reply")
	}
}
