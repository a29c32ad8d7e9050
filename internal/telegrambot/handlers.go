package telegrambot

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	apperrors "github.com/pulsescalp/channel-gate/internal/core/errors"
	"github.com/pulsescalp/channel-gate/internal/registry"
)

func (b *Bot) handleHelp(msg *tgbotapi.Message) {
	b.reply(msg, strings.Join([]string{
		"<b>Channel gate admin</b>",
		"",
		"<code>/channel add &lt;id&gt; [title...]</code> — register or update a required channel",
		"<code>/channel remove &lt;id&gt;</code> — unregister a channel",
		"<code>/channel list</code> — show registered channels",
		"<code>/channel clear</code> — remove all channels",
		"<code>/check &lt;user_id&gt;</code> — verify a user against all channels",
	}, "\n"))
}

func (b *Bot) handleChannelNamespace(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())

	if len(args) == 0 {
		b.reply(msg, "Usage: <code>/channel &lt;add|remove|list|clear&gt;</code>")

		return
	}

	switch args[0] {
	case "add":
		b.handleAddChannel(ctx, msg, args[1:])
	case "remove":
		b.handleRemoveChannel(ctx, msg, args[1:])
	case "list":
		b.handleListChannels(ctx, msg)
	case "clear":
		b.handleClearChannels(ctx, msg)
	default:
		b.reply(msg, "Usage: <code>/channel &lt;add|remove|list|clear&gt;</code>")
	}
}

func (b *Bot) handleAddChannel(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) == 0 {
		b.reply(msg, "Usage: <code>/channel add &lt;id&gt; [title...]</code>")

		return
	}

	in := registry.Input{ID: args[0], Title: strings.Join(args[1:], " ")}
	if in.Title == "" {
		// The registry requires a title; mirror the store's fallback here so
		// a bare id is still a valid admin command.
		in.Title = in.ID
	}

	saved, err := b.registry.Upsert(ctx, in)
	if err != nil {
		b.reply(msg, fmt.Sprintf("❌ %s", html.EscapeString(err.Error())))

		return
	}

	b.reply(msg, fmt.Sprintf("✅ Channel <code>%s</code> (<b>%s</b>) registered.",
		html.EscapeString(saved.ID), html.EscapeString(saved.Title)))
}

func (b *Bot) handleRemoveChannel(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) == 0 {
		b.reply(msg, "Usage: <code>/channel remove &lt;id&gt;</code>")

		return
	}

	if err := b.registry.Delete(ctx, args[0]); err != nil {
		if apperrors.Is(err, apperrors.ErrChannelNotFound) {
			b.reply(msg, fmt.Sprintf("❌ No channel with id <code>%s</code>.", html.EscapeString(args[0])))

			return
		}

		b.reply(msg, fmt.Sprintf("❌ %s", html.EscapeString(err.Error())))

		return
	}

	b.reply(msg, fmt.Sprintf("✅ Channel <code>%s</code> removed.", html.EscapeString(args[0])))
}

func (b *Bot) handleListChannels(ctx context.Context, msg *tgbotapi.Message) {
	channels, err := b.registry.ListAll(ctx)
	if err != nil {
		b.reply(msg, fmt.Sprintf("❌ Error fetching channels: %s", html.EscapeString(err.Error())))

		return
	}

	if len(channels) == 0 {
		b.reply(msg, "No channels registered.")

		return
	}

	var sb strings.Builder

	sb.WriteString("📋 <b>Required Channels:</b>\n\n")

	for _, ch := range channels {
		sb.WriteString(fmt.Sprintf("• <b>%s</b> — <code>%s</code>", html.EscapeString(ch.Title), html.EscapeString(ch.ID)))

		if ch.InviteLink != "" {
			sb.WriteString(fmt.Sprintf(" (<a href=\"%s\">invite</a>)", html.EscapeString(ch.InviteLink)))
		}

		if ch.UpdatedAt > 0 {
			sb.WriteString(fmt.Sprintf("\n  <i>updated %s</i>", time.UnixMilli(ch.UpdatedAt).Format("2006-01-02 15:04:05")))
		}

		sb.WriteString("\n")
	}

	b.reply(msg, sb.String())
}

func (b *Bot) handleClearChannels(ctx context.Context, msg *tgbotapi.Message) {
	if err := b.registry.Clear(ctx); err != nil {
		b.reply(msg, fmt.Sprintf("❌ %s", html.EscapeString(err.Error())))

		return
	}

	b.reply(msg, "✅ All channels removed.")
}

func (b *Bot) handleCheck(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())

	if len(args) == 0 {
		b.reply(msg, "Usage: <code>/check &lt;user_id&gt;</code>")

		return
	}

	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.reply(msg, "❌ User id must be an integer.")

		return
	}

	check, err := b.verifier.Verify(ctx, userID)
	if err != nil {
		b.reply(msg, fmt.Sprintf("❌ Verification failed: %s", html.EscapeString(err.Error())))

		return
	}

	b.reply(msg, FormatCheck(userID, check))
}
