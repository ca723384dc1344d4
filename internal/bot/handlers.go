package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"forumbridge/internal/model"
	"forumbridge/internal/rules"
	"forumbridge/internal/storage"
)

func (b *Bot) handleStart(chatID int64) {
	b.reply(chatID, `Welcome to Forum Bridge!

This chat is now registered as a routing channel. Forum topics
matching your rules will be posted here.

Quick start:
1. /watch <category> — route every new topic in a category here
2. /mute <category> — silence a category
3. /status — list the channel's rules

Use /help for the full command reference.`)
}

// ensureChannel returns the channel bound to the message's chat,
// registering it on first contact.
func (b *Bot) ensureChannel(ctx context.Context, msg *tgbotapi.Message) (*model.Channel, error) {
	channel, err := b.store.ChannelByChatID(ctx, msg.Chat.ID)
	if err == nil {
		return channel, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	name := msg.Chat.Title
	if name == "" {
		name = msg.Chat.UserName
	}
	channel = &model.Channel{ChatID: msg.Chat.ID, Name: name}
	if err := b.store.CreateChannel(ctx, channel); err != nil {
		return nil, err
	}
	b.log.Info("channel registered", "channel_id", channel.ID, "chat_id", msg.Chat.ID, "name", name)
	return channel, nil
}

func (b *Bot) handleGroupRule(ctx context.Context, channel *model.Channel, args []string, typ model.RuleType) {
	if len(args) != 2 {
		b.reply(channel.ChatID, fmt.Sprintf("Usage: /%s <group_id> <watch|follow|mute>", strings.ReplaceAll(string(typ), "_", "")))
		return
	}

	groupID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.reply(channel.ChatID, fmt.Sprintf("Invalid group ID %q.", args[0]))
		return
	}

	filter := model.RuleFilter(args[1])
	switch filter {
	case model.FilterWatch, model.FilterFollow, model.FilterMute:
	default:
		b.reply(channel.ChatID, fmt.Sprintf("Invalid filter %q, use: watch, follow, mute.", args[1]))
		return
	}

	if err := b.engine.CreateGroupRule(ctx, channel, typ, groupID, filter); err != nil {
		var verr *rules.ValidationError
		if errors.As(err, &verr) {
			b.reply(channel.ChatID, "Cannot create rule: "+strings.Join(verr.Violations, "; ")+".")
			return
		}
		b.log.Error("create group rule", "channel_id", channel.ID, "group_id", groupID, "error", err)
		b.reply(channel.ChatID, "Something went wrong. The rule was not created.")
		return
	}
	b.reply(channel.ChatID, FormatResult(rules.Result{Code: rules.CodeCreated}))
}

func (b *Bot) handleTranscript(ctx context.Context, chatID int64, args []string) {
	if b.transcripts == nil {
		b.reply(chatID, "Transcript staging is not configured.")
		return
	}

	n := 10
	if len(args) >= 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 || v > recentLimit {
			b.reply(chatID, fmt.Sprintf("Usage: /transcript [1-%d]", recentLimit))
			return
		}
		n = v
	}

	history := b.recentMessages(chatID, n)
	if len(history) == 0 {
		b.reply(chatID, "No recent messages to stage.")
		return
	}

	secret, err := b.transcripts.Save(ctx, strings.Join(history, "\n"))
	if err != nil {
		b.log.Error("stage transcript", "chat_id", chatID, "error", err)
		b.reply(chatID, "Failed to stage the transcript. Please try again.")
		return
	}
	b.reply(chatID, fmt.Sprintf("Staged %d message(s). Transcript key (valid for 1 hour):\n%s", len(history), secret))
}
