package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"forumbridge/internal/config"
	"forumbridge/internal/rules"
	"forumbridge/internal/storage"
	"forumbridge/internal/transcript"
)

// recentLimit bounds the per-chat message history kept for transcripts.
const recentLimit = 50

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type transcriptStore interface {
	Save(ctx context.Context, text string) (string, error)
}

// Bot is the Telegram bot that handles rule commands and sends
// routed forum notifications.
type Bot struct {
	api         telegramAPI
	store       storage.Storage
	engine      *rules.Engine
	cfg         *config.Config
	transcripts transcriptStore
	log         *slog.Logger

	mu     sync.Mutex
	recent map[int64][]string
}

// New creates a Bot with the given Telegram token, storage, and rule
// engine. transcripts may be nil, which disables transcript staging.
func New(token string, store storage.Storage, engine *rules.Engine, transcripts *transcript.Store, cfg *config.Config, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	b := &Bot{
		api:    api,
		store:  store,
		engine: engine,
		cfg:    cfg,
		log:    log,
		recent: make(map[int64][]string),
	}
	if transcripts != nil {
		b.transcripts = transcripts
	}
	return b, nil
}

// Run starts the bot's long-polling loop, blocking until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			if !update.Message.IsCommand() {
				b.recordMessage(update.Message)
				continue
			}
			if !b.cfg.IsAdmin(update.Message.From.ID) {
				b.reply(update.Message.Chat.ID, "Access denied.")
				continue
			}
			b.handleCommand(ctx, update.Message)
		}
	}
}

// SendMessage sends a text message to the given chat.
func (b *Bot) SendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.SendMessage(chatID, text)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cmd := msg.Command()
	args := strings.Fields(msg.CommandArguments())
	chatID := msg.Chat.ID

	b.log.Debug("command", "cmd", cmd, "args", args, "chat_id", chatID)

	channel, err := b.ensureChannel(ctx, msg)
	if err != nil {
		b.log.Error("ensure channel", "chat_id", chatID, "error", err)
		b.reply(chatID, "Something went wrong. Please try again.")
		return
	}

	switch cmd {
	case "start":
		b.handleStart(chatID)
	case "watch", "follow", "mute", "remove", "status", "help":
		tokens := append([]string{cmd}, args...)
		res := b.engine.ProcessCommand(ctx, channel, tokens)
		b.reply(chatID, FormatResult(res))
	case "groupmessage":
		b.handleGroupRule(ctx, channel, args, "group_message")
	case "groupmention":
		b.handleGroupRule(ctx, channel, args, "group_mention")
	case "transcript":
		b.handleTranscript(ctx, chatID, args)
	default:
		b.reply(chatID, FormatResult(rules.Result{Code: rules.CodeParseError}))
	}
}

func (b *Bot) recordMessage(msg *tgbotapi.Message) {
	if msg.Text == "" {
		return
	}
	line := msg.Text
	if msg.From != nil && msg.From.UserName != "" {
		line = "@" + msg.From.UserName + ": " + line
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	history := append(b.recent[msg.Chat.ID], line)
	if len(history) > recentLimit {
		history = history[len(history)-recentLimit:]
	}
	b.recent[msg.Chat.ID] = history
}

func (b *Bot) recentMessages(chatID int64, n int) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	history := b.recent[chatID]
	if n > 0 && n < len(history) {
		history = history[len(history)-n:]
	}
	out := make([]string, len(history))
	copy(out, history)
	return out
}
