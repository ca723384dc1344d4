package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/redis/go-redis/v9"

	"forumbridge/internal/bot"
	"forumbridge/internal/config"
	"forumbridge/internal/rules"
	"forumbridge/internal/scheduler"
	"forumbridge/internal/storage"
	"forumbridge/internal/transcript"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	var transcripts *transcript.Store
	if cfg.RedisAddr != "" {
		transcripts = transcript.New(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	} else {
		log.Info("transcript staging disabled, REDIS_ADDR not set")
	}

	engine := rules.New(store, cfg, log)

	b, err := bot.New(cfg.TelegramBotToken, store, engine, transcripts, cfg, log)
	if err != nil {
		log.Error("create bot", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("starting bot")

	if cfg.ForumFeedURL != "" {
		poller := scheduler.New(store, b, log, cfg.ForumFeedURL)
		poller.SetTickInterval(cfg.PollInterval)
		go poller.Run(ctx)
	} else {
		log.Info("forum polling disabled, FORUM_FEED_URL not set")
	}

	b.Run(ctx)

	log.Info("bot stopped")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
