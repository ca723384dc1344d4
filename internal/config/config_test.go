package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TELEGRAM_BOT_TOKEN", "DATABASE_PATH", "LOG_LEVEL", "ADMIN_USERS",
		"FORUM_FEED_URL", "POLL_INTERVAL_MINUTES", "REDIS_ADDR", "TAGGING_ENABLED",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "token123")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := &Config{
		TelegramBotToken: "token123",
		DatabasePath:     "./data/forumbridge.db",
		LogLevel:         "info",
		PollInterval:     5 * time.Minute,
		TaggingEnabled:   true,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingToken(t *testing.T) {
	clearEnv(t)
	if _, err := Load(); err == nil {
		t.Error("expected error for missing token")
	}
}

func TestLoadFullEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "token123")
	t.Setenv("DATABASE_PATH", "/tmp/test.db")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ADMIN_USERS", "1, 2,3")
	t.Setenv("FORUM_FEED_URL", "https://forum.example.com/latest.rss")
	t.Setenv("POLL_INTERVAL_MINUTES", "15")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("TAGGING_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := &Config{
		TelegramBotToken: "token123",
		DatabasePath:     "/tmp/test.db",
		LogLevel:         "debug",
		AdminUsers:       []int64{1, 2, 3},
		ForumFeedURL:     "https://forum.example.com/latest.rss",
		PollInterval:     15 * time.Minute,
		RedisAddr:        "localhost:6379",
		TaggingEnabled:   false,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad admin user", key: "ADMIN_USERS", value: "1,abc"},
		{name: "bad poll interval", key: "POLL_INTERVAL_MINUTES", value: "0"},
		{name: "huge poll interval", key: "POLL_INTERVAL_MINUTES", value: "2000"},
		{name: "bad tagging flag", key: "TAGGING_ENABLED", value: "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("TELEGRAM_BOT_TOKEN", "token123")
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestIsAdmin(t *testing.T) {
	open := &Config{}
	if !open.IsAdmin(42) {
		t.Error("empty admin list should permit everyone")
	}

	restricted := &Config{AdminUsers: []int64{1, 2}}
	if !restricted.IsAdmin(1) {
		t.Error("listed user should be admin")
	}
	if restricted.IsAdmin(3) {
		t.Error("unlisted user should not be admin")
	}
}
