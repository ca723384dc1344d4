// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	TelegramBotToken string
	DatabasePath     string
	LogLevel         string
	AdminUsers       []int64

	// ForumFeedURL is the forum's topic feed. Polling is disabled
	// when empty.
	ForumFeedURL string
	PollInterval time.Duration

	// RedisAddr enables the transcript staging cache when set.
	RedisAddr string

	// TaggingEnabled controls whether tag criteria are shown in
	// status output.
	TaggingEnabled bool
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./data/forumbridge.db"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	var admins []int64
	if raw := os.Getenv("ADMIN_USERS"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			uid, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid user ID %q in ADMIN_USERS: %w", s, err)
			}
			admins = append(admins, uid)
		}
	}

	pollInterval := 5 * time.Minute
	if raw := os.Getenv("POLL_INTERVAL_MINUTES"); raw != "" {
		mins, err := strconv.Atoi(raw)
		if err != nil || mins < 1 || mins > 1440 {
			return nil, fmt.Errorf("POLL_INTERVAL_MINUTES must be between 1 and 1440")
		}
		pollInterval = time.Duration(mins) * time.Minute
	}

	tagging := true
	if raw := os.Getenv("TAGGING_ENABLED"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid TAGGING_ENABLED %q: %w", raw, err)
		}
		tagging = v
	}

	return &Config{
		TelegramBotToken: token,
		DatabasePath:     dbPath,
		LogLevel:         logLevel,
		AdminUsers:       admins,
		ForumFeedURL:     os.Getenv("FORUM_FEED_URL"),
		PollInterval:     pollInterval,
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		TaggingEnabled:   tagging,
	}, nil
}

// IsAdmin checks whether a user ID is in the admin list.
// Returns true if the list is empty (all users permitted).
func (c *Config) IsAdmin(userID int64) bool {
	if len(c.AdminUsers) == 0 {
		return true
	}
	for _, id := range c.AdminUsers {
		if id == userID {
			return true
		}
	}
	return false
}
