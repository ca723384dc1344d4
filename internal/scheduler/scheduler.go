// Package scheduler polls the forum topic feed and routes new topics
// into chat channels according to their rules.
package scheduler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"forumbridge/internal/bot"
	"forumbridge/internal/fetcher"
	"forumbridge/internal/model"
	"forumbridge/internal/rules"
	"forumbridge/internal/storage"
)

// Sender is the interface for sending Telegram messages.
type Sender interface {
	SendMessage(chatID int64, text string)
}

// Poller periodically fetches the forum feed and delivers matching
// topics to each channel.
type Poller struct {
	store   storage.Storage
	fetcher *fetcher.Fetcher
	sender  Sender
	log     *slog.Logger
	feedURL string
	tick    time.Duration
}

// New creates a Poller with the default HTTP client.
func New(store storage.Storage, sender Sender, log *slog.Logger, feedURL string) *Poller {
	return &Poller{
		store:   store,
		fetcher: fetcher.New(http.DefaultClient),
		sender:  sender,
		log:     log,
		feedURL: feedURL,
		tick:    5 * time.Minute,
	}
}

// NewWithFetcher creates a Poller with a custom fetcher (useful for testing).
func NewWithFetcher(store storage.Storage, f *fetcher.Fetcher, sender Sender, log *slog.Logger, feedURL string) *Poller {
	return &Poller{
		store:   store,
		fetcher: f,
		sender:  sender,
		log:     log,
		feedURL: feedURL,
		tick:    5 * time.Minute,
	}
}

// SetTickInterval overrides the default 5-minute poll interval.
func (p *Poller) SetTickInterval(d time.Duration) {
	p.tick = d
}

// Run starts the poll loop, blocking until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	p.checkFeed(ctx)

	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.checkFeed(ctx)
		}
	}
}

func (p *Poller) checkFeed(ctx context.Context) {
	topics, err := p.fetcher.Fetch(ctx, p.feedURL)
	if err != nil {
		p.log.Error("fetch forum feed", "url", p.feedURL, "error", err)
		return
	}

	channels, err := p.store.ListChannels(ctx)
	if err != nil {
		p.log.Error("list channels", "error", err)
		return
	}

	for _, topic := range topics {
		if ctx.Err() != nil {
			return
		}
		p.processTopic(ctx, topic, channels)
	}
}

func (p *Poller) processTopic(ctx context.Context, topic fetcher.Topic, channels []model.Channel) {
	seen, err := p.store.TopicSeen(ctx, topic.GUID)
	if err != nil {
		p.log.Error("check topic seen", "guid", topic.GUID, "error", err)
		return
	}
	if seen {
		return
	}

	cat, err := p.syncDirectory(ctx, topic)
	if err != nil {
		p.log.Error("sync directory", "guid", topic.GUID, "error", err)
		return
	}

	tags := model.NormalizeTags(topic.Tags)
	sent := 0
	for _, ch := range channels {
		ruleset, err := p.store.ListRules(ctx, ch.ID)
		if err != nil {
			p.log.Error("list rules", "channel_id", ch.ID, "error", err)
			continue
		}

		switch rules.Decide(ruleset, cat.ID, tags) {
		case rules.VerdictWatch, rules.VerdictFollow:
			p.sender.SendMessage(ch.ChatID, bot.FormatTopicNotification(topic))
			sent++
			// Rate limit: ~20 messages/sec max for Telegram
			time.Sleep(50 * time.Millisecond)
		}
	}

	if err := p.store.MarkTopicSeen(ctx, topic.GUID); err != nil {
		p.log.Error("mark topic seen", "guid", topic.GUID, "error", err)
	}
	if sent > 0 {
		p.log.Info("routed topic", "guid", topic.GUID, "title", topic.Title, "channels", sent)
	}
}

// syncDirectory records the category and tags observed on a topic so
// that command-time lookups can resolve them.
func (p *Poller) syncDirectory(ctx context.Context, topic fetcher.Topic) (*model.Category, error) {
	slug := fetcher.Slugify(topic.CategoryName)
	if slug == "" {
		slug = "uncategorized"
	}
	cat, err := p.store.UpsertCategory(ctx, slug, topic.CategoryName)
	if err != nil {
		return nil, err
	}
	for _, tag := range topic.Tags {
		if _, err := p.store.UpsertTag(ctx, tag); err != nil {
			return nil, err
		}
	}
	return cat, nil
}
