// Package rules implements the routing rule engine: command parsing,
// rule reconciliation, precedence ordering, and status rendering.
package rules

import (
	"log/slog"
	"sync"

	"forumbridge/internal/config"
	"forumbridge/internal/storage"
)

// Engine processes rule commands against the store. Mutating
// operations on a channel's rule set are serialized per channel, so a
// reconciliation pass never races another one for the same channel.
type Engine struct {
	store storage.Storage
	cfg   *config.Config
	log   *slog.Logger

	mu    sync.Mutex
	chans map[int64]*sync.Mutex
}

// New creates an Engine backed by the given store.
func New(store storage.Storage, cfg *config.Config, log *slog.Logger) *Engine {
	return &Engine{
		store: store,
		cfg:   cfg,
		log:   log,
		chans: make(map[int64]*sync.Mutex),
	}
}

func (e *Engine) channelLock(channelID int64) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.chans[channelID]
	if !ok {
		m = &sync.Mutex{}
		e.chans[channelID] = m
	}
	return m
}
