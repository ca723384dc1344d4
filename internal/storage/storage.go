// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"
	"errors"

	"forumbridge/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Storage is the interface for all persistence operations: the rule
// repository plus the directory of channels, categories, tags, and groups.
type Storage interface {
	CreateChannel(ctx context.Context, ch *model.Channel) error
	GetChannel(ctx context.Context, id int64) (*model.Channel, error)
	ChannelByChatID(ctx context.Context, chatID int64) (*model.Channel, error)
	ListChannels(ctx context.Context) ([]model.Channel, error)

	CreateRule(ctx context.Context, r *model.Rule) error
	ListRules(ctx context.Context, channelID int64) ([]model.Rule, error)
	UpdateRule(ctx context.Context, r *model.Rule) error
	DeleteRule(ctx context.Context, id int64) error

	CategoryBySlug(ctx context.Context, slug string) (*model.Category, error)
	CategoryByID(ctx context.Context, id int64) (*model.Category, error)
	AllCategorySlugs(ctx context.Context) ([]string, error)
	UpsertCategory(ctx context.Context, slug, name string) (*model.Category, error)
	TagByName(ctx context.Context, name string) (*model.Tag, error)
	UpsertTag(ctx context.Context, name string) (*model.Tag, error)
	GroupByID(ctx context.Context, id int64) (*model.Group, error)
	UpsertGroup(ctx context.Context, g *model.Group) error

	MarkTopicSeen(ctx context.Context, guid string) error
	TopicSeen(ctx context.Context, guid string) (bool, error)

	Close() error
}
