// Package model defines the domain types used across the application.
package model

import (
	"slices"
	"strings"
	"time"
)

// Channel binds the forum to a single Telegram chat. Routing rules are
// scoped to a channel.
type Channel struct {
	ID        int64
	ChatID    int64
	Name      string
	CreatedAt time.Time
}

// Category is a forum category, identified by its slug.
type Category struct {
	ID   int64
	Slug string
	Name string
}

// Tag is a forum tag.
type Tag struct {
	ID   int64
	Name string
}

// Group is a forum user group.
type Group struct {
	ID   int64
	Name string
}

// RuleType defines what kind of forum activity a rule covers.
type RuleType string

// Supported rule types.
const (
	TypeNormal       RuleType = "normal"
	TypeGroupMessage RuleType = "group_message"
	TypeGroupMention RuleType = "group_mention"
)

// RuleFilter is the verbosity level of a rule.
type RuleFilter string

// Supported filters.
const (
	FilterWatch  RuleFilter = "watch"
	FilterFollow RuleFilter = "follow"
	FilterMute   RuleFilter = "mute"
)

// CategoryScope identifies the categories a normal rule applies to:
// either every category, or exactly one.
type CategoryScope struct {
	CategoryID int64
	All        bool
}

// AllCategories returns the scope covering every category.
func AllCategories() CategoryScope {
	return CategoryScope{All: true}
}

// OneCategory returns the scope covering a single category.
func OneCategory(id int64) CategoryScope {
	return CategoryScope{CategoryID: id}
}

// Covers reports whether the scope applies to the given category.
func (s CategoryScope) Covers(categoryID int64) bool {
	return s.All || s.CategoryID == categoryID
}

// Rule routes forum activity matching its criteria to its channel.
// Category is meaningful only for TypeNormal; GroupID only for the
// group types. Tags is nil when the rule has no tag criteria.
type Rule struct {
	ID        int64
	ChannelID int64
	Type      RuleType
	Filter    RuleFilter
	Category  CategoryScope
	GroupID   int64
	Tags      []string
	CreatedAt time.Time
}

// NormalizeTags trims, deduplicates, and sorts tag names. An empty
// result is always nil, never an empty slice, so "no tags" has a
// single representation everywhere.
func NormalizeTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// SameTags reports whether two normalized tag sets are equal,
// treating nil and empty as the same.
func SameTags(a, b []string) bool {
	return slices.Equal(a, b)
}

// UnionTags merges two normalized tag sets without duplicates.
func UnionTags(a, b []string) []string {
	return NormalizeTags(append(slices.Clone(a), b...))
}
