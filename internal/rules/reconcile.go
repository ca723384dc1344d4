package rules

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"forumbridge/internal/model"
)

// Outcome reports what a reconciliation pass did.
type Outcome int

// Reconciliation outcomes.
const (
	OutcomeError Outcome = iota
	OutcomeCreated
	OutcomeUpdated
)

// SmartCreateRule creates or adjusts a normal rule so that at most one
// rule per distinct (category scope, tag set) criterion exists on the
// channel. Three tiers are tried in order against the channel's rules
// sharing the requested category scope:
//
//  1. Rules whose tag set exactly equals the requested one: the
//     lowest-ID rule is kept, the rest are destroyed as duplicates,
//     and the kept rule's filter is updated.
//  2. Rules whose filter equals the requested one: the lowest-ID rule
//     is kept and its tag set becomes the union of the requested tags
//     and every matched rule's tags; the rest are destroyed.
//  3. Otherwise a new rule is created.
//
// The whole pass runs under the channel's lock.
func (e *Engine) SmartCreateRule(ctx context.Context, channel *model.Channel, filter model.RuleFilter, scope model.CategoryScope, tags []string) (Outcome, error) {
	lock := e.channelLock(channel.ID)
	lock.Lock()
	defer lock.Unlock()

	tags = model.NormalizeTags(tags)

	existing, err := e.store.ListRules(ctx, channel.ID)
	if err != nil {
		return OutcomeError, fmt.Errorf("list rules: %w", err)
	}

	var sameCategory []model.Rule
	for _, r := range existing {
		if r.Type == model.TypeNormal && r.Category == scope {
			sameCategory = append(sameCategory, r)
		}
	}
	// Lowest ID first, so the canonical pick below is deterministic.
	slices.SortFunc(sameCategory, func(a, b model.Rule) int {
		return cmp.Compare(a.ID, b.ID)
	})

	var exact []model.Rule
	for _, r := range sameCategory {
		if model.SameTags(r.Tags, tags) {
			exact = append(exact, r)
		}
	}
	if len(exact) > 0 {
		canonical := exact[0]
		for _, dup := range exact[1:] {
			if err := e.store.DeleteRule(ctx, dup.ID); err != nil {
				return OutcomeError, fmt.Errorf("delete duplicate rule %d: %w", dup.ID, err)
			}
		}
		canonical.Filter = filter
		if err := e.validateRule(ctx, &canonical); err != nil {
			return OutcomeError, err
		}
		if err := e.store.UpdateRule(ctx, &canonical); err != nil {
			return OutcomeError, fmt.Errorf("update rule %d: %w", canonical.ID, err)
		}
		e.log.Debug("rule filter updated", "channel_id", channel.ID, "rule_id", canonical.ID, "filter", filter)
		return OutcomeUpdated, nil
	}

	var sameFilter []model.Rule
	for _, r := range sameCategory {
		if r.Filter == filter {
			sameFilter = append(sameFilter, r)
		}
	}
	if len(sameFilter) > 0 {
		union := tags
		for _, r := range sameFilter {
			union = model.UnionTags(union, r.Tags)
		}
		canonical := sameFilter[0]
		canonical.Tags = union
		if err := e.validateRule(ctx, &canonical); err != nil {
			return OutcomeError, err
		}
		if err := e.store.UpdateRule(ctx, &canonical); err != nil {
			return OutcomeError, fmt.Errorf("update rule %d: %w", canonical.ID, err)
		}
		for _, dup := range sameFilter[1:] {
			if err := e.store.DeleteRule(ctx, dup.ID); err != nil {
				return OutcomeError, fmt.Errorf("delete duplicate rule %d: %w", dup.ID, err)
			}
		}
		e.log.Debug("rule tags merged", "channel_id", channel.ID, "rule_id", canonical.ID, "tags", union)
		return OutcomeUpdated, nil
	}

	r := &model.Rule{
		ChannelID: channel.ID,
		Type:      model.TypeNormal,
		Filter:    filter,
		Category:  scope,
		Tags:      tags,
	}
	if err := e.validateRule(ctx, r); err != nil {
		return OutcomeError, err
	}
	if err := e.store.CreateRule(ctx, r); err != nil {
		return OutcomeError, fmt.Errorf("create rule: %w", err)
	}
	e.log.Debug("rule created", "channel_id", channel.ID, "rule_id", r.ID, "filter", filter)
	return OutcomeCreated, nil
}

// CreateGroupRule creates a group_message or group_mention rule for the
// channel. Group rules are not created through chat commands, so there
// is no reconciliation: the rule is validated and stored as given.
func (e *Engine) CreateGroupRule(ctx context.Context, channel *model.Channel, typ model.RuleType, groupID int64, filter model.RuleFilter) error {
	lock := e.channelLock(channel.ID)
	lock.Lock()
	defer lock.Unlock()

	r := &model.Rule{
		ChannelID: channel.ID,
		Type:      typ,
		Filter:    filter,
		GroupID:   groupID,
	}
	if err := e.validateRule(ctx, r); err != nil {
		return err
	}
	if err := e.store.CreateRule(ctx, r); err != nil {
		return fmt.Errorf("create group rule: %w", err)
	}
	return nil
}
