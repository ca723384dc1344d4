package rules

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"forumbridge/internal/model"
)

// ErrIndexOutOfRange is returned by DeleteByIndex for indexes outside
// [1, rule count].
var ErrIndexOutOfRange = errors.New("rule index out of range")

var typeRank = map[model.RuleType]int{
	model.TypeGroupMention: 1,
	model.TypeGroupMessage: 2,
	model.TypeNormal:       3,
}

var filterRank = map[model.RuleFilter]int{
	model.FilterMute:   1,
	model.FilterWatch:  2,
	model.FilterFollow: 3,
}

// OrderByPrecedence returns the rules in their display order: group
// mention rules first, then group message rules, then normal rules,
// each block ordered mute, watch, follow. Rule ID breaks remaining
// ties, so the order is a total order independent of input order.
// Position i+1 in the result is the rule's externally visible index.
func OrderByPrecedence(rules []model.Rule) []model.Rule {
	out := slices.Clone(rules)
	slices.SortFunc(out, func(a, b model.Rule) int {
		if d := typeRank[a.Type] - typeRank[b.Type]; d != 0 {
			return d
		}
		if d := filterRank[a.Filter] - filterRank[b.Filter]; d != 0 {
			return d
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// DeleteByIndex destroys the rule at the given 1-based position in the
// channel's precedence order, the same position shown by the status
// display.
func (e *Engine) DeleteByIndex(ctx context.Context, channel *model.Channel, index int) error {
	lock := e.channelLock(channel.ID)
	lock.Lock()
	defer lock.Unlock()

	rules, err := e.store.ListRules(ctx, channel.ID)
	if err != nil {
		return fmt.Errorf("list rules: %w", err)
	}
	if index < 1 || index > len(rules) {
		return ErrIndexOutOfRange
	}

	ordered := OrderByPrecedence(rules)
	if err := e.store.DeleteRule(ctx, ordered[index-1].ID); err != nil {
		return fmt.Errorf("delete rule %d: %w", ordered[index-1].ID, err)
	}
	return nil
}
