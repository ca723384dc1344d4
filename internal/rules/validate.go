package rules

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"forumbridge/internal/model"
	"forumbridge/internal/storage"
)

// ValidationError lists every invariant a rule violates. It is
// produced before any store write, so an invalid rule is never
// partially persisted.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "invalid rule: " + strings.Join(e.Violations, "; ")
}

// validateRule checks a rule against the model invariants: known
// filter and type, a channel that exists, a category only on normal
// rules, a group that exists on group rules, and tags that all exist.
func (e *Engine) validateRule(ctx context.Context, r *model.Rule) error {
	var violations []string

	switch r.Filter {
	case model.FilterWatch, model.FilterFollow, model.FilterMute:
	default:
		violations = append(violations, fmt.Sprintf("%q is not a valid filter", r.Filter))
	}

	switch r.Type {
	case model.TypeNormal, model.TypeGroupMessage, model.TypeGroupMention:
	default:
		violations = append(violations, fmt.Sprintf("%q is not a valid rule type", r.Type))
	}

	if _, err := e.store.GetChannel(ctx, r.ChannelID); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("resolve channel %d: %w", r.ChannelID, err)
		}
		violations = append(violations, fmt.Sprintf("%d is not a valid channel id", r.ChannelID))
	}

	switch r.Type {
	case model.TypeNormal:
		if r.GroupID != 0 {
			violations = append(violations, "group cannot be specified for a normal rule")
		}
		if !r.Category.All {
			if _, err := e.store.CategoryByID(ctx, r.Category.CategoryID); err != nil {
				if !errors.Is(err, storage.ErrNotFound) {
					return fmt.Errorf("resolve category %d: %w", r.Category.CategoryID, err)
				}
				violations = append(violations, fmt.Sprintf("%d is not a valid category id", r.Category.CategoryID))
			}
		}
	case model.TypeGroupMessage, model.TypeGroupMention:
		if !r.Category.All && r.Category.CategoryID != 0 {
			violations = append(violations, "category cannot be specified for a group rule")
		}
		if _, err := e.store.GroupByID(ctx, r.GroupID); err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("resolve group %d: %w", r.GroupID, err)
			}
			violations = append(violations, fmt.Sprintf("%d is not a valid group id", r.GroupID))
		}
	}

	for _, tag := range r.Tags {
		if _, err := e.store.TagByName(ctx, tag); err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("resolve tag %q: %w", tag, err)
			}
			violations = append(violations, fmt.Sprintf("%q is not a valid tag", tag))
		}
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}
