package rules

import (
	"context"
	"errors"
	"fmt"

	"forumbridge/internal/model"
	"forumbridge/internal/storage"
)

// StatusForChannel returns one display line per rule on the channel,
// in precedence order. Category and group references are resolved
// through the directory; references that no longer resolve get the
// corresponding deleted-label kind instead of failing.
func (e *Engine) StatusForChannel(ctx context.Context, channel *model.Channel) ([]StatusLine, error) {
	rules, err := e.store.ListRules(ctx, channel.ID)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}

	var lines []StatusLine
	for i, r := range OrderByPrecedence(rules) {
		line := StatusLine{Index: i + 1, Filter: r.Filter}

		switch r.Type {
		case model.TypeNormal:
			if r.Category.All {
				line.Label = LabelAllCategories
				break
			}
			cat, err := e.store.CategoryByID(ctx, r.Category.CategoryID)
			switch {
			case errors.Is(err, storage.ErrNotFound):
				line.Label = LabelDeletedCategory
			case err != nil:
				return nil, fmt.Errorf("resolve category %d: %w", r.Category.CategoryID, err)
			default:
				line.Label = LabelCategory
				line.Name = cat.Slug
			}
		case model.TypeGroupMessage, model.TypeGroupMention:
			group, err := e.store.GroupByID(ctx, r.GroupID)
			switch {
			case errors.Is(err, storage.ErrNotFound):
				line.Label = LabelDeletedGroup
			case err != nil:
				return nil, fmt.Errorf("resolve group %d: %w", r.GroupID, err)
			default:
				if r.Type == model.TypeGroupMessage {
					line.Label = LabelGroupMessage
				} else {
					line.Label = LabelGroupMention
				}
				line.Name = group.Name
			}
		}

		if e.cfg.TaggingEnabled && len(r.Tags) > 0 {
			line.Tags = r.Tags
		}
		lines = append(lines, line)
	}
	return lines, nil
}
