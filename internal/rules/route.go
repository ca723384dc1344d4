package rules

import (
	"slices"

	"forumbridge/internal/model"
)

// Verdict is the delivery decision for a forum topic against a
// channel's rule set.
type Verdict int

// Delivery verdicts.
const (
	// VerdictNone means no rule covers the topic; nothing is sent.
	VerdictNone Verdict = iota
	// VerdictMute suppresses the topic even if other rules would match.
	VerdictMute
	// VerdictWatch delivers the topic.
	VerdictWatch
	// VerdictFollow delivers new topics.
	VerdictFollow
)

// Decide returns the verdict for a topic with the given category and
// tags. The first normal rule in precedence order whose category scope
// covers the topic and whose tag criteria are empty or overlap the
// topic's tags decides. Mute sorts before watch and follow within a
// type, so a matching mute rule always wins. Group rules cover
// mentions and private messages, never polled topics.
func Decide(ruleset []model.Rule, categoryID int64, topicTags []string) Verdict {
	for _, r := range OrderByPrecedence(ruleset) {
		if r.Type != model.TypeNormal {
			continue
		}
		if !r.Category.Covers(categoryID) {
			continue
		}
		if len(r.Tags) > 0 && !overlap(r.Tags, topicTags) {
			continue
		}
		switch r.Filter {
		case model.FilterMute:
			return VerdictMute
		case model.FilterWatch:
			return VerdictWatch
		case model.FilterFollow:
			return VerdictFollow
		}
	}
	return VerdictNone
}

func overlap(a, b []string) bool {
	for _, s := range a {
		if slices.Contains(b, s) {
			return true
		}
	}
	return false
}
