package bot

import (
	"fmt"
	"strings"

	"forumbridge/internal/fetcher"
	"forumbridge/internal/rules"
)

const helpText = `Rule management:
/watch <category> [tag:name ...] — route all activity in a category here
/follow <category> [tag:name ...] — route new topics only
/mute <category> [tag:name ...] — silence a category
/watch tag:name [tag:name ...] — rule for all categories, filtered by tags
/remove <index> — delete the rule with that /status index
/status — list this channel's rules
/groupmessage <group_id> <filter> — route messages to a group
/groupmention <group_id> <filter> — route mentions of a group
/transcript [n] — stage the last n chat messages for forum posting`

const parseErrorText = "Sorry, I didn't understand that. Use /help for the command reference."

// FormatResult renders a rule engine result as user-facing text.
// This is the single place where result codes become words.
func FormatResult(r rules.Result) string {
	switch r.Code {
	case rules.CodeCreated:
		return "Rule created."
	case rules.CodeUpdated:
		return "Existing rule updated."
	case rules.CodeDeleted:
		return "Rule removed."
	case rules.CodeIndexOutOfRange:
		return "No rule with that number. Use /status to see rule numbers."
	case rules.CodeCategoryNotFound:
		return fmt.Sprintf("Category %q not found. Known categories: %s", r.Name, strings.Join(r.KnownSlugs, ", "))
	case rules.CodeTagNotFound:
		return fmt.Sprintf("Tag %q not found.", r.Name)
	case rules.CodeStatus:
		return FormatStatus(r.Status)
	case rules.CodeHelp:
		return helpText
	case rules.CodeError:
		return "Something went wrong. No rules were changed."
	default:
		return parseErrorText
	}
}

// FormatStatus renders the status display lines.
func FormatStatus(lines []rules.StatusLine) string {
	var b strings.Builder
	b.WriteString("Rules for this channel:\n")

	if len(lines) == 0 {
		b.WriteString("No rules configured. Use /watch, /follow or /mute to create one.")
		return b.String()
	}

	for _, line := range lines {
		fmt.Fprintf(&b, "%d. %s %s", line.Index, line.Filter, labelText(line))
		if len(line.Tags) > 0 {
			fmt.Fprintf(&b, ", tags: %s", strings.Join(line.Tags, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func labelText(line rules.StatusLine) string {
	switch line.Label {
	case rules.LabelAllCategories:
		return "all categories"
	case rules.LabelDeletedCategory:
		return "(deleted category)"
	case rules.LabelGroupMessage:
		return fmt.Sprintf("messages to @%s", line.Name)
	case rules.LabelGroupMention:
		return fmt.Sprintf("mentions of @%s", line.Name)
	case rules.LabelDeletedGroup:
		return "(deleted group)"
	default:
		return line.Name
	}
}

// FormatTopicNotification formats a routed forum topic as a Telegram message.
func FormatTopicNotification(topic fetcher.Topic) string {
	var b strings.Builder
	if topic.CategoryName != "" {
		fmt.Fprintf(&b, "[%s]\n\n", topic.CategoryName)
	}
	b.WriteString(topic.Title)
	if topic.Excerpt != "" {
		b.WriteString("\n\n")
		b.WriteString(topic.Excerpt)
	}
	if topic.Link != "" {
		b.WriteString("\n\n")
		b.WriteString(topic.Link)
	}
	return b.String()
}
