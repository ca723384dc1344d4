package bot

import (
	"strings"
	"testing"

	"forumbridge/internal/fetcher"
	"forumbridge/internal/rules"
)

func TestFormatResult(t *testing.T) {
	tests := []struct {
		name   string
		result rules.Result
		want   string
	}{
		{
			name:   "created",
			result: rules.Result{Code: rules.CodeCreated},
			want:   "Rule created.",
		},
		{
			name:   "updated",
			result: rules.Result{Code: rules.CodeUpdated},
			want:   "Existing rule updated.",
		},
		{
			name:   "deleted",
			result: rules.Result{Code: rules.CodeDeleted},
			want:   "Rule removed.",
		},
		{
			name:   "index out of range",
			result: rules.Result{Code: rules.CodeIndexOutOfRange},
			want:   "No rule with that number. Use /status to see rule numbers.",
		},
		{
			name: "category not found",
			result: rules.Result{
				Code:       rules.CodeCategoryNotFound,
				Name:       "suport",
				KnownSlugs: []string{"general", "support"},
			},
			want: `Category "suport" not found. Known categories: general, support`,
		},
		{
			name:   "tag not found",
			result: rules.Result{Code: rules.CodeTagNotFound, Name: "nope"},
			want:   `Tag "nope" not found.`,
		},
		{
			name:   "error",
			result: rules.Result{Code: rules.CodeError},
			want:   "Something went wrong. No rules were changed.",
		},
		{
			name:   "parse error",
			result: rules.Result{Code: rules.CodeParseError},
			want:   parseErrorText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatResult(tt.result); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestFormatResultHelp(t *testing.T) {
	got := FormatResult(rules.Result{Code: rules.CodeHelp})
	for _, cmd := range []string{"/watch", "/follow", "/mute", "/remove", "/status", "/transcript"} {
		if !strings.Contains(got, cmd) {
			t.Errorf("help text missing %s", cmd)
		}
	}
}

func TestFormatStatusEmpty(t *testing.T) {
	got := FormatStatus(nil)
	want := "Rules for this channel:\nNo rules configured. Use /watch, /follow or /mute to create one."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFormatStatusLines(t *testing.T) {
	lines := []rules.StatusLine{
		{Index: 1, Filter: "watch", Label: rules.LabelCategory, Name: "support", Tags: []string{"bug", "urgent"}},
		{Index: 2, Filter: "follow", Label: rules.LabelAllCategories},
		{Index: 3, Filter: "mute", Label: rules.LabelDeletedCategory},
		{Index: 4, Filter: "watch", Label: rules.LabelGroupMessage, Name: "admins"},
		{Index: 5, Filter: "watch", Label: rules.LabelGroupMention, Name: "mods"},
		{Index: 6, Filter: "follow", Label: rules.LabelDeletedGroup},
	}

	got := FormatStatus(lines)
	want := "Rules for this channel:\n" +
		"1. watch support, tags: bug, urgent\n" +
		"2. follow all categories\n" +
		"3. mute (deleted category)\n" +
		"4. watch messages to @admins\n" +
		"5. watch mentions of @mods\n" +
		"6. follow (deleted group)\n"
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestFormatTopicNotification(t *testing.T) {
	topic := fetcher.Topic{
		Title:        "Search is broken on mobile",
		Excerpt:      "Searching from the mobile layout returns no results.",
		Link:         "https://forum.example.com/t/101",
		CategoryName: "Site Feedback",
	}

	got := FormatTopicNotification(topic)
	want := "[Site Feedback]\n\n" +
		"Search is broken on mobile\n\n" +
		"Searching from the mobile layout returns no results.\n\n" +
		"https://forum.example.com/t/101"
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestFormatTopicNotificationBareTitle(t *testing.T) {
	got := FormatTopicNotification(fetcher.Topic{Title: "Hello"})
	if got != "Hello" {
		t.Errorf("expected bare title, got %q", got)
	}
}
