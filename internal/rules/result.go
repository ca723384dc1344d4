package rules

import "forumbridge/internal/model"

// Code identifies the outcome of a processed command. The engine never
// produces user-facing text; the transport layer maps codes and their
// parameters to whatever the chat platform should display.
type Code int

// Command outcomes.
const (
	// CodeParseError means the command was malformed or incomplete.
	CodeParseError Code = iota
	// CodeCreated means a new rule was created.
	CodeCreated
	// CodeUpdated means an existing rule was adjusted instead of
	// creating a duplicate.
	CodeUpdated
	// CodeDeleted means a rule was removed.
	CodeDeleted
	// CodeIndexOutOfRange means the removal index was outside [1, count].
	CodeIndexOutOfRange
	// CodeCategoryNotFound means the category slug did not resolve.
	// The result carries the requested name and all known slugs.
	CodeCategoryNotFound
	// CodeTagNotFound means a tag name did not resolve. The result
	// carries the requested name.
	CodeTagNotFound
	// CodeStatus carries the ordered rule display lines.
	CodeStatus
	// CodeHelp asks the caller to display the command reference.
	CodeHelp
	// CodeError is the generic failure outcome; the caller cannot
	// distinguish why a create, update, or delete failed.
	CodeError
)

// Result is the outcome of ProcessCommand, a code plus its parameters.
type Result struct {
	Code       Code
	Name       string       // offending category or tag name
	KnownSlugs []string     // all category slugs, for CodeCategoryNotFound
	Status     []StatusLine // display lines, for CodeStatus
}

// LabelKind selects the template for a status line's rule label.
type LabelKind int

// Status line labels.
const (
	LabelCategory LabelKind = iota
	LabelAllCategories
	LabelDeletedCategory
	LabelGroupMessage
	LabelGroupMention
	LabelDeletedGroup
)

// StatusLine describes one rule in a channel's status display: its
// 1-based precedence index, its filter, and a resolved label. Name is
// the category slug or group name for the label kinds that carry one.
// Tags is populated only when tagging is enabled and the rule has tags.
type StatusLine struct {
	Index  int
	Filter model.RuleFilter
	Label  LabelKind
	Name   string
	Tags   []string
}
