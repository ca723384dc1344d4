package rules

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"forumbridge/internal/model"
	"forumbridge/internal/storage"
)

// TagPrefix marks a command token as a tag name.
const TagPrefix = "tag:"

// ProcessCommand parses and executes a rule command for a channel.
// tokens is the whitespace-split command, first word included.
// All category and tag references are resolved before any rule is
// touched, so a failed command never leaves a partial write.
func (e *Engine) ProcessCommand(ctx context.Context, channel *model.Channel, tokens []string) Result {
	if len(tokens) == 0 {
		return Result{Code: CodeParseError}
	}
	cmd, rest := tokens[0], tokens[1:]

	switch cmd {
	case "watch", "follow", "mute":
		return e.filterCommand(ctx, channel, model.RuleFilter(cmd), rest)
	case "remove":
		return e.removeCommand(ctx, channel, rest)
	case "status":
		lines, err := e.StatusForChannel(ctx, channel)
		if err != nil {
			e.log.Error("channel status", "channel_id", channel.ID, "error", err)
			return Result{Code: CodeError}
		}
		return Result{Code: CodeStatus, Status: lines}
	case "help":
		return Result{Code: CodeHelp}
	default:
		return Result{Code: CodeParseError}
	}
}

func (e *Engine) filterCommand(ctx context.Context, channel *model.Channel, filter model.RuleFilter, args []string) Result {
	if len(args) == 0 {
		return Result{Code: CodeParseError}
	}

	// A leading tag token means the rule applies to all categories.
	scope := model.AllCategories()
	if !strings.HasPrefix(args[0], TagPrefix) {
		slug := args[0]
		args = args[1:]

		cat, err := e.store.CategoryBySlug(ctx, slug)
		if errors.Is(err, storage.ErrNotFound) {
			slugs, serr := e.store.AllCategorySlugs(ctx)
			if serr != nil {
				e.log.Error("list category slugs", "error", serr)
			}
			return Result{Code: CodeCategoryNotFound, Name: slug, KnownSlugs: slugs}
		}
		if err != nil {
			e.log.Error("resolve category", "slug", slug, "error", err)
			return Result{Code: CodeError}
		}
		scope = model.OneCategory(cat.ID)
	}

	var tags []string
	for _, tok := range args {
		if !strings.HasPrefix(tok, TagPrefix) {
			return Result{Code: CodeParseError}
		}
		name := strings.TrimPrefix(tok, TagPrefix)

		tag, err := e.store.TagByName(ctx, name)
		if errors.Is(err, storage.ErrNotFound) {
			return Result{Code: CodeTagNotFound, Name: name}
		}
		if err != nil {
			e.log.Error("resolve tag", "tag", name, "error", err)
			return Result{Code: CodeError}
		}
		tags = append(tags, tag.Name)
	}

	switch outcome, err := e.SmartCreateRule(ctx, channel, filter, scope, tags); outcome {
	case OutcomeCreated:
		return Result{Code: CodeCreated}
	case OutcomeUpdated:
		return Result{Code: CodeUpdated}
	default:
		e.log.Error("reconcile rule", "channel_id", channel.ID, "filter", filter, "error", err)
		return Result{Code: CodeError}
	}
}

func (e *Engine) removeCommand(ctx context.Context, channel *model.Channel, args []string) Result {
	if len(args) != 1 {
		return Result{Code: CodeParseError}
	}

	// The token must be a syntactically exact non-negative integer:
	// no signs, leading zeros, or whitespace.
	index, err := strconv.Atoi(args[0])
	if err != nil || strconv.Itoa(index) != args[0] || index < 0 {
		return Result{Code: CodeParseError}
	}

	switch err := e.DeleteByIndex(ctx, channel, index); {
	case err == nil:
		return Result{Code: CodeDeleted}
	case errors.Is(err, ErrIndexOutOfRange):
		return Result{Code: CodeIndexOutOfRange}
	default:
		e.log.Error("delete rule by index", "channel_id", channel.ID, "index", index, "error", err)
		return Result{Code: CodeError}
	}
}
