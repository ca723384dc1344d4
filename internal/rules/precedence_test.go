package rules

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"forumbridge/internal/model"
)

func TestOrderByPrecedence(t *testing.T) {
	rules := []model.Rule{
		{ID: 1, Type: model.TypeNormal, Filter: model.FilterFollow},
		{ID: 2, Type: model.TypeNormal, Filter: model.FilterWatch},
		{ID: 3, Type: model.TypeNormal, Filter: model.FilterMute},
		{ID: 4, Type: model.TypeGroupMessage, Filter: model.FilterWatch},
		{ID: 5, Type: model.TypeGroupMention, Filter: model.FilterFollow},
		{ID: 6, Type: model.TypeGroupMention, Filter: model.FilterMute},
	}
	wantIDs := []int64{6, 5, 4, 3, 2, 1}

	// The order is total: every insertion order sorts the same way.
	permutations := [][]int{
		{0, 1, 2, 3, 4, 5},
		{5, 4, 3, 2, 1, 0},
		{2, 5, 0, 3, 1, 4},
		{3, 0, 5, 1, 4, 2},
	}
	for _, perm := range permutations {
		input := make([]model.Rule, len(perm))
		for i, idx := range perm {
			input[i] = rules[idx]
		}

		ordered := OrderByPrecedence(input)
		gotIDs := make([]int64, len(ordered))
		for i, r := range ordered {
			gotIDs[i] = r.ID
		}
		if diff := cmp.Diff(wantIDs, gotIDs); diff != "" {
			t.Errorf("permutation %v mismatch (-want +got):\n%s", perm, diff)
		}
	}
}

func TestOrderByPrecedenceTieBreaksOnID(t *testing.T) {
	rules := []model.Rule{
		{ID: 9, Type: model.TypeNormal, Filter: model.FilterWatch},
		{ID: 4, Type: model.TypeNormal, Filter: model.FilterWatch},
	}
	ordered := OrderByPrecedence(rules)
	if ordered[0].ID != 4 || ordered[1].ID != 9 {
		t.Errorf("expected ID order [4 9], got [%d %d]", ordered[0].ID, ordered[1].ID)
	}
}

func TestOrderByPrecedenceDoesNotMutateInput(t *testing.T) {
	rules := []model.Rule{
		{ID: 1, Type: model.TypeNormal, Filter: model.FilterFollow},
		{ID: 2, Type: model.TypeGroupMention, Filter: model.FilterMute},
	}
	OrderByPrecedence(rules)
	if rules[0].ID != 1 {
		t.Error("input slice was reordered")
	}
}

func TestDeleteByIndex(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t)
	ch := seedChannel(t, store)
	cat1 := seedCategory(t, store, "alpha")
	cat2 := seedCategory(t, store, "beta")
	cat3 := seedCategory(t, store, "gamma")

	// Insertion order deliberately differs from precedence order.
	follow := seedRule(t, store, model.Rule{ChannelID: ch.ID, Type: model.TypeNormal, Filter: model.FilterFollow, Category: model.OneCategory(cat1.ID)})
	mute := seedRule(t, store, model.Rule{ChannelID: ch.ID, Type: model.TypeNormal, Filter: model.FilterMute, Category: model.OneCategory(cat2.ID)})
	seedRule(t, store, model.Rule{ChannelID: ch.ID, Type: model.TypeNormal, Filter: model.FilterWatch, Category: model.OneCategory(cat3.ID)})

	for _, index := range []int{-1, 0, 4} {
		if err := e.DeleteByIndex(ctx, ch, index); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("index %d: expected ErrIndexOutOfRange, got %v", index, err)
		}
	}
	if got := channelRules(t, store, ch.ID); len(got) != 3 {
		t.Fatalf("failed deletions must not mutate the store, got %d rules", len(got))
	}

	// Precedence order is mute, watch, follow; index 2 is the watch rule.
	if err := e.DeleteByIndex(ctx, ch, 2); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got := channelRules(t, store, ch.ID)
	if len(got) != 2 {
		t.Fatalf("expected 2 rules left, got %d", len(got))
	}
	gotIDs := map[int64]bool{got[0].ID: true, got[1].ID: true}
	if !gotIDs[mute.ID] || !gotIDs[follow.ID] {
		t.Errorf("expected mute and follow rules to remain, got %+v", got)
	}
}
