package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebasekit/rebasekit/internal/models"
)

func TestApplyAutosquash(t *testing.T) {
	t.Run("RelocatesFixupNextToTarget", func(t *testing.T) {
		list := Load(commits("feat", "fixup! feat", "other"))
		result := ApplyAutosquash(list)

		require.Len(t, result.Plan, 3)
		assert.Empty(t, result.Unmatched)
		assert.Equal(t, "feat", result.Plan[0].Summary)
		assert.Equal(t, models.ActionPick, result.Plan[0].Action)
		assert.Equal(t, "fixup! feat", result.Plan[1].Summary)
		assert.Equal(t, models.ActionFixup, result.Plan[1].Action)
		assert.Equal(t, "other", result.Plan[2].Summary)
		assert.Equal(t, models.ActionPick, result.Plan[2].Action)
	})

	t.Run("SquashPrefixAssignsSquashAction", func(t *testing.T) {
		list := Load(commits("feat", "squash! feat"))
		result := ApplyAutosquash(list)
		assert.Equal(t, models.ActionSquash, result.Plan[1].Action)
	})

	t.Run("PrefixMatchFallback", func(t *testing.T) {
		// No commit is summarized exactly "add parser", but one starts with it.
		list := Load(commits("add parser for config files", "fixup! add parser"))
		result := ApplyAutosquash(list)
		require.Len(t, result.Plan, 2)
		assert.Empty(t, result.Unmatched)
		assert.Equal(t, "fixup! add parser", result.Plan[1].Summary)
		assert.Equal(t, models.ActionFixup, result.Plan[1].Action)
	})

	t.Run("ExactMatchBeatsEarlierPrefixMatch", func(t *testing.T) {
		list := Load(commits("feat extended", "feat", "fixup! feat"))
		result := ApplyAutosquash(list)
		require.Len(t, result.Plan, 3)
		// The fixup must land after the exact "feat" match, not the prefix one.
		assert.Equal(t, "feat", result.Plan[1].Summary)
		assert.Equal(t, "fixup! feat", result.Plan[2].Summary)
	})

	t.Run("MultipleFixupsStackInEncounterOrder", func(t *testing.T) {
		list := Load(commits("feat", "fixup! feat", "other", "fixup! feat"))
		result := ApplyAutosquash(list)
		require.Len(t, result.Plan, 4)
		assert.Equal(t, "feat", result.Plan[0].Summary)
		assert.Equal(t, "b", result.Plan[1].ShortID)
		assert.Equal(t, "d", result.Plan[2].ShortID)
		assert.Equal(t, "other", result.Plan[3].Summary)
	})

	t.Run("UnmatchedKeptAsPickAtEnd", func(t *testing.T) {
		list := Load(commits("squash! missing"))
		result := ApplyAutosquash(list)
		require.Len(t, result.Plan, 1)
		assert.Equal(t, []string{"a"}, result.Unmatched)
		assert.Equal(t, models.ActionPick, result.Plan[0].Action)

		preview := GeneratePreview(SetAction(result.Plan, 0, models.ActionSquash))
		require.Len(t, preview, 1)
		assert.Equal(t, "Cannot squash: no previous commit to combine with", preview[0].Error)
	})

	t.Run("IdempotentOnceApplied", func(t *testing.T) {
		list := Load(commits("feat", "fixup! feat", "other", "squash! other"))
		first := ApplyAutosquash(list)
		second := ApplyAutosquash(first.Plan)
		assert.Equal(t, first.Plan, second.Plan)
		assert.Empty(t, second.Unmatched)
	})

	t.Run("PlanLengthNeverChanges", func(t *testing.T) {
		list := Load(commits("a", "fixup! a", "squash! zzz", "b"))
		result := ApplyAutosquash(list)
		assert.Len(t, result.Plan, len(list))
	})
}
