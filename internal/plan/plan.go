// Package plan implements the interactive-rebase plan engine: a pure,
// synchronous transform over an in-memory commit list. It never touches git
// itself; executing the plan it builds is the git layer's job.
package plan

import (
	"github.com/rebasekit/rebasekit/internal/models"
)

// Load wraps backend-supplied commits into an editable plan. Every entry
// starts as pick and remembers its original position. The input order is
// authoritative and is not re-sorted.
func Load(commits []models.RebaseCommit) []models.EditableRebaseCommit {
	list := make([]models.EditableRebaseCommit, len(commits))
	for i, commit := range commits {
		list[i] = models.EditableRebaseCommit{
			RebaseCommit:  commit,
			Action:        models.ActionPick,
			OriginalIndex: i,
		}
	}
	return list
}

// SetAction replaces the action at index and returns the updated list.
// Switching to reword seeds NewMessage with the current summary so an editor
// has a starting value; switching away clears it. An out-of-range index is a
// programming error and panics via the slice bounds check.
func SetAction(list []models.EditableRebaseCommit, index int, action models.RebaseAction) []models.EditableRebaseCommit {
	entry := &list[index]
	entry.Action = action
	if action == models.ActionReword {
		if entry.NewMessage == "" {
			entry.NewMessage = entry.Summary
		}
	} else {
		entry.NewMessage = ""
	}
	return list
}

// Reorder removes the entry at from and reinserts it at to, shifting the
// entries in between. Reorder(list, i, i) is a no-op. OriginalIndex values
// travel with their entries.
func Reorder(list []models.EditableRebaseCommit, from, to int) []models.EditableRebaseCommit {
	if from == to {
		return list
	}
	entry := list[from]
	list = append(list[:from], list[from+1:]...)
	list = append(list, models.EditableRebaseCommit{})
	copy(list[to+1:], list[to:])
	list[to] = entry
	return list
}

// Stats tallies action assignments. Kept + Squashed + Dropped always equals
// the plan length.
func Stats(list []models.EditableRebaseCommit) models.RebaseStats {
	var stats models.RebaseStats
	for _, entry := range list {
		switch {
		case entry.Action.IsBase():
			stats.Kept++
		case entry.Action.IsSquashing():
			stats.Squashed++
		case entry.Action == models.ActionDrop:
			stats.Dropped++
		}
		if entry.Action == models.ActionReword {
			stats.Reworded++
		}
	}
	return stats
}
