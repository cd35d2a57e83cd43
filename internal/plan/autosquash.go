package plan

import (
	"strings"

	"github.com/rebasekit/rebasekit/internal/models"
)

const (
	fixupPrefix  = "fixup! "
	squashPrefix = "squash! "
)

// autosquashPrefix splits a summary into its autosquash action and target
// summary, or returns ok=false for ordinary commits.
func autosquashPrefix(summary string) (action models.RebaseAction, target string, ok bool) {
	if rest, found := strings.CutPrefix(summary, fixupPrefix); found {
		return models.ActionFixup, rest, true
	}
	if rest, found := strings.CutPrefix(summary, squashPrefix); found {
		return models.ActionSquash, rest, true
	}
	return "", "", false
}

// ApplyAutosquash relocates fixup!/squash!-prefixed commits next to the
// commit they name, matching git's own autosquash heuristic: an exact
// summary match wins, else the first commit whose summary starts with the
// target text. Multiple autosquash commits for one target stack after it in
// encounter order. Commits with no matching target stay pick, move to the
// end of the plan, and are reported in unmatched.
func ApplyAutosquash(list []models.EditableRebaseCommit) models.AutosquashResult {
	var (
		targets    []models.EditableRebaseCommit
		autosquash []models.EditableRebaseCommit
	)
	for _, entry := range list {
		if _, _, ok := autosquashPrefix(entry.Summary); ok {
			autosquash = append(autosquash, entry)
		} else {
			targets = append(targets, entry)
		}
	}

	result := targets
	unmatched := []string{}
	for _, entry := range autosquash {
		action, target, _ := autosquashPrefix(entry.Summary)
		at := findTarget(result, target)
		if at < 0 {
			entry.Action = models.ActionPick
			result = append(result, entry)
			unmatched = append(unmatched, entry.ShortID)
			continue
		}
		entry.Action = action
		// Skip past squash/fixup already stacked on this target so
		// repeated autosquash commits keep their encounter order.
		insert := at + 1
		for insert < len(result) && result[insert].Action.IsSquashing() {
			insert++
		}
		result = append(result, models.EditableRebaseCommit{})
		copy(result[insert+1:], result[insert:])
		result[insert] = entry
	}

	return models.AutosquashResult{Plan: result, Unmatched: unmatched}
}

// findTarget returns the index of the first non-autosquash commit matching
// target, preferring an exact summary match over a prefix match. Ties are
// broken by scan order alone.
func findTarget(list []models.EditableRebaseCommit, target string) int {
	prefixMatch := -1
	for i, entry := range list {
		if _, _, ok := autosquashPrefix(entry.Summary); ok {
			continue
		}
		if entry.Summary == target {
			return i
		}
		if prefixMatch < 0 && strings.HasPrefix(entry.Summary, target) {
			prefixMatch = i
		}
	}
	return prefixMatch
}
