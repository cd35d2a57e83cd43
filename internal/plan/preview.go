package plan

import (
	"fmt"
	"strings"

	"github.com/rebasekit/rebasekit/internal/models"
)

// GeneratePreview projects the plan into the commit sequence the rebase
// would produce. Drops disappear, squash/fixup chains collapse into the row
// of their base commit, and a squash/fixup with no preceding base becomes a
// visible error row. The scan is a single left-to-right pass.
func GeneratePreview(list []models.EditableRebaseCommit) []models.PreviewCommit {
	preview := []models.PreviewCommit{}
	for i := 0; i < len(list); i++ {
		entry := list[i]
		switch {
		case entry.Action == models.ActionDrop:
			continue
		case entry.Action.IsSquashing():
			// Squashing entries behind a base commit are consumed by the
			// look-ahead below, so reaching one here means no base precedes
			// it: an orphaned squash/fixup the plan cannot execute.
			preview = append(preview, models.PreviewCommit{
				ShortID: entry.ShortID,
				Summary: entry.Summary,
				Error:   fmt.Sprintf("Cannot %s: no previous commit to combine with", entry.Action),
			})
		default:
			row := models.PreviewCommit{
				ShortID: entry.ShortID,
				Summary: displaySummary(entry),
			}
			// Collect the squash chain attached to this base. Drops are
			// invisible to the rebase todo list, so they don't break a chain.
			j := i + 1
			for j < len(list) {
				next := list[j]
				if next.Action == models.ActionDrop {
					j++
					continue
				}
				if !next.Action.IsSquashing() {
					break
				}
				row.SquashedFrom = append(row.SquashedFrom, next.ShortID)
				j++
			}
			i = j - 1
			if len(row.SquashedFrom) > 0 {
				row.IsSquashed = true
			}
			preview = append(preview, row)
		}
	}
	return preview
}

// displaySummary is the summary the preview shows for a base entry: the
// first line of the reword text when one is set, else the original summary.
func displaySummary(entry models.EditableRebaseCommit) string {
	if entry.Action == models.ActionReword && entry.NewMessage != "" {
		return strings.SplitN(entry.NewMessage, "\n", 2)[0]
	}
	return entry.Summary
}

// HasValidationErrors reports whether any preview row carries an error.
// Callers must refuse to execute while this is true or the plan is empty.
func HasValidationErrors(list []models.EditableRebaseCommit) bool {
	for _, row := range GeneratePreview(list) {
		if row.Error != "" {
			return true
		}
	}
	return false
}
