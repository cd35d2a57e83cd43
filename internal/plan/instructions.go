package plan

import (
	"fmt"
	"strings"

	"github.com/rebasekit/rebasekit/internal/models"
)

// Instruction is one line of the executable rebase todo list handed to the
// git backend. Exec instructions carry the shell command in ExecCommand.
type Instruction struct {
	Action  string
	ShortID string
	Summary string
	// ExecCommand is set on synthetic "exec" instructions only, such as the
	// amend that applies a reword message after its pick.
	ExecCommand string
}

// Line renders the instruction in the textual todo-list form.
func (in Instruction) Line() string {
	if in.Action == "exec" {
		return "exec " + in.ExecCommand
	}
	return fmt.Sprintf("%s %s %s", in.Action, in.ShortID, in.Summary)
}

// BuildExecutionPlan flattens the plan into its executable instruction
// sequence. Rewords with a changed message become a pick followed by an exec
// that amends with the new message; rewords with an unchanged message
// degrade to a plain pick. Every other entry (drop included) is emitted as
// its action verbatim; the backend's sequencer already knows what drop means.
func BuildExecutionPlan(list []models.EditableRebaseCommit) []Instruction {
	instructions := make([]Instruction, 0, len(list))
	for _, entry := range list {
		if entry.Action == models.ActionReword && entry.NewMessage != entry.Summary && entry.NewMessage != "" {
			instructions = append(instructions,
				Instruction{Action: "pick", ShortID: entry.ShortID, Summary: entry.Summary},
				Instruction{
					Action:      "exec",
					ShortID:     entry.ShortID,
					ExecCommand: fmt.Sprintf("git commit --amend -m '%s'", EscapeMessage(entry.NewMessage)),
				},
			)
			continue
		}
		action := entry.Action
		if action == models.ActionReword {
			// Rewording to the same text is a no-op.
			action = models.ActionPick
		}
		instructions = append(instructions, Instruction{
			Action:  string(action),
			ShortID: entry.ShortID,
			Summary: entry.Summary,
		})
	}
	return instructions
}

// PlanText renders the execution plan as the newline-joined todo list the
// backend consumes, one instruction per line.
func PlanText(list []models.EditableRebaseCommit) string {
	instructions := BuildExecutionPlan(list)
	lines := make([]string, len(instructions))
	for i, in := range instructions {
		lines[i] = in.Line()
	}
	return strings.Join(lines, "\n")
}

// EscapeMessage makes a commit message safe for a shell-style single-quoted
// context: backslashes double, single quotes gain a backslash, and newlines
// become the literal two-character \n token.
func EscapeMessage(message string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		"\n", `\n`,
	)
	return replacer.Replace(message)
}
