package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rebasekit/rebasekit/internal/tui/components"
)

const helpLine = "j/k move  J/K reorder  p/r/e/s/f/d action  a autosquash  x execute  q quit"

// View implements tea.Model.
func (m Model) View() string {
	session, err := m.service.GetSession(m.sessionID)
	if err != nil {
		return "session closed\n"
	}

	var b strings.Builder

	title := fmt.Sprintf("Rebase %d commits onto %s", len(session.Plan), session.OntoRef)
	b.WriteString(components.HeaderStyle.Render(title) + "\n\n")

	left := m.renderPlan()
	right := m.renderPreview()
	if m.width >= 100 {
		leftBox := lipgloss.NewStyle().Width(m.width / 2).Render(left)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, leftBox, right))
	} else {
		b.WriteString(left + "\n" + right)
	}
	b.WriteString("\n")

	if stats, err := m.service.Stats(m.sessionID); err == nil {
		line := fmt.Sprintf("%d kept, %d squashed, %d dropped, %d reworded",
			stats.Kept, stats.Squashed, stats.Dropped, stats.Reworded)
		b.WriteString(components.MutedStyle.Render(line) + "\n")
	}

	if m.editing {
		b.WriteString(m.input.View() + "\n")
	}
	if m.err != nil {
		b.WriteString(components.ErrorStyle.Render(m.err.Error()) + "\n")
	}
	if m.status != "" {
		if m.executing {
			b.WriteString(m.spin.View() + " ")
		}
		b.WriteString(m.status + "\n")
	}
	if m.editing {
		b.WriteString(components.MutedStyle.Render("enter confirm  esc cancel") + "\n")
	} else {
		b.WriteString(components.MutedStyle.Render(helpLine) + "\n")
	}

	return b.String()
}

func (m Model) renderPlan() string {
	var b strings.Builder
	b.WriteString(components.SectionHeaderStyle.Render("Plan") + "\n")

	for i, entry := range m.plan() {
		cursor := "  "
		if i == m.cursor {
			cursor = components.CursorStyle.Render("> ")
		}
		action := components.ActionStyle(string(entry.Action)).Render(fmt.Sprintf("%-6s", entry.Action))
		summary := entry.Summary
		if entry.Action == "reword" && entry.NewMessage != "" {
			summary = firstLine(entry.NewMessage)
		}
		b.WriteString(fmt.Sprintf("%s%s %s %s\n",
			cursor, action, components.HashStyle.Render(entry.ShortID), summary))
	}
	return b.String()
}

func (m Model) renderPreview() string {
	preview, err := m.service.Preview(m.sessionID)
	if err != nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(components.SectionHeaderStyle.Render("Preview") + "\n")

	for _, row := range preview {
		if row.Error != "" {
			b.WriteString("  " + components.ErrorStyle.Render(
				fmt.Sprintf("%s %s", row.ShortID, row.Error)) + "\n")
			continue
		}
		line := fmt.Sprintf("  %s %s", components.HashStyle.Render(row.ShortID), row.Summary)
		if len(row.SquashedFrom) > 0 {
			line += components.MutedStyle.Render(
				fmt.Sprintf(" (+%d squashed)", len(row.SquashedFrom)))
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
