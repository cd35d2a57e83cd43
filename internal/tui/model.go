// Package tui implements the interactive rebase plan editor.
package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rebasekit/rebasekit/internal/models"
	"github.com/rebasekit/rebasekit/internal/services"
	"github.com/rebasekit/rebasekit/internal/tui/components"
)

// Model is the plan editor state. It edits a single rebase session through
// the service layer and renders the plan next to its live preview.
type Model struct {
	service   *services.RebaseService
	sessionID string

	cursor  int
	width   int
	height  int
	editing bool // reword message input is open
	input   textinput.Model
	spin    spinner.Model

	executing bool
	done      bool
	status    string
	err       error
}

// executeFinishedMsg reports the outcome of running the rebase.
type executeFinishedMsg struct {
	err error
}

// New creates a plan editor over an already-created session.
func New(service *services.RebaseService, sessionID string) Model {
	input := textinput.New()
	input.Prompt = "reword: "
	input.CharLimit = 0

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(components.ColorAccent))

	return Model{
		service:   service,
		sessionID: sessionID,
		input:     input,
		spin:      spin,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Run starts the editor program and blocks until it exits. The returned
// model reports whether the rebase ran, so callers can print a closing
// message outside the alternate screen.
func Run(service *services.RebaseService, sessionID string) (Model, error) {
	p := tea.NewProgram(New(service, sessionID), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return Model{}, err
	}
	return final.(Model), nil
}

// Executed reports whether the rebase ran successfully before exit.
func (m Model) Executed() bool {
	return m.done && m.err == nil
}

// Err returns the error from the last failed operation, if any.
func (m Model) Err() error {
	return m.err
}

// plan returns the session's current plan, or nil after the session is gone.
func (m Model) plan() []models.EditableRebaseCommit {
	session, err := m.service.GetSession(m.sessionID)
	if err != nil {
		return nil
	}
	return session.Plan
}
