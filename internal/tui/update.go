package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rebasekit/rebasekit/internal/git"
	"github.com/rebasekit/rebasekit/internal/models"
	"github.com/rebasekit/rebasekit/internal/tui/components"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case spinner.TickMsg:
		if !m.executing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case executeFinishedMsg:
		m.executing = false
		if msg.err != nil {
			m.err = msg.err
			if errors.Is(msg.err, git.ErrRebaseConflict) {
				m.status = "conflict: resolve in the repository, then git rebase --continue"
			} else {
				m.status = "rebase failed"
			}
			return m, nil
		}
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if m.editing {
			return m.handleRewordKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

// handleRewordKey routes keys to the reword input until confirmed or
// cancelled.
func (m Model) handleRewordKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		message := m.input.Value()
		if _, err := m.service.SetAction(m.sessionID, m.cursor, models.ActionReword, &message); err != nil {
			m.err = err
		} else {
			m.err = nil
		}
		m.editing = false
		m.input.Blur()
		return m, nil
	case tea.KeyEsc:
		m.editing = false
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.executing {
		return m, nil
	}

	switch msg.String() {
	case components.KeyQuit, components.KeyQuitAlt:
		return m, tea.Quit

	case components.KeyUp, components.KeyUpAlt:
		if m.cursor > 0 {
			m.cursor--
		}
	case components.KeyDown, components.KeyDownAlt:
		if m.cursor < len(m.plan())-1 {
			m.cursor++
		}

	case components.KeyMoveUp:
		if m.cursor > 0 {
			m = m.reorder(m.cursor, m.cursor-1)
		}
	case components.KeyMoveDown:
		if m.cursor < len(m.plan())-1 {
			m = m.reorder(m.cursor, m.cursor+1)
		}

	case components.KeyPick:
		m = m.setAction(models.ActionPick)
	case components.KeyReword:
		return m.openReword()
	case components.KeyEdit:
		m = m.setAction(models.ActionEdit)
	case components.KeySquash:
		m = m.setAction(models.ActionSquash)
	case components.KeyFixup:
		m = m.setAction(models.ActionFixup)
	case components.KeyDrop:
		m = m.setAction(models.ActionDrop)

	case components.KeyAutosquash:
		result, err := m.service.Autosquash(m.sessionID)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		if len(result.Unmatched) > 0 {
			m.status = fmt.Sprintf("autosquash: %d commit(s) had no target", len(result.Unmatched))
		} else {
			m.status = "autosquash applied"
		}

	case components.KeyExecute, components.KeyEnter:
		ok, err := m.service.CanExecute(m.sessionID)
		if err != nil {
			m.err = err
			return m, nil
		}
		if !ok {
			m.status = "plan has errors, fix them before executing"
			return m, nil
		}
		m.executing = true
		m.status = "running rebase..."
		return m, tea.Batch(m.spin.Tick, m.executeCmd())
	}

	return m, nil
}

// openReword assigns reword to the entry under the cursor and opens the
// message input seeded with the current message.
func (m Model) openReword() (tea.Model, tea.Cmd) {
	plan := m.plan()
	if m.cursor >= len(plan) {
		return m, nil
	}
	session, err := m.service.SetAction(m.sessionID, m.cursor, models.ActionReword, nil)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil
	m.status = ""
	m.editing = true
	m.input.SetValue(session.Plan[m.cursor].NewMessage)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m Model) reorder(from, to int) Model {
	if _, err := m.service.Reorder(m.sessionID, from, to); err != nil {
		m.err = err
		return m
	}
	m.err = nil
	m.cursor = to
	return m
}

func (m Model) setAction(action models.RebaseAction) Model {
	plan := m.plan()
	if m.cursor >= len(plan) {
		return m
	}
	if _, err := m.service.SetAction(m.sessionID, m.cursor, action, nil); err != nil {
		m.err = err
		return m
	}
	m.err = nil
	m.status = ""
	return m
}

func (m Model) executeCmd() tea.Cmd {
	service, id := m.service, m.sessionID
	return func() tea.Msg {
		return executeFinishedMsg{err: service.Execute(id)}
	}
}
