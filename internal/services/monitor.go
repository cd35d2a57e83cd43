package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/rebasekit/rebasekit/internal/logger"
)

// RebaseState describes what the repository's git dir says about rebases.
type RebaseState string

const (
	// RebaseIdle means no rebase is in flight.
	RebaseIdle RebaseState = "idle"
	// RebaseRunning means a rebase-merge or rebase-apply dir exists, so a
	// rebase is in progress or stopped on a conflict.
	RebaseRunning RebaseState = "running"
)

// RebaseMonitor watches a repository's git dir for rebase-merge and
// rebase-apply markers so callers can observe rebases started outside this
// process, or ones that stopped on conflicts.
type RebaseMonitor struct {
	gitDir  string
	watcher *fsnotify.Watcher
	stopCh  chan struct{}

	mu      sync.RWMutex
	state   RebaseState
	onState func(RebaseState)
}

// NewRebaseMonitor creates a monitor for the given git dir (the directory
// holding HEAD, typically <repo>/.git).
func NewRebaseMonitor(gitDir string, onState func(RebaseState)) *RebaseMonitor {
	return &RebaseMonitor{
		gitDir:  gitDir,
		stopCh:  make(chan struct{}),
		state:   RebaseIdle,
		onState: onState,
	}
}

// Start begins watching. The initial state is read synchronously so State
// is correct as soon as Start returns.
func (m *RebaseMonitor) Start() error {
	if _, err := os.Stat(m.gitDir); err != nil {
		return fmt.Errorf("git dir %s not accessible: %w", m.gitDir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create rebase watcher: %w", err)
	}
	if err := watcher.Add(m.gitDir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", m.gitDir, err)
	}
	m.watcher = watcher

	m.Refresh()
	go m.loop()
	return nil
}

// Stop ends watching.
func (m *RebaseMonitor) Stop() {
	close(m.stopCh)
	if m.watcher != nil {
		_ = m.watcher.Close()
	}
}

// State returns the last observed rebase state.
func (m *RebaseMonitor) State() RebaseState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Refresh re-reads the marker directories and updates the state, notifying
// the callback on transitions.
func (m *RebaseMonitor) Refresh() {
	state := RebaseIdle
	for _, marker := range []string{"rebase-merge", "rebase-apply"} {
		if _, err := os.Stat(filepath.Join(m.gitDir, marker)); err == nil {
			state = RebaseRunning
			break
		}
	}

	m.mu.Lock()
	changed := state != m.state
	m.state = state
	callback := m.onState
	m.mu.Unlock()

	if changed {
		logger.Debugf("rebase monitor: %s is now %s", m.gitDir, state)
		if callback != nil {
			callback(state)
		}
	}
}

func (m *RebaseMonitor) loop() {
	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			name := filepath.Base(event.Name)
			if name == "rebase-merge" || name == "rebase-apply" {
				m.Refresh()
			}
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			logger.Warnf("rebase watcher error: %v", err)
		case <-m.stopCh:
			return
		}
	}
}
