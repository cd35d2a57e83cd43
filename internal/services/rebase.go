// Package services owns the mutable state between the pure plan engine and
// the API/CLI surfaces: one editing session per plan, plus a monitor for
// rebases in flight on disk.
package services

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/rebasekit/rebasekit/internal/git"
	"github.com/rebasekit/rebasekit/internal/logger"
	"github.com/rebasekit/rebasekit/internal/models"
	"github.com/rebasekit/rebasekit/internal/plan"
)

var (
	// ErrSessionNotFound is returned for unknown or already-closed sessions.
	ErrSessionNotFound = errors.New("rebase session not found")
	// ErrPlanInvalid is returned when execution is requested while the plan
	// has validation errors or is empty.
	ErrPlanInvalid = errors.New("plan has validation errors")
	// ErrIndexOutOfRange is returned for entry indices outside the plan.
	ErrIndexOutOfRange = errors.New("plan index out of range")
	// ErrInvalidAction is returned for unknown action names.
	ErrInvalidAction = errors.New("invalid rebase action")
	// ErrRebaseActive is returned when the repository already has a rebase
	// in flight; finish or abort it before opening a session.
	ErrRebaseActive = errors.New("a rebase is already in progress")
)

// RebaseService manages editing sessions over rebase plans. The engine
// operations themselves are pure; the service adds ownership, input
// validation, and the call out to git.
type RebaseService struct {
	mu       sync.RWMutex
	ops      git.Operations
	sessions map[string]*models.RebaseSession
}

// NewRebaseService creates a session service over the given git operations.
func NewRebaseService(ops git.Operations) *RebaseService {
	return &RebaseService{
		ops:      ops,
		sessions: make(map[string]*models.RebaseSession),
	}
}

// CreateSession loads the commits between ontoRef and HEAD into a fresh
// plan. An empty plan is allowed; execution will refuse it.
func (s *RebaseService) CreateSession(repoPath, ontoRef string) (*models.RebaseSession, error) {
	if !s.ops.IsGitRepository(repoPath) {
		return nil, fmt.Errorf("%w: %s", git.ErrNotARepository, repoPath)
	}
	if !s.ops.RefExists(repoPath, ontoRef) {
		return nil, fmt.Errorf("ref %q not found in %s", ontoRef, repoPath)
	}
	if s.ops.RebaseInProgress(repoPath) {
		return nil, ErrRebaseActive
	}

	commits, err := s.ops.GetRebaseCommits(repoPath, ontoRef)
	if err != nil {
		return nil, err
	}

	session := &models.RebaseSession{
		ID:       uuid.NewString(),
		RepoPath: repoPath,
		OntoRef:  ontoRef,
		Plan:     plan.Load(commits),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	logger.Infof("opened rebase session %s: %d commits onto %s", session.ID, len(session.Plan), ontoRef)
	return session, nil
}

// GetSession returns the session by id.
func (s *RebaseService) GetSession(id string) (*models.RebaseSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// SetAction assigns an action to one plan entry. A non-nil newMessage
// overrides the reword text after the engine has seeded it.
func (s *RebaseService) SetAction(id string, index int, action models.RebaseAction, newMessage *string) (*models.RebaseSession, error) {
	if !action.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if index < 0 || index >= len(session.Plan) {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	session.Plan = plan.SetAction(session.Plan, index, action)
	if action == models.ActionReword && newMessage != nil {
		session.Plan[index].NewMessage = *newMessage
	}
	return session, nil
}

// Reorder moves a plan entry from one position to another.
func (s *RebaseService) Reorder(id string, from, to int) (*models.RebaseSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if from < 0 || from >= len(session.Plan) || to < 0 || to >= len(session.Plan) {
		return nil, fmt.Errorf("%w: %d -> %d", ErrIndexOutOfRange, from, to)
	}
	session.Plan = plan.Reorder(session.Plan, from, to)
	return session, nil
}

// Autosquash runs the autosquash pass over the session's plan and returns
// the relocated plan plus the commits that found no target.
func (s *RebaseService) Autosquash(id string) (*models.AutosquashResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	result := plan.ApplyAutosquash(session.Plan)
	session.Plan = result.Plan
	if len(result.Unmatched) > 0 {
		logger.Warnf("session %s: %d autosquash commits found no target", id, len(result.Unmatched))
	}
	return &result, nil
}

// Preview derives the validated projection of the session's plan.
func (s *RebaseService) Preview(id string) ([]models.PreviewCommit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return plan.GeneratePreview(session.Plan), nil
}

// Stats tallies the session's action assignments.
func (s *RebaseService) Stats(id string) (*models.RebaseStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	stats := plan.Stats(session.Plan)
	return &stats, nil
}

// PlanText renders the session's executable todo list.
func (s *RebaseService) PlanText(id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return "", ErrSessionNotFound
	}
	return plan.PlanText(session.Plan), nil
}

// CanExecute reports whether the session's plan is non-empty and valid.
func (s *RebaseService) CanExecute(id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return false, ErrSessionNotFound
	}
	return len(session.Plan) > 0 && !plan.HasValidationErrors(session.Plan), nil
}

// Execute hands the plan to git. The session is discarded on success and
// preserved unchanged on any failure so the user can fix or retry.
func (s *RebaseService) Execute(id string) error {
	s.mu.Lock()
	session, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return ErrSessionNotFound
	}
	if len(session.Plan) == 0 || plan.HasValidationErrors(session.Plan) {
		s.mu.Unlock()
		return ErrPlanInvalid
	}
	planText := plan.PlanText(session.Plan)
	repoPath, ontoRef := session.RepoPath, session.OntoRef
	s.mu.Unlock()

	if err := s.ops.ExecuteInteractiveRebase(repoPath, ontoRef, planText); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	logger.Infof("session %s: rebase onto %s completed", id, ontoRef)
	return nil
}

// CloseSession discards a session without executing it.
func (s *RebaseService) CloseSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}
