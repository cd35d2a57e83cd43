package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebasekit/rebasekit/internal/git"
	"github.com/rebasekit/rebasekit/internal/git/executor"
	"github.com/rebasekit/rebasekit/internal/models"
)

func setupService(t *testing.T, summaries ...string) (*RebaseService, *executor.InMemoryExecutor, []string) {
	t.Helper()
	repo, hashes, err := executor.NewTestRepositoryWithHistory(summaries...)
	require.NoError(t, err)

	exec := executor.NewInMemoryExecutor()
	exec.AddRepository("/test/repo", repo)

	full := make([]string, len(hashes))
	for i, hash := range hashes {
		full[i] = hash.String()
	}
	return NewRebaseService(git.NewOperationsWithExecutor(exec)), exec, full
}

func TestCreateSession(t *testing.T) {
	service, _, hashes := setupService(t, "base", "feat", "fixup! feat")

	t.Run("LoadsPlanOldestFirst", func(t *testing.T) {
		session, err := service.CreateSession("/test/repo", hashes[0])
		require.NoError(t, err)
		assert.NotEmpty(t, session.ID)
		require.Len(t, session.Plan, 2)
		assert.Equal(t, "feat", session.Plan[0].Summary)
		assert.Equal(t, models.ActionPick, session.Plan[0].Action)
		assert.Equal(t, 0, session.Plan[0].OriginalIndex)
	})

	t.Run("EmptyPlanAllowedButNotExecutable", func(t *testing.T) {
		session, err := service.CreateSession("/test/repo", "HEAD")
		require.NoError(t, err)
		assert.Empty(t, session.Plan)

		canExecute, err := service.CanExecute(session.ID)
		require.NoError(t, err)
		assert.False(t, canExecute)

		assert.ErrorIs(t, service.Execute(session.ID), ErrPlanInvalid)
	})

	t.Run("RejectsUnknownRepo", func(t *testing.T) {
		_, err := service.CreateSession("/missing", "HEAD")
		assert.ErrorIs(t, err, git.ErrNotARepository)
	})

	t.Run("RejectsRebaseInProgress", func(t *testing.T) {
		repo, repoHashes, err := executor.NewTestRepositoryWithHistory("base", "feat")
		require.NoError(t, err)

		// Register the repo under a real directory carrying the marker git
		// leaves behind mid-rebase.
		repoDir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(repoDir, ".git", "rebase-merge"), 0o755))

		exec := executor.NewInMemoryExecutor()
		exec.AddRepository(repoDir, repo)
		busy := NewRebaseService(git.NewOperationsWithExecutor(exec))

		_, err = busy.CreateSession(repoDir, repoHashes[0].String())
		assert.ErrorIs(t, err, ErrRebaseActive)
	})

	t.Run("RejectsUnknownRef", func(t *testing.T) {
		_, err := service.CreateSession("/test/repo", "nope-branch")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestSessionEditing(t *testing.T) {
	service, _, hashes := setupService(t, "base", "one", "two", "three")
	session, err := service.CreateSession("/test/repo", hashes[0])
	require.NoError(t, err)
	id := session.ID

	t.Run("SetActionAndMessage", func(t *testing.T) {
		message := "better summary"
		updated, err := service.SetAction(id, 1, models.ActionReword, &message)
		require.NoError(t, err)
		assert.Equal(t, models.ActionReword, updated.Plan[1].Action)
		assert.Equal(t, "better summary", updated.Plan[1].NewMessage)
	})

	t.Run("SetActionValidatesInput", func(t *testing.T) {
		_, err := service.SetAction(id, 99, models.ActionPick, nil)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)

		_, err = service.SetAction(id, 0, models.RebaseAction("yolo"), nil)
		assert.ErrorIs(t, err, ErrInvalidAction)

		_, err = service.SetAction("missing", 0, models.ActionPick, nil)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("Reorder", func(t *testing.T) {
		updated, err := service.Reorder(id, 0, 2)
		require.NoError(t, err)
		assert.Equal(t, "two", updated.Plan[0].Summary)

		_, err = service.Reorder(id, 0, 42)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)

		// Put it back for subsequent subtests.
		_, err = service.Reorder(id, 2, 0)
		require.NoError(t, err)
	})

	t.Run("PreviewAndStats", func(t *testing.T) {
		_, err := service.SetAction(id, 2, models.ActionSquash, nil)
		require.NoError(t, err)

		preview, err := service.Preview(id)
		require.NoError(t, err)
		require.Len(t, preview, 2)
		assert.True(t, preview[1].IsSquashed)

		stats, err := service.Stats(id)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Kept)
		assert.Equal(t, 1, stats.Squashed)
		assert.Equal(t, 1, stats.Reworded)
	})
}

func TestAutosquash(t *testing.T) {
	service, _, hashes := setupService(t, "base", "feat", "other", "fixup! feat", "squash! gone")
	session, err := service.CreateSession("/test/repo", hashes[0])
	require.NoError(t, err)

	result, err := service.Autosquash(session.ID)
	require.NoError(t, err)
	require.Len(t, result.Plan, 4)
	assert.Equal(t, "feat", result.Plan[0].Summary)
	assert.Equal(t, "fixup! feat", result.Plan[1].Summary)
	assert.Equal(t, models.ActionFixup, result.Plan[1].Action)
	assert.Equal(t, "other", result.Plan[2].Summary)
	// squash! gone has no target: kept as pick at the end, reported.
	assert.Equal(t, models.ActionPick, result.Plan[3].Action)
	require.Len(t, result.Unmatched, 1)
	assert.Equal(t, result.Plan[3].ShortID, result.Unmatched[0])
}

func TestExecute(t *testing.T) {
	t.Run("SuccessDiscardsSession", func(t *testing.T) {
		service, exec, hashes := setupService(t, "base", "one", "two")
		session, err := service.CreateSession("/test/repo", hashes[0])
		require.NoError(t, err)

		require.NoError(t, service.Execute(session.ID))
		require.Len(t, exec.RebaseCalls, 1)
		assert.Equal(t, []string{"rebase", "-i", hashes[0]}, exec.RebaseCalls[0].Args)

		_, err = service.GetSession(session.ID)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("InvalidPlanRefusedBeforeGit", func(t *testing.T) {
		service, exec, hashes := setupService(t, "base", "one", "two")
		session, err := service.CreateSession("/test/repo", hashes[0])
		require.NoError(t, err)

		_, err = service.SetAction(session.ID, 0, models.ActionFixup, nil)
		require.NoError(t, err)

		assert.ErrorIs(t, service.Execute(session.ID), ErrPlanInvalid)
		assert.Empty(t, exec.RebaseCalls)
	})

	t.Run("ConflictPreservesSession", func(t *testing.T) {
		service, exec, hashes := setupService(t, "base", "one", "two")
		session, err := service.CreateSession("/test/repo", hashes[0])
		require.NoError(t, err)

		exec.RebaseErr = fmt.Errorf("exit status 1")
		exec.RebaseStderr = "CONFLICT (content): Merge conflict in file1.txt"

		err = service.Execute(session.ID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, git.ErrRebaseConflict))

		// The plan survives untouched for retry or abandon.
		preserved, err := service.GetSession(session.ID)
		require.NoError(t, err)
		assert.Len(t, preserved.Plan, 2)
	})
}

func TestPlanText(t *testing.T) {
	service, _, hashes := setupService(t, "base", "one", "two")
	session, err := service.CreateSession("/test/repo", hashes[0])
	require.NoError(t, err)

	_, err = service.SetAction(session.ID, 1, models.ActionDrop, nil)
	require.NoError(t, err)

	text, err := service.PlanText(session.ID)
	require.NoError(t, err)
	lines := strings.Split(text, "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "pick "))
	assert.True(t, strings.HasPrefix(lines[1], "drop "))
	assert.Contains(t, lines[1], "two")
}

func TestCloseSession(t *testing.T) {
	service, _, hashes := setupService(t, "base", "one")
	session, err := service.CreateSession("/test/repo", hashes[0])
	require.NoError(t, err)

	require.NoError(t, service.CloseSession(session.ID))
	assert.ErrorIs(t, service.CloseSession(session.ID), ErrSessionNotFound)
}
