// Package git is the backend boundary of the plan engine: it enumerates the
// commits a rebase would rewrite and executes finished plans through the git
// binary. Everything else about rebasing lives in the pure plan package.
package git

import (
	"time"

	"github.com/rebasekit/rebasekit/internal/git/executor"
	"github.com/rebasekit/rebasekit/internal/models"
)

// Operations is the git surface the rebase service depends on.
type Operations interface {
	// Core command execution
	ExecuteGit(workingDir string, args ...string) ([]byte, error)
	ExecuteGitWithTimeout(workingDir string, timeout time.Duration, args ...string) ([]byte, error)

	// Repository queries
	IsGitRepository(path string) bool
	CurrentBranch(repoPath string) (string, error)
	RefExists(repoPath, ref string) bool
	MergeBase(repoPath, refA, refB string) (string, error)

	// Rebase boundary
	GetRebaseCommits(repoPath, ontoRef string) ([]models.RebaseCommit, error)
	ExecuteInteractiveRebase(repoPath, ontoRef, planText string) error
	RebaseInProgress(repoPath string) bool
	AbortRebase(repoPath string) error
	ContinueRebase(repoPath string) error
}

// OperationsImpl implements Operations over a CommandExecutor.
type OperationsImpl struct {
	executor executor.CommandExecutor
}

// NewOperations creates Operations backed by the production go-git/shell
// executor.
func NewOperations() Operations {
	return &OperationsImpl{executor: executor.NewGitExecutor()}
}

// NewOperationsWithExecutor creates Operations with a custom executor,
// typically the in-memory one in tests.
func NewOperationsWithExecutor(exec executor.CommandExecutor) Operations {
	return &OperationsImpl{executor: exec}
}

// ExecuteGit runs a raw git command in the repository.
func (ops *OperationsImpl) ExecuteGit(workingDir string, args ...string) ([]byte, error) {
	return ops.executor.ExecuteGit(workingDir, args...)
}

// ExecuteGitWithTimeout runs a raw git command bounded by a deadline.
func (ops *OperationsImpl) ExecuteGitWithTimeout(workingDir string, timeout time.Duration, args ...string) ([]byte, error) {
	return ops.executor.ExecuteGitWithTimeout(workingDir, timeout, args...)
}

// IsGitRepository reports whether path is inside a git repository.
func (ops *OperationsImpl) IsGitRepository(path string) bool {
	_, err := ops.executor.ExecuteGit(path, "rev-parse", "--git-dir")
	return err == nil
}

// CurrentBranch returns the checked-out branch name.
func (ops *OperationsImpl) CurrentBranch(repoPath string) (string, error) {
	out, err := ops.executor.ExecuteGit(repoPath, "branch", "--show-current")
	if err != nil {
		return "", err
	}
	return trimLine(out), nil
}

// RefExists reports whether ref resolves to a commit in the repository.
func (ops *OperationsImpl) RefExists(repoPath, ref string) bool {
	_, err := ops.executor.ExecuteGit(repoPath, "rev-parse", "--verify", ref+"^{commit}")
	return err == nil
}

// MergeBase returns the best common ancestor of two refs, as a full hash.
// Useful for turning a branch name into the onto point of a rebase.
func (ops *OperationsImpl) MergeBase(repoPath, refA, refB string) (string, error) {
	out, err := ops.executor.ExecuteGit(repoPath, "merge-base", refA, refB)
	if err != nil {
		return "", err
	}
	return trimLine(out), nil
}

func trimLine(out []byte) string {
	s := string(out)
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
