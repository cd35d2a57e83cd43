package git

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rebasekit/rebasekit/internal/git/executor"
	"github.com/rebasekit/rebasekit/internal/logger"
	"github.com/rebasekit/rebasekit/internal/models"
)

// GetRebaseCommits enumerates the commits an interactive rebase onto ontoRef
// would rewrite, oldest first, the order a rebase todo list uses. An empty
// result means there is nothing to rebase.
func (ops *OperationsImpl) GetRebaseCommits(repoPath, ontoRef string) ([]models.RebaseCommit, error) {
	out, err := ops.executor.ExecuteGit(repoPath, "log", executor.LogFormat, "--reverse", ontoRef+"..HEAD")
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate commits onto %s: %w", ontoRef, err)
	}

	var commits []models.RebaseCommit
	for _, line := range strings.Split(strings.TrimSuffix(string(out), "\n"), "\n") {
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, executor.LogFieldSep, 3)
		if len(fields) != 3 {
			return nil, fmt.Errorf("unexpected log line: %q", line)
		}
		commit := models.RebaseCommit{
			ShortID: fields[0],
			Summary: fields[1],
		}
		if fields[2] != "" {
			commit.ParentIDs = strings.Split(fields[2], " ")
		}
		commits = append(commits, commit)
	}
	return commits, nil
}

// ExecuteInteractiveRebase runs `git rebase -i ontoRef` with the todo list
// replaced wholesale by planText. Conflicts surface as ErrRebaseConflict;
// any other failure passes git's message through unchanged.
func (ops *OperationsImpl) ExecuteInteractiveRebase(repoPath, ontoRef, planText string) error {
	if strings.TrimSpace(planText) == "" {
		return ErrNothingToRebase
	}

	planFile, err := writePlanFile(planText)
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(planFile) }()

	env := []string{
		// Substitute our plan for the generated todo list.
		fmt.Sprintf("GIT_SEQUENCE_EDITOR=cp %q", planFile),
		// Squash message editors must never block a headless rebase.
		"GIT_EDITOR=true",
	}

	logger.Infof("executing interactive rebase onto %s (%d instructions)", ontoRef, strings.Count(planText, "\n")+1)
	stdout, stderr, err := ops.executor.ExecuteGitWithStdErr(repoPath, env, "rebase", "-i", ontoRef)
	if err == nil {
		return nil
	}

	combined := string(stdout) + string(stderr)
	if isConflict(combined) || ops.RebaseInProgress(repoPath) {
		logger.Warnf("rebase onto %s stopped on a conflict", ontoRef)
		return fmt.Errorf("%w: %s", ErrRebaseConflict, firstConflictLine(combined))
	}
	return fmt.Errorf("rebase failed: %s", gitMessage(combined, err))
}

// RebaseInProgress reports whether the repository has an unfinished rebase.
func (ops *OperationsImpl) RebaseInProgress(repoPath string) bool {
	out, err := ops.executor.ExecuteGit(repoPath, "rev-parse", "--git-dir")
	if err != nil {
		return false
	}
	gitDir := trimLine(out)
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(repoPath, gitDir)
	}
	for _, marker := range []string{"rebase-merge", "rebase-apply"} {
		if _, err := os.Stat(filepath.Join(gitDir, marker)); err == nil {
			return true
		}
	}
	return false
}

// AbortRebase abandons an in-progress rebase and restores the branch.
func (ops *OperationsImpl) AbortRebase(repoPath string) error {
	_, err := ops.executor.ExecuteGit(repoPath, "rebase", "--abort")
	return err
}

// ContinueRebase resumes an in-progress rebase after conflict resolution.
func (ops *OperationsImpl) ContinueRebase(repoPath string) error {
	_, _, err := ops.executor.ExecuteGitWithStdErr(repoPath, []string{"GIT_EDITOR=true"}, "rebase", "--continue")
	return err
}

func writePlanFile(planText string) (string, error) {
	file, err := os.CreateTemp("", "rebasekit-plan-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create plan file: %w", err)
	}
	if !strings.HasSuffix(planText, "\n") {
		planText += "\n"
	}
	if _, err := file.WriteString(planText); err != nil {
		_ = file.Close()
		_ = os.Remove(file.Name())
		return "", fmt.Errorf("failed to write plan file: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(file.Name())
		return "", err
	}
	return file.Name(), nil
}

func isConflict(output string) bool {
	return strings.Contains(output, "CONFLICT") ||
		strings.Contains(output, "could not apply") ||
		strings.Contains(output, "Resolve all conflicts manually")
}

func firstConflictLine(output string) string {
	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(line, "CONFLICT") || strings.Contains(line, "could not apply") {
			return strings.TrimSpace(line)
		}
	}
	return "merge conflict"
}

// gitMessage prefers git's own diagnostics over Go's exec error text.
func gitMessage(combined string, err error) string {
	if trimmed := strings.TrimSpace(combined); trimmed != "" {
		return trimmed
	}
	return err.Error()
}
