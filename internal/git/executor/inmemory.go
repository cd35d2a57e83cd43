package executor

import (
	"fmt"
	"strings"
	"time"
)

// InMemoryExecutor implements CommandExecutor over go-git in-memory
// repositories so tests never touch a real working tree or the git binary.
// Mutating commands that go-git cannot express (rebase) are recorded and
// answered with scripted results.
type InMemoryExecutor struct {
	repositories map[string]*TestRepository

	// RebaseCalls records every rebase invocation: working dir, env, args.
	RebaseCalls []RecordedCommand
	// RebaseErr, when set, is returned for rebase commands together with
	// RebaseStderr, letting tests script conflicts and failures.
	RebaseErr    error
	RebaseStderr string
}

// RecordedCommand is one captured invocation of a scripted command.
type RecordedCommand struct {
	WorkingDir string
	Env        []string
	Args       []string
}

// NewInMemoryExecutor creates an empty in-memory executor.
func NewInMemoryExecutor() *InMemoryExecutor {
	return &InMemoryExecutor{repositories: make(map[string]*TestRepository)}
}

// AddRepository registers a test repository at the given path.
func (e *InMemoryExecutor) AddRepository(path string, repo *TestRepository) {
	e.repositories[path] = repo
}

// ExecuteGit serves read-only queries from go-git and scripts the rest.
func (e *InMemoryExecutor) ExecuteGit(workingDir string, args ...string) ([]byte, error) {
	return e.execute(workingDir, nil, args...)
}

// ExecuteGitWithEnv behaves like ExecuteGit but records env for scripted
// commands.
func (e *InMemoryExecutor) ExecuteGitWithEnv(workingDir string, env []string, args ...string) ([]byte, error) {
	return e.execute(workingDir, env, args...)
}

// ExecuteGitWithTimeout ignores the timeout; nothing here can block.
func (e *InMemoryExecutor) ExecuteGitWithTimeout(workingDir string, timeout time.Duration, args ...string) ([]byte, error) {
	return e.execute(workingDir, nil, args...)
}

// ExecuteGitWithStdErr returns scripted stderr for rebase, empty otherwise.
func (e *InMemoryExecutor) ExecuteGitWithStdErr(workingDir string, env []string, args ...string) ([]byte, []byte, error) {
	if len(args) > 0 && args[0] == "rebase" {
		out, err := e.execute(workingDir, env, args...)
		return out, []byte(e.RebaseStderr), err
	}
	out, err := e.execute(workingDir, env, args...)
	return out, nil, err
}

func (e *InMemoryExecutor) execute(workingDir string, env []string, args ...string) ([]byte, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no git command provided")
	}
	repo := e.findRepository(workingDir)
	if repo == nil {
		return nil, fmt.Errorf("no repository found for path: %s", workingDir)
	}

	switch args[0] {
	case "log":
		if out, ok, err := handleLog(repo.Repository(), args[1:]); ok {
			return out, err
		}
		return nil, fmt.Errorf("log arguments not supported in memory executor: %v", args)
	case "rev-parse":
		if len(args) == 2 && args[1] == "--git-dir" {
			// In-memory repositories have no real git dir; answer the way a
			// plain repository would so IsGitRepository-style checks pass.
			return []byte(".git\n"), nil
		}
		if out, ok, err := handleRevParse(repo.Repository(), args[1:]); ok {
			return out, err
		}
		return nil, fmt.Errorf("rev-parse arguments not supported in memory executor: %v", args)
	case "branch":
		if len(args) == 2 && args[1] == "--show-current" {
			return currentBranch(repo.Repository())
		}
		return nil, fmt.Errorf("branch arguments not supported in memory executor: %v", args)
	case "merge-base":
		if len(args) == 3 {
			return mergeBase(repo.Repository(), args[1], args[2])
		}
		return nil, fmt.Errorf("merge-base requires two refs")
	case "rebase":
		e.RebaseCalls = append(e.RebaseCalls, RecordedCommand{
			WorkingDir: workingDir,
			Env:        append([]string(nil), env...),
			Args:       append([]string(nil), args...),
		})
		if e.RebaseErr != nil {
			return []byte(e.RebaseStderr), e.RebaseErr
		}
		return []byte("Successfully rebased and updated refs/heads/main.\n"), nil
	default:
		return nil, fmt.Errorf("git command not implemented in memory executor: %s", args[0])
	}
}

// findRepository matches the working directory to a registered repository,
// allowing subdirectory paths.
func (e *InMemoryExecutor) findRepository(workingDir string) *TestRepository {
	if repo, ok := e.repositories[workingDir]; ok {
		return repo
	}
	for path, repo := range e.repositories {
		if strings.HasPrefix(workingDir, path+"/") {
			return repo
		}
	}
	return nil
}
