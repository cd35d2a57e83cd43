// Package executor abstracts git command execution behind a small interface
// so the operations layer can run against the real git binary, go-git, or a
// fully in-memory repository in tests.
package executor

import "time"

// CommandExecutor runs git commands for a repository path.
type CommandExecutor interface {
	// ExecuteGit runs a git command with the given working directory.
	ExecuteGit(workingDir string, args ...string) ([]byte, error)
	// ExecuteGitWithEnv runs a git command with extra environment variables,
	// as needed for sequence-editor driven operations.
	ExecuteGitWithEnv(workingDir string, env []string, args ...string) ([]byte, error)
	// ExecuteGitWithTimeout bounds a git command with a deadline.
	ExecuteGitWithTimeout(workingDir string, timeout time.Duration, args ...string) ([]byte, error)
	// ExecuteGitWithStdErr captures stdout and stderr separately for commands
	// whose diagnostics matter, such as rebase.
	ExecuteGitWithStdErr(workingDir string, env []string, args ...string) (stdout []byte, stderr []byte, err error)
}

// LogFieldSep separates the hash, summary, and parent fields in the log
// format the executors agree on (ASCII unit separator).
const LogFieldSep = "\x1f"

// LogFormat is the --format argument used to enumerate commits.
const LogFormat = "--format=%h" + "%x1f" + "%s" + "%x1f" + "%p"
