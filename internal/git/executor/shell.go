package executor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rebasekit/rebasekit/internal/logger"
)

// ShellExecutor implements CommandExecutor using the git binary.
type ShellExecutor struct {
	gitBinary  string
	defaultEnv []string
}

// NewShellExecutor creates a shell-based git command executor.
func NewShellExecutor() *ShellExecutor {
	return &ShellExecutor{gitBinary: "git"}
}

// NewShellExecutorWithBinary uses a specific git binary, as configured for
// environments where git is not on PATH.
func NewShellExecutorWithBinary(binary string, env []string) *ShellExecutor {
	if binary == "" {
		binary = "git"
	}
	return &ShellExecutor{gitBinary: binary, defaultEnv: env}
}

// ExecuteGit runs a git command in the given working directory.
func (e *ShellExecutor) ExecuteGit(workingDir string, args ...string) ([]byte, error) {
	return e.ExecuteGitWithEnv(workingDir, nil, args...)
}

// ExecuteGitWithEnv runs a git command with extra environment variables.
func (e *ShellExecutor) ExecuteGitWithEnv(workingDir string, env []string, args ...string) ([]byte, error) {
	return e.run(context.Background(), workingDir, env, args...)
}

// ExecuteGitWithTimeout runs a git command bounded by a deadline.
func (e *ShellExecutor) ExecuteGitWithTimeout(workingDir string, timeout time.Duration, args ...string) ([]byte, error) {
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return e.run(ctx, workingDir, nil, args...)
}

// ExecuteGitWithStdErr captures stdout and stderr separately. The error for
// a non-zero exit still carries the stderr text so callers can classify it.
func (e *ShellExecutor) ExecuteGitWithStdErr(workingDir string, env []string, args ...string) ([]byte, []byte, error) {
	cmd := exec.Command(e.gitBinary, e.withWorkingDir(workingDir, args)...)
	cmd.Env = append(cmd.Environ(), append(e.defaultEnv, env...)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), stderr.Bytes(), fmt.Errorf("git %s failed: %w\nstderr: %s", strings.Join(args, " "), err, stderr.String())
	}
	return stdout.Bytes(), stderr.Bytes(), nil
}

func (e *ShellExecutor) run(ctx context.Context, workingDir string, env []string, args ...string) ([]byte, error) {
	full := e.withWorkingDir(workingDir, args)
	cmd := exec.CommandContext(ctx, e.gitBinary, full...)
	cmd.Env = append(cmd.Environ(), append(e.defaultEnv, env...)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if len(args) > 0 && args[0] != "rev-parse" && args[0] != "log" {
		logger.Debugf("shell executor: git %s", strings.Join(full, " "))
	}

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("git %s timed out", strings.Join(args, " "))
		}
		return nil, fmt.Errorf("git %s failed: %w\nstderr: %s", strings.Join(args, " "), err, stderr.String())
	}
	return stdout.Bytes(), nil
}

func (e *ShellExecutor) withWorkingDir(workingDir string, args []string) []string {
	if workingDir == "" {
		return args
	}
	return append([]string{"-C", workingDir}, args...)
}
