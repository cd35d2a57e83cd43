package executor

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GitExecutor implements CommandExecutor on top of go-git for read-only
// queries, falling back to the git binary for everything go-git cannot
// express (rebase above all).
type GitExecutor struct {
	fallback        *ShellExecutor
	repositoryCache map[string]*gogit.Repository
}

// NewGitExecutor creates the production executor: go-git where possible,
// shell git otherwise.
func NewGitExecutor() *GitExecutor {
	return &GitExecutor{
		fallback:        NewShellExecutor(),
		repositoryCache: make(map[string]*gogit.Repository),
	}
}

// ExecuteGit runs a git command, serving log/rev-parse/branch/merge-base
// style queries from go-git.
func (e *GitExecutor) ExecuteGit(workingDir string, args ...string) ([]byte, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no git command provided")
	}

	repo, err := e.openRepository(workingDir)
	if err != nil {
		return e.fallback.ExecuteGit(workingDir, args...)
	}

	switch args[0] {
	case "log":
		if out, ok, err := handleLog(repo, args[1:]); ok {
			return out, err
		}
	case "rev-parse":
		if out, ok, err := handleRevParse(repo, args[1:]); ok {
			return out, err
		}
	case "branch":
		if len(args) == 2 && args[1] == "--show-current" {
			return currentBranch(repo)
		}
	case "merge-base":
		if len(args) == 3 {
			return mergeBase(repo, args[1], args[2])
		}
	}
	return e.fallback.ExecuteGit(workingDir, args...)
}

// ExecuteGitWithEnv needs real process environment, so it always shells out.
func (e *GitExecutor) ExecuteGitWithEnv(workingDir string, env []string, args ...string) ([]byte, error) {
	return e.fallback.ExecuteGitWithEnv(workingDir, env, args...)
}

// ExecuteGitWithTimeout shells out; go-git queries are fast enough to not
// need deadlines and the slow operations are shell-only anyway.
func (e *GitExecutor) ExecuteGitWithTimeout(workingDir string, timeout time.Duration, args ...string) ([]byte, error) {
	return e.fallback.ExecuteGitWithTimeout(workingDir, timeout, args...)
}

// ExecuteGitWithStdErr shells out so stderr reflects the real git binary.
func (e *GitExecutor) ExecuteGitWithStdErr(workingDir string, env []string, args ...string) ([]byte, []byte, error) {
	return e.fallback.ExecuteGitWithStdErr(workingDir, env, args...)
}

func (e *GitExecutor) openRepository(repoPath string) (*gogit.Repository, error) {
	if repoPath == "" {
		repoPath = "."
	}
	absPath, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	if repo, ok := e.repositoryCache[absPath]; ok {
		return repo, nil
	}
	repo, err := gogit.PlainOpenWithOptions(absPath, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", absPath, err)
	}
	e.repositoryCache[absPath] = repo
	return repo, nil
}

// handleLog serves `git log --format=<fmt> [--reverse] <from>..<to>` for the
// one format the operations layer uses. Returns ok=false when the arguments
// don't fit that shape and the caller should fall back.
func handleLog(repo *gogit.Repository, args []string) ([]byte, bool, error) {
	reverse := false
	format := ""
	revRange := ""
	for _, arg := range args {
		switch {
		case arg == "--reverse":
			reverse = true
		case strings.HasPrefix(arg, "--format="):
			format = arg
		case strings.HasPrefix(arg, "-"):
			return nil, false, nil
		default:
			if revRange != "" {
				return nil, false, nil
			}
			revRange = arg
		}
	}
	if format != LogFormat || !strings.Contains(revRange, "..") {
		return nil, false, nil
	}

	parts := strings.SplitN(revRange, "..", 2)
	fromHash, err := resolveRef(repo, parts[0])
	if err != nil {
		return nil, true, err
	}
	toHash, err := resolveRef(repo, parts[1])
	if err != nil {
		return nil, true, err
	}

	commits, err := commitsBetween(repo, fromHash, toHash)
	if err != nil {
		return nil, true, err
	}
	if reverse {
		for i, j := 0, len(commits)-1; i < j; i, j = i+1, j-1 {
			commits[i], commits[j] = commits[j], commits[i]
		}
	}

	var out bytes.Buffer
	for _, commit := range commits {
		parents := make([]string, len(commit.ParentHashes))
		for i, parent := range commit.ParentHashes {
			parents[i] = shortHash(parent)
		}
		summary := strings.SplitN(commit.Message, "\n", 2)[0]
		out.WriteString(shortHash(commit.Hash) + LogFieldSep + summary + LogFieldSep + strings.Join(parents, " ") + "\n")
	}
	return out.Bytes(), true, nil
}

func handleRevParse(repo *gogit.Repository, args []string) ([]byte, bool, error) {
	if len(args) == 0 {
		return nil, false, nil
	}
	switch args[0] {
	case "HEAD":
		head, err := repo.Head()
		if err != nil {
			return nil, true, fmt.Errorf("failed to get HEAD: %w", err)
		}
		return []byte(head.Hash().String() + "\n"), true, nil
	case "--verify":
		if len(args) != 2 {
			return nil, false, nil
		}
		ref := strings.TrimSuffix(args[1], "^{commit}")
		if _, err := resolveRef(repo, ref); err != nil {
			return nil, true, err
		}
		return []byte(""), true, nil
	case "--abbrev-ref":
		if len(args) == 2 && args[1] == "HEAD" {
			out, err := currentBranch(repo)
			return out, true, err
		}
	case "--git-dir", "--show-toplevel":
		// Needs filesystem truth; let shell git answer.
		return nil, false, nil
	}
	return nil, false, nil
}

func currentBranch(repo *gogit.Repository) ([]byte, error) {
	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return nil, fmt.Errorf("HEAD is not on a branch")
	}
	return []byte(head.Name().Short() + "\n"), nil
}

func mergeBase(repo *gogit.Repository, refA, refB string) ([]byte, error) {
	hashA, err := resolveRef(repo, refA)
	if err != nil {
		return nil, err
	}
	hashB, err := resolveRef(repo, refB)
	if err != nil {
		return nil, err
	}
	commitA, err := repo.CommitObject(hashA)
	if err != nil {
		return nil, err
	}
	commitB, err := repo.CommitObject(hashB)
	if err != nil {
		return nil, err
	}
	bases, err := commitA.MergeBase(commitB)
	if err != nil || len(bases) == 0 {
		return nil, fmt.Errorf("no merge base between %s and %s", refA, refB)
	}
	return []byte(bases[0].Hash.String() + "\n"), nil
}

// resolveRef resolves a ref string (HEAD, hash, branch, remote branch, full
// ref name) to a commit hash.
func resolveRef(repo *gogit.Repository, ref string) (plumbing.Hash, error) {
	if ref == "HEAD" {
		head, err := repo.Head()
		if err != nil {
			return plumbing.ZeroHash, fmt.Errorf("failed to get HEAD: %w", err)
		}
		return head.Hash(), nil
	}

	if len(ref) >= 7 && len(ref) <= 40 {
		hash := plumbing.NewHash(ref)
		if _, err := repo.CommitObject(hash); err == nil {
			return hash, nil
		}
	}

	for _, name := range []plumbing.ReferenceName{
		plumbing.NewBranchReferenceName(ref),
		plumbing.NewTagReferenceName(ref),
		plumbing.NewRemoteReferenceName("origin", ref),
		plumbing.ReferenceName(ref),
	} {
		if resolved, err := repo.Reference(name, true); err == nil {
			return resolved.Hash(), nil
		}
	}

	// Abbreviated hashes shorter than what NewHash accepts.
	if hash, err := resolveAbbrev(repo, ref); err == nil {
		return hash, nil
	}

	return plumbing.ZeroHash, fmt.Errorf("reference %s not found", ref)
}

func resolveAbbrev(repo *gogit.Repository, abbrev string) (plumbing.Hash, error) {
	if len(abbrev) < 4 || len(abbrev) >= 40 {
		return plumbing.ZeroHash, fmt.Errorf("not an abbreviated hash: %s", abbrev)
	}
	iter, err := repo.CommitObjects()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	defer iter.Close()

	found := plumbing.ZeroHash
	err = iter.ForEach(func(commit *object.Commit) error {
		if strings.HasPrefix(commit.Hash.String(), abbrev) {
			found = commit.Hash
			return stopIteration
		}
		return nil
	})
	if err != nil && err != stopIteration {
		return plumbing.ZeroHash, err
	}
	if found == plumbing.ZeroHash {
		return plumbing.ZeroHash, fmt.Errorf("abbreviated hash %s not found", abbrev)
	}
	return found, nil
}

var stopIteration = fmt.Errorf("stop iteration")

// commitsBetween walks history from to back to from, newest first, the same
// set `git log from..to` prints for linear history.
func commitsBetween(repo *gogit.Repository, from, to plumbing.Hash) ([]*object.Commit, error) {
	iter, err := repo.Log(&gogit.LogOptions{From: to})
	if err != nil {
		return nil, fmt.Errorf("failed to create log iterator: %w", err)
	}
	defer iter.Close()

	var commits []*object.Commit
	err = iter.ForEach(func(commit *object.Commit) error {
		if commit.Hash == from {
			return stopIteration
		}
		commits = append(commits, commit)
		return nil
	})
	if err != nil && err != stopIteration {
		return nil, fmt.Errorf("failed to iterate commits: %w", err)
	}
	return commits, nil
}

func shortHash(hash plumbing.Hash) string {
	return hash.String()[:7]
}
