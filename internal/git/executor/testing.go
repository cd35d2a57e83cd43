package executor

import (
	"fmt"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
)

// TestRepository is an in-memory git repository for tests, backed by memfs
// and go-git's memory storage.
type TestRepository struct {
	repo *gogit.Repository
	fs   billy.Filesystem
}

// NewTestRepository initializes an empty in-memory repository.
func NewTestRepository() (*TestRepository, error) {
	fs := memfs.New()
	repo, err := gogit.Init(memory.NewStorage(), fs)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize test repository: %w", err)
	}
	return &TestRepository{repo: repo, fs: fs}, nil
}

// Repository returns the underlying go-git repository.
func (tr *TestRepository) Repository() *gogit.Repository {
	return tr.repo
}

// CommitFile writes content to filename and commits it with the given
// message, returning the new commit hash.
func (tr *TestRepository) CommitFile(filename, content, message string) (plumbing.Hash, error) {
	file, err := tr.fs.Create(filename)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to create file %s: %w", filename, err)
	}
	if _, err := file.Write([]byte(content)); err != nil {
		_ = file.Close()
		return plumbing.ZeroHash, fmt.Errorf("failed to write file %s: %w", filename, err)
	}
	if err := file.Close(); err != nil {
		return plumbing.ZeroHash, err
	}

	worktree, err := tr.repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if _, err := worktree.Add(filename); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to stage %s: %w", filename, err)
	}
	hash, err := worktree.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Test User",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to commit %s: %w", filename, err)
	}
	return hash, nil
}

// CreateBranch points a new branch at the current HEAD.
func (tr *TestRepository) CreateBranch(name string) error {
	head, err := tr.repo.Head()
	if err != nil {
		return err
	}
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), head.Hash())
	return tr.repo.Storer.SetReference(ref)
}

// NewTestRepositoryWithHistory builds a repository with one commit per
// summary, oldest first, each touching its own file.
func NewTestRepositoryWithHistory(summaries ...string) (*TestRepository, []plumbing.Hash, error) {
	repo, err := NewTestRepository()
	if err != nil {
		return nil, nil, err
	}
	hashes := make([]plumbing.Hash, 0, len(summaries))
	for i, summary := range summaries {
		hash, err := repo.CommitFile(fmt.Sprintf("file%d.txt", i), summary+"\n", summary)
		if err != nil {
			return nil, nil, err
		}
		hashes = append(hashes, hash)
	}
	return repo, hashes, nil
}
