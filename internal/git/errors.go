package git

import "errors"

// ErrRebaseConflict signals that an interactive rebase stopped on a merge
// conflict. Callers open their conflict-resolution flow instead of showing
// the message verbatim.
var ErrRebaseConflict = errors.New("rebase stopped on a conflict")

// ErrNotARepository is returned when a path does not contain a git
// repository.
var ErrNotARepository = errors.New("not a git repository")

// ErrNothingToRebase is returned when the onto ref and HEAD enclose no
// commits.
var ErrNothingToRebase = errors.New("nothing to rebase")
