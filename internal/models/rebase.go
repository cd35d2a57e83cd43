package models

// RebaseAction is the instruction assigned to a commit in a rebase plan
type RebaseAction string

const (
	ActionPick   RebaseAction = "pick"
	ActionReword RebaseAction = "reword"
	ActionEdit   RebaseAction = "edit"
	ActionSquash RebaseAction = "squash"
	ActionFixup  RebaseAction = "fixup"
	ActionDrop   RebaseAction = "drop"
)

// IsValid reports whether the action is one of the six known instructions
func (a RebaseAction) IsValid() bool {
	switch a {
	case ActionPick, ActionReword, ActionEdit, ActionSquash, ActionFixup, ActionDrop:
		return true
	}
	return false
}

// IsBase reports whether the action keeps its commit as an independent entry
// that squash/fixup commits can be combined into
func (a RebaseAction) IsBase() bool {
	return a == ActionPick || a == ActionReword || a == ActionEdit
}

// IsSquashing reports whether the action folds its commit into a preceding base
func (a RebaseAction) IsSquashing() bool {
	return a == ActionSquash || a == ActionFixup
}

// RebaseCommit is a commit as enumerated by the git backend
type RebaseCommit struct {
	ShortID   string   `json:"short_id"`   // Abbreviated commit hash
	Summary   string   `json:"summary"`    // First line of the commit message
	ParentIDs []string `json:"parent_ids"` // Abbreviated parent hashes
}

// EditableRebaseCommit is a RebaseCommit plus the mutable plan state the
// caller edits: the assigned action, an optional replacement message for
// reword, and the commit's position in the originally loaded list
type EditableRebaseCommit struct {
	RebaseCommit
	Action        RebaseAction `json:"action"`
	NewMessage    string       `json:"new_message,omitempty"` // Set only while Action == reword
	OriginalIndex int          `json:"original_index"`
}

// PreviewCommit is one row of the derived, read-only projection of what
// history will look like after the plan executes
type PreviewCommit struct {
	ShortID      string   `json:"short_id"`
	Summary      string   `json:"summary"`
	IsSquashed   bool     `json:"is_squashed"`
	SquashedFrom []string `json:"squashed_from,omitempty"` // ShortIDs folded into this commit
	Error        string   `json:"error,omitempty"`
}

// RebaseStats is a tally of the plan's action assignments
type RebaseStats struct {
	Kept     int `json:"kept"`     // pick, reword, edit
	Squashed int `json:"squashed"` // squash, fixup
	Dropped  int `json:"dropped"`
	Reworded int `json:"reworded"`
}

// RebaseSession is a server-side editing session over a single plan
type RebaseSession struct {
	ID       string                 `json:"id"`
	RepoPath string                 `json:"repo_path"`
	OntoRef  string                 `json:"onto_ref"`
	Plan     []EditableRebaseCommit `json:"plan"`
}

// SessionCreateRequest asks the service to open a plan for repo/onto-ref
type SessionCreateRequest struct {
	RepoPath string `json:"repo_path"`
	OntoRef  string `json:"onto_ref"`
}

// SetActionRequest changes the action of one plan entry
type SetActionRequest struct {
	Action     RebaseAction `json:"action"`
	NewMessage *string      `json:"new_message,omitempty"` // Replacement reword text, when provided
}

// ReorderRequest moves a plan entry from one position to another
type ReorderRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// AutosquashResult reports the rewritten plan plus the commits whose
// fixup!/squash! summaries matched no target
type AutosquashResult struct {
	Plan      []EditableRebaseCommit `json:"plan"`
	Unmatched []string               `json:"unmatched"` // ShortIDs kept as pick
}
