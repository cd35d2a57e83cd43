package models

// RepoInfo describes the repository a rebase session would operate on.
type RepoInfo struct {
	Path          string `json:"path"`           // Absolute repository path
	CurrentBranch string `json:"current_branch"` // Checked-out branch
	RebaseActive  bool   `json:"rebase_active"`  // A rebase is in progress on disk
}
