package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rebasekit/rebasekit/internal/git"
	"github.com/rebasekit/rebasekit/internal/models"
)

// RepoHandler answers repository-level queries.
type RepoHandler struct {
	ops git.Operations
}

// NewRepoHandler creates a repository handler over git operations.
func NewRepoHandler(ops git.Operations) *RepoHandler {
	return &RepoHandler{ops: ops}
}

// GetRepoInfo describes the repository at the given path
// @Summary Inspect a repository
// @Description Returns branch and rebase-in-progress state for the repository at ?path=
// @Tags repo
// @Produce json
// @Param path query string true "Repository path"
// @Success 200 {object} models.RepoInfo
// @Router /v1/repo [get]
func (h *RepoHandler) GetRepoInfo(c *fiber.Ctx) error {
	path := c.Query("path")
	if path == "" {
		return c.Status(400).JSON(fiber.Map{"error": "path query parameter is required"})
	}
	if !h.ops.IsGitRepository(path) {
		return c.Status(404).JSON(fiber.Map{"error": "not a git repository: " + path})
	}

	branch, err := h.ops.CurrentBranch(path)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(models.RepoInfo{
		Path:          path,
		CurrentBranch: branch,
		RebaseActive:  h.ops.RebaseInProgress(path),
	})
}
