// Package handlers exposes the rebase session service over HTTP.
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/rebasekit/rebasekit/internal/git"
	"github.com/rebasekit/rebasekit/internal/logger"
	"github.com/rebasekit/rebasekit/internal/models"
	"github.com/rebasekit/rebasekit/internal/services"
)

// RebaseHandler handles rebase session API endpoints.
type RebaseHandler struct {
	service *services.RebaseService
}

// NewRebaseHandler creates a rebase handler over the session service.
func NewRebaseHandler(service *services.RebaseService) *RebaseHandler {
	return &RebaseHandler{service: service}
}

// sessionView is the full session payload: plan plus everything derived
// from it, so clients re-render after every mutation from one response.
func (h *RebaseHandler) sessionView(session *models.RebaseSession) fiber.Map {
	canExecute, _ := h.service.CanExecute(session.ID)
	preview, _ := h.service.Preview(session.ID)
	stats, _ := h.service.Stats(session.ID)
	return fiber.Map{
		"session":     session,
		"preview":     preview,
		"stats":       stats,
		"can_execute": canExecute,
	}
}

// CreateSession opens a rebase editing session
// @Summary Open a rebase session
// @Description Enumerates commits between the onto ref and HEAD and loads them into an editable plan
// @Tags rebase
// @Accept json
// @Produce json
// @Param request body models.SessionCreateRequest true "Repository path and onto ref"
// @Success 200 {object} map[string]interface{}
// @Router /v1/rebase/sessions [post]
func (h *RebaseHandler) CreateSession(c *fiber.Ctx) error {
	var req models.SessionCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.RepoPath == "" || req.OntoRef == "" {
		return c.Status(400).JSON(fiber.Map{"error": "repo_path and onto_ref are required"})
	}

	session, err := h.service.CreateSession(req.RepoPath, req.OntoRef)
	if err != nil {
		logger.Errorf("failed to open rebase session: %v", err)
		status := 500
		if errors.Is(err, git.ErrNotARepository) {
			status = 404
		} else if errors.Is(err, services.ErrRebaseActive) {
			status = 409
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(h.sessionView(session))
}

// GetSession returns a session with its preview and stats
// @Summary Get a rebase session
// @Tags rebase
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} map[string]interface{}
// @Router /v1/rebase/sessions/{id} [get]
func (h *RebaseHandler) GetSession(c *fiber.Ctx) error {
	session, err := h.service.GetSession(c.Params("id"))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(h.sessionView(session))
}

// SetAction changes the action of one plan entry
// @Summary Assign an action to a plan entry
// @Tags rebase
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param index path int true "Plan entry index"
// @Param request body models.SetActionRequest true "Action and optional reword message"
// @Success 200 {object} map[string]interface{}
// @Router /v1/rebase/sessions/{id}/entries/{index}/action [put]
func (h *RebaseHandler) SetAction(c *fiber.Ctx) error {
	index, err := c.ParamsInt("index")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid entry index"})
	}
	var req models.SetActionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	session, err := h.service.SetAction(c.Params("id"), index, req.Action, req.NewMessage)
	if err != nil {
		return h.mutationError(c, err)
	}
	return c.JSON(h.sessionView(session))
}

// Reorder moves a plan entry to a new position
// @Summary Reorder plan entries
// @Tags rebase
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body models.ReorderRequest true "From and to indices"
// @Success 200 {object} map[string]interface{}
// @Router /v1/rebase/sessions/{id}/reorder [post]
func (h *RebaseHandler) Reorder(c *fiber.Ctx) error {
	var req models.ReorderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	session, err := h.service.Reorder(c.Params("id"), req.From, req.To)
	if err != nil {
		return h.mutationError(c, err)
	}
	return c.JSON(h.sessionView(session))
}

// Autosquash relocates fixup!/squash! commits next to their targets
// @Summary Apply autosquash
// @Tags rebase
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} map[string]interface{}
// @Router /v1/rebase/sessions/{id}/autosquash [post]
func (h *RebaseHandler) Autosquash(c *fiber.Ctx) error {
	id := c.Params("id")
	result, err := h.service.Autosquash(id)
	if err != nil {
		return h.mutationError(c, err)
	}
	session, err := h.service.GetSession(id)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	}
	view := h.sessionView(session)
	view["unmatched"] = result.Unmatched
	return c.JSON(view)
}

// GetPlanText returns the executable todo list
// @Summary Render the executable plan text
// @Tags rebase
// @Produce plain
// @Param id path string true "Session ID"
// @Success 200 {string} string
// @Router /v1/rebase/sessions/{id}/plan [get]
func (h *RebaseHandler) GetPlanText(c *fiber.Ctx) error {
	text, err := h.service.PlanText(c.Params("id"))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(text)
}

// Execute runs the plan through git
// @Summary Execute the rebase
// @Description Hands the plan to git; 409 with code REBASE_CONFLICT when the rebase stops on a conflict
// @Tags rebase
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} map[string]string
// @Router /v1/rebase/sessions/{id}/execute [post]
func (h *RebaseHandler) Execute(c *fiber.Ctx) error {
	id := c.Params("id")
	err := h.service.Execute(id)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"message": "Rebase completed successfully"})
	case errors.Is(err, services.ErrSessionNotFound):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrPlanInvalid):
		return c.Status(422).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, git.ErrRebaseConflict):
		return c.Status(409).JSON(fiber.Map{
			"code":  "REBASE_CONFLICT",
			"error": err.Error(),
		})
	default:
		logger.Errorf("rebase execution failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
}

// CloseSession discards a session without executing it
// @Summary Close a rebase session
// @Tags rebase
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} map[string]string
// @Router /v1/rebase/sessions/{id} [delete]
func (h *RebaseHandler) CloseSession(c *fiber.Ctx) error {
	if err := h.service.CloseSession(c.Params("id")); err != nil {
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Session closed"})
}

func (h *RebaseHandler) mutationError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrIndexOutOfRange), errors.Is(err, services.ErrInvalidAction):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
}
