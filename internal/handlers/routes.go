package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rebasekit/rebasekit/internal/git"
	"github.com/rebasekit/rebasekit/internal/services"
)

// Register wires every API route onto the fiber app.
func Register(app *fiber.App, service *services.RebaseService, ops git.Operations) {
	rebase := NewRebaseHandler(service)
	repo := NewRepoHandler(ops)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/v1")
	v1.Get("/repo", repo.GetRepoInfo)

	sessions := v1.Group("/rebase/sessions")
	sessions.Post("/", rebase.CreateSession)
	sessions.Get("/:id", rebase.GetSession)
	sessions.Delete("/:id", rebase.CloseSession)
	sessions.Put("/:id/entries/:index/action", rebase.SetAction)
	sessions.Post("/:id/reorder", rebase.Reorder)
	sessions.Post("/:id/autosquash", rebase.Autosquash)
	sessions.Get("/:id/plan", rebase.GetPlanText)
	sessions.Post("/:id/execute", rebase.Execute)
}
