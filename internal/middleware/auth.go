// Package middleware holds the fiber middleware the API server mounts.
package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/rebasekit/rebasekit/internal/logger"
)

// AuthMiddleware guards the API with a static bearer token. A nil
// middleware (no token configured) passes everything through.
type AuthMiddleware struct {
	token string
}

// NewAuthMiddleware creates the middleware, or nil when token is empty.
func NewAuthMiddleware(token string) *AuthMiddleware {
	if token == "" {
		return nil
	}
	return &AuthMiddleware{token: token}
}

// RequireAuth checks the Authorization header on every request except the
// health check.
func (am *AuthMiddleware) RequireAuth(c *fiber.Ctx) error {
	if am == nil {
		return c.Next()
	}
	if c.Path() == "/health" {
		return c.Next()
	}

	header := c.Get(fiber.HeaderAuthorization)
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || subtle.ConstantTimeCompare([]byte(token), []byte(am.token)) != 1 {
		logger.Debugf("rejected unauthenticated request to %s", c.Path())
		return c.Status(401).JSON(fiber.Map{"error": "authentication required"})
	}
	return c.Next()
}
