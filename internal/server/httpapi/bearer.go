package httpapi

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/dmitrijs2005/helpdesk/internal/server/auth"
	"github.com/dmitrijs2005/helpdesk/internal/server/models"
)

// extractBearer returns the token from the Authorization header. Only the
// Bearer scheme is accepted; there is no cookie or query fallback.
func extractBearer(c fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return h[7:]
	}
	return ""
}

// authorize runs the access decision engine for the request. An empty role
// set admits any authenticated account. Every protected handler calls this
// before touching a collaborator.
func (s *Server) authorize(c fiber.Ctx, roles ...models.Role) (*auth.Claims, error) {
	return s.authz.Authorize(c.Context(), extractBearer(c), roles...)
}
