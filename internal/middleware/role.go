package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/flexilance/flexilance-api/internal/models"
	"github.com/flexilance/flexilance-api/internal/utils"
)

// RequireRoles is the single authorization predicate: every role-gated route
// declares its allowed roles here instead of comparing strings in handlers.
func RequireRoles(allowed ...models.Role) fiber.Handler {
	allowedSet := map[models.Role]bool{}
	for _, r := range allowed {
		allowedSet[r] = true
	}

	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("user").(*utils.Claims)
		if !ok || claims == nil {
			return fiber.ErrUnauthorized
		}

		role := models.Role(strings.ToLower(strings.TrimSpace(string(claims.Role))))
		if !allowedSet[role] {
			return fiber.NewError(fiber.StatusForbidden, "forbidden: insufficient role")
		}

		return c.Next()
	}
}
