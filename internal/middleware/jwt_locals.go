package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/flexilance/flexilance-api/internal/models"
	"github.com/flexilance/flexilance-api/internal/utils"
)

func AttachJWTLocals() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("user").(*utils.Claims)
		if !ok || claims == nil {
			return fiber.ErrUnauthorized
		}

		uid := strings.TrimSpace(claims.UserID)
		if uid == "" {
			return fiber.ErrUnauthorized
		}
		role := models.Role(strings.ToLower(strings.TrimSpace(string(claims.Role))))

		c.Locals("userId", uid)
		c.Locals("role", string(role))

		return c.Next()
	}
}
