package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/flexilance/flexilance-api/internal/utils"
)

const TokenCookie = "fx_token"

func JWTFromCookie(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := c.Cookies(TokenCookie)
		if tokenStr == "" {
			return fiber.ErrUnauthorized
		}

		claims, err := utils.ParseJWT(secret, tokenStr)
		if err != nil {
			return fiber.ErrUnauthorized
		}

		c.Locals("user", claims)
		return c.Next()
	}
}
