package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// BearerAuth enforces a static bearer token on every request in the group.
// The reviewer surface runs behind a separate token.
func BearerAuth(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get("Authorization")
		if auth == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing Authorization header",
			})
		}

		provided := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer"))
		if provided != token {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid bearer token",
			})
		}

		return c.Next()
	}
}
