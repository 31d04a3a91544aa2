package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cuidarbem/cuidarbem-api/models"
)

// RequireRole lets the request through only when the token's role is one of
// roles. It must run after Protected.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := CurrentRole(c)
		for _, allowed := range roles {
			if role == allowed {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "you don't have the required role to perform this action",
		})
	}
}
