package middleware

import (
	"eduledger/backend/config"
	"eduledger/backend/models"
	"eduledger/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware rejects requests without a valid token and stores the
// caller's username and role on the request context.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username, role, err := utils.ExtractUserFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		c.Locals("username", username)
		c.Locals("role", role)
		return c.Next()
	}
}

// AdminMiddleware allows only callers whose token carries the admin role.
// Must run after AuthMiddleware.
func AdminMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		if role != models.RoleAdmin {
			return utils.Forbidden(c, "Admin access required")
		}
		return c.Next()
	}
}

// Username returns the authenticated caller set by AuthMiddleware.
func Username(c *fiber.Ctx) string {
	username, _ := c.Locals("username").(string)
	return username
}

// Role returns the authenticated caller's role set by AuthMiddleware.
func Role(c *fiber.Ctx) string {
	role, _ := c.Locals("role").(string)
	return role
}
