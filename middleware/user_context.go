package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	localUserID   = "user_id"
	localUserName = "user_name"
)

// UserContextMiddleware reads the identity the gateway forwards in X-User-ID / X-User-Name and
// attaches it to the request locals. Missing headers leave an anonymous context.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// header values point into the request buffer; clone them since they outlive the handler
		c.Locals(localUserID, strings.Clone(strings.TrimSpace(c.Get("X-User-ID"))))
		c.Locals(localUserName, strings.Clone(strings.TrimSpace(c.Get("X-User-Name"))))
		return c.Next()
	}
}

// RequireUser rejects requests that carry no user identity.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id, _ := CurrentUser(c); id == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-ID, request must come through the gateway with auth context",
			})
		}
		return c.Next()
	}
}

// CurrentUser returns the gateway identity set by UserContextMiddleware. The name falls back to
// the id when the gateway did not send one.
func CurrentUser(c *fiber.Ctx) (id, name string) {
	id, _ = c.Locals(localUserID).(string)
	name, _ = c.Locals(localUserName).(string)
	if name == "" {
		name = id
	}
	return id, name
}
