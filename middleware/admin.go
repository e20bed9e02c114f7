package middleware

import (
	"crypto/subtle"
	"strings"

	"football-analysis/utils"

	"github.com/gofiber/fiber/v2"
)

// AdminTokenMiddleware guards the /admin routes with a static Bearer token.
func AdminTokenMiddleware(expectedToken string) fiber.Handler {
	log := utils.Component("admin-auth")
	if expectedToken == "" {
		log.Fatal().Msg("ADMIN_TOKEN is not set, admin routes cannot authenticate")
	}
	expected := []byte(expectedToken)

	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			log.Warn().Str("path", c.Path()).Msg("missing Authorization header")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "admin token missing",
			})
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if subtle.ConstantTimeCompare([]byte(token), expected) != 1 {
			log.Warn().Str("path", c.Path()).Str("ip", c.IP()).Msg("invalid admin token")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid admin token",
			})
		}
		return c.Next()
	}
}
