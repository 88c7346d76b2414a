package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/warrox1993/SalonCoiffure-sub001/internal/pkg/env"
)

// AdminKeyMiddleware authenticates operational endpoints against the shared
// admin key. There are no interactive users on this service, so a single
// key header is the whole auth surface.
func AdminKeyMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		configured := strings.TrimSpace(env.GetEnv("ADMIN_API_KEY", ""))
		if configured == "" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "admin_key_not_configured", "message": "ADMIN_API_KEY is not set"})
		}

		provided := extractAdminKey(c)
		if provided == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing admin key"})
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(configured)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid admin key"})
		}

		return c.Next()
	}
}

func extractAdminKey(c *fiber.Ctx) string {
	key := strings.TrimSpace(c.Get("X-Admin-Key"))
	if key != "" {
		return key
	}
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
