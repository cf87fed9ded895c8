package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/submate-app/SubMate/internal/pkg/auth"
	"github.com/submate-app/SubMate/internal/pkg/usercontext"
)

// RequireAuth validates the Bearer token and stores the user ID in Locals.
// API routes return JSON 401 instead of a redirect.
func RequireAuth(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "Missing or invalid authentication",
		})
	}

	token := strings.TrimPrefix(header, "Bearer ")
	userID, err := auth.VerifyToken(token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "Missing or invalid authentication",
		})
	}

	usercontext.SetUserID(c, userID)
	return c.Next()
}
