package usercontext

import "github.com/gofiber/fiber/v2"

// Shared Locals keys used across controllers and middlewares
const (
	KeyUserID = "user_id"
)

// UserID returns the authenticated user's ID from Locals, 0 when the request
// is unauthenticated.
func UserID(c *fiber.Ctx) uint {
	if v, ok := c.Locals(KeyUserID).(uint); ok {
		return v
	}
	return 0
}

// SetUserID stores the authenticated user's ID for downstream handlers.
func SetUserID(c *fiber.Ctx, id uint) {
	c.Locals(KeyUserID, id)
}
