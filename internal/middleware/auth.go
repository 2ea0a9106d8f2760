package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/l2h-tech/blog-backend/internal/utils"
)

// Context keys set by Authenticate
const (
	ContextUserID = "userId"
	ContextEmail  = "userEmail"
	ContextRole   = "userRole"
)

// Authenticate verifies the Bearer token and stores the caller's identity
// in the request context.
func Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status": false,
				"error":  "Authorization header required",
			})
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if token == header || token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status": false,
				"error":  "Bearer token required",
			})
		}

		claims, err := utils.VerifyAccessToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status": false,
				"error":  "Invalid or expired token",
			})
		}

		c.Locals(ContextUserID, claims.UserID)
		c.Locals(ContextEmail, claims.Email)
		c.Locals(ContextRole, claims.Role)
		return c.Next()
	}
}

// RequireRole allows only callers whose role is in the given set.
// Must run after Authenticate.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(ContextRole).(string)
		for _, allowed := range roles {
			if role == allowed {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status": false,
			"error":  "Insufficient permissions",
		})
	}
}

// CallerID returns the authenticated user's id from the request context
func CallerID(c *fiber.Ctx) uint {
	id, _ := c.Locals(ContextUserID).(uint)
	return id
}

// CallerRole returns the authenticated user's role from the request context
func CallerRole(c *fiber.Ctx) string {
	role, _ := c.Locals(ContextRole).(string)
	return role
}
