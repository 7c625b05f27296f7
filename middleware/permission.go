package middleware

import (
	"learnhub/models"

	"github.com/gofiber/fiber/v2"
)

// RequireRole returns a middleware that lets through users holding one of roles.
// It must run after JWTMiddleware.
func RequireRole(message string, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Not authorized, no token", nil)
		}

		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}
		return JsonResponse(c, fiber.StatusForbidden, false, message, nil)
	}
}

// AdminOnly restricts a route to admins.
var AdminOnly = RequireRole("Not authorized as admin", models.RoleAdmin)

// InstructorOnly restricts a route to instructors and admins.
var InstructorOnly = RequireRole("Not authorized as instructor", models.RoleInstructor, models.RoleAdmin)
