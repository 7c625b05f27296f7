package authRoutes

import (
	authControllers "learnhub/controllers/auth"
	"learnhub/middleware"
	authValidators "learnhub/validators/auth"

	"github.com/gofiber/fiber/v2"
)

// SetupAuthRoutes mounts registration and session routes. loginLimiter guards login.
func SetupAuthRoutes(app *fiber.App, loginLimiter fiber.Handler) {
	authGroup := app.Group("/api/users")

	authGroup.Post("/register", authValidators.Register(), authControllers.Register)
	authGroup.Post("/login", loginLimiter, authValidators.Login(), authControllers.Login)
	authGroup.Post("/logout", middleware.JWTMiddleware, authControllers.Logout)
}
