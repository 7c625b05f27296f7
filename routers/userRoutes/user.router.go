package userProfileRoutes

import (
	userProfileController "learnhub/controllers/userControllers"
	"learnhub/middleware"
	"learnhub/validators"
	userProfileValidator "learnhub/validators/userValidator"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App) {
	userGroup := app.Group("/api/users")

	userGroup.Get("/profile", middleware.JWTMiddleware, userProfileController.GetProfile)
	userGroup.Put("/profile", middleware.JWTMiddleware, userProfileValidator.UpdateProfile(), userProfileController.UpdateProfile)

	userGroup.Get("/", middleware.JWTMiddleware, middleware.AdminOnly, userProfileValidator.UserList(), userProfileController.UserList)
	userGroup.Patch("/:id/status", middleware.JWTMiddleware, middleware.AdminOnly, validators.IDParam("id"), userProfileValidator.UpdateStatus(), userProfileController.UpdateUserStatus)
}
