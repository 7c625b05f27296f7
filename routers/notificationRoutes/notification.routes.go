package notificationRoutes

import (
	notificationController "learnhub/controllers/notification"
	"learnhub/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupNotificationRoutes(app *fiber.App) {
	notificationGroup := app.Group("/api/notifications", middleware.JWTMiddleware)

	notificationGroup.Get("/", notificationController.NotificationList)
	notificationGroup.Patch("/:id/read", notificationController.MarkRead)
}
