package webinarRoutes

import (
	webinarController "learnhub/controllers/webinar"
	"learnhub/middleware"
	"learnhub/validators"
	webinarValidator "learnhub/validators/webinar"

	"github.com/gofiber/fiber/v2"
)

func SetupWebinarRoutes(app *fiber.App) {
	webinarGroup := app.Group("/api/webinars")
	id := validators.IDParam("id")

	webinarGroup.Get("/", webinarValidator.WebinarList(), webinarController.WebinarList)
	webinarGroup.Get("/:id", id, webinarController.WebinarDetail)

	webinarGroup.Post("/", middleware.JWTMiddleware, middleware.InstructorOnly, webinarValidator.CreateWebinar(), webinarController.CreateWebinar)
	webinarGroup.Put("/:id", middleware.JWTMiddleware, id, webinarValidator.UpdateWebinar(), webinarController.UpdateWebinar)
	webinarGroup.Delete("/:id", middleware.JWTMiddleware, id, webinarController.DeleteWebinar)
	webinarGroup.Patch("/register/:id", middleware.JWTMiddleware, id, webinarController.RegisterForWebinar)
	webinarGroup.Patch("/:id/status", middleware.JWTMiddleware, id, webinarValidator.UpdateStatus(), webinarController.UpdateWebinarStatus)
}
