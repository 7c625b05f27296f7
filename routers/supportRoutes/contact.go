package supportRoutes

import (
	controller "learnhub/controllers/support"
	"learnhub/middleware"
	"learnhub/validators"
	validator "learnhub/validators/contact"

	"github.com/gofiber/fiber/v2"
)

// SetupSupportRoutes mounts the contact form. submitLimiter guards the public POST.
func SetupSupportRoutes(app *fiber.App, submitLimiter fiber.Handler) {
	contact := app.Group("/api/contact")
	id := validators.IDParam("id")

	contact.Post("/", submitLimiter, validator.SubmitContact(), controller.SubmitContact)

	contact.Get("/", middleware.JWTMiddleware, middleware.AdminOnly, controller.ContactList)
	contact.Get("/stats", middleware.JWTMiddleware, middleware.AdminOnly, controller.ContactStats)
	contact.Get("/:id", middleware.JWTMiddleware, middleware.AdminOnly, id, controller.ContactDetail)
	contact.Patch("/:id", middleware.JWTMiddleware, middleware.AdminOnly, id, controller.MarkReplied)
	contact.Patch("/:id/reply", middleware.JWTMiddleware, middleware.AdminOnly, id, controller.MarkReplied)
	contact.Delete("/:id", middleware.JWTMiddleware, middleware.AdminOnly, id, controller.DeleteContact)
}
