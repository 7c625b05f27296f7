package courseRoutes

import (
	courseController "learnhub/controllers/course"
	"learnhub/middleware"
	"learnhub/validators"
	courseValidator "learnhub/validators/course"

	"github.com/gofiber/fiber/v2"
)

func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/api/courses")
	id := validators.IDParam("id")

	courseGroup.Get("/", middleware.OptionalJWT, courseValidator.CourseList(), courseController.CourseList)
	courseGroup.Get("/:id", middleware.OptionalJWT, id, courseController.CourseDetail)

	courseGroup.Post("/", middleware.JWTMiddleware, middleware.InstructorOnly, courseValidator.CreateCourse(), courseController.CreateCourse)
	courseGroup.Put("/:id", middleware.JWTMiddleware, id, courseValidator.UpdateCourse(), courseController.UpdateCourse)
	courseGroup.Delete("/:id", middleware.JWTMiddleware, id, courseController.DeleteCourse)
	courseGroup.Post("/:id/thumbnail", middleware.JWTMiddleware, id, courseController.UploadThumbnail)

	courseGroup.Patch("/:id/approve", middleware.JWTMiddleware, middleware.AdminOnly, id, courseController.ApproveCourse)
}
