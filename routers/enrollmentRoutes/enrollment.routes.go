package enrollmentRoutes

import (
	courseController "learnhub/controllers/course"
	"learnhub/middleware"
	"learnhub/validators"
	enrollmentValidator "learnhub/validators/enrollment"

	"github.com/gofiber/fiber/v2"
)

func SetupEnrollmentRoutes(app *fiber.App) {
	enrollmentGroup := app.Group("/api/enrollments", middleware.JWTMiddleware)
	courseID := validators.IDParam("courseId")

	enrollmentGroup.Post("/enroll/:courseId", courseID, courseController.EnrollInCourse)
	enrollmentGroup.Get("/my-courses", courseController.MyCourses)
	enrollmentGroup.Patch("/progress/:courseId", courseID, enrollmentValidator.UpdateProgress(), courseController.UpdateProgress)
	enrollmentGroup.Patch("/:id/payment", middleware.AdminOnly, validators.IDParam("id"), enrollmentValidator.UpdatePayment(), courseController.UpdatePaymentStatus)
}
