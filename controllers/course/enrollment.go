package courseController

import (
	"errors"
	"time"

	"learnhub/database"
	"learnhub/middleware"
	"learnhub/models"
	"learnhub/utils"
	enrollmentValidator "learnhub/validators/enrollment"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func EnrollInCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("courseId").(uint)

	db := database.Database.Db

	var course models.Course
	if err := db.First(&course, courseID).Error; err != nil || !course.IsPublic() {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found", nil)
	}

	var count int64
	if err := db.Model(&models.Enrollment{}).Where("user_id = ? AND course_id = ?", userID, courseID).Count(&count).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
	}
	if count > 0 {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Already enrolled in this course", nil)
	}

	paymentStatus := models.PaymentPending
	if course.IsFree() {
		paymentStatus = models.PaymentCompleted
	}
	enrollment := models.Enrollment{
		UserID:         userID,
		CourseID:       courseID,
		PaymentStatus:  paymentStatus,
		LastAccessedAt: time.Now().UTC(),
	}

	// the unique (user_id, course_id) index catches concurrent duplicates
	if err := database.WrapError(db.Create(&enrollment).Error); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Already enrolled in this course", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
	}
	enrollment.Course = &course
	if user := middleware.CurrentUser(c); user != nil {
		utils.SendEnrollmentEmail(user, &course)
	}

	log.Info().Uint("user_id", userID).Uint("course_id", courseID).Str("payment_status", paymentStatus).Msg("enrolled")
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrolled in course successfully!", enrollment)
}

func MyCourses(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var enrollments []models.Enrollment
	if err := database.Database.Db.
		Where("user_id = ?", userID).
		Preload("Course").
		Preload("Course.Instructor").
		Order("created_at DESC, id DESC").
		Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", enrollments)
}

// UpdateProgress records a completed lesson and/or an explicit progress value.
// Without an explicit value progress is derived from completed/total lessons.
func UpdateProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData, ok := c.Locals("validatedProgress").(*enrollmentValidator.ProgressRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	courseID := c.Locals("courseId").(uint)
	now := time.Now().UTC()

	var enrollment models.Enrollment
	err := database.Database.Db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error; err != nil {
			return database.WrapError(err)
		}

		if reqData.CompletedLessonID != nil {
			var lesson models.Lesson
			if err := tx.Where("id = ? AND course_id = ?", *reqData.CompletedLessonID, courseID).First(&lesson).Error; err != nil {
				return errLessonNotInCourse
			}
			enrollment.CompleteLesson(lesson.ID, now)
		}

		if reqData.Progress != nil {
			enrollment.Progress = *reqData.Progress
		} else {
			var total int64
			if err := tx.Model(&models.Lesson{}).Where("course_id = ?", courseID).Count(&total).Error; err != nil {
				return err
			}
			enrollment.Progress = models.ComputeProgress(len(enrollment.CompletedLessons), int(total))
		}
		enrollment.LastAccessedAt = now

		return tx.Model(&enrollment).Select("progress", "completed_lessons", "last_accessed_at").Updates(&enrollment).Error
	})
	switch {
	case errors.Is(err, database.ErrNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found", nil)
	case errors.Is(err, errLessonNotInCourse):
		return middleware.ValidationErrorResponse(c, []middleware.FieldError{
			{Field: "completed_lesson_id", Message: "Lesson does not belong to this course"},
		})
	case err != nil:
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress updated successfully!", enrollment)
}

var errLessonNotInCourse = errors.New("lesson does not belong to this course")

// UpdatePaymentStatus is admin only.
func UpdatePaymentStatus(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedPayment").(*enrollmentValidator.PaymentRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	id := c.Locals("id").(uint)

	db := database.Database.Db
	var enrollment models.Enrollment
	if err := db.First(&enrollment, id).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found", nil)
	}

	if err := db.Model(&enrollment).Update("payment_status", reqData.PaymentStatus).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
	}
	enrollment.PaymentStatus = reqData.PaymentStatus

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment status updated successfully!", enrollment)
}
