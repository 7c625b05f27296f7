package enrollmentValidator

import (
	"strings"

	"learnhub/middleware"
	"learnhub/validators"

	"github.com/gofiber/fiber/v2"
)

type ProgressRequest struct {
	CompletedLessonID *uint `json:"completed_lesson_id" validate:"omitempty,min=1"`
	Progress          *int  `json:"progress" validate:"omitempty,min=0,max=100"`
}

type PaymentRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required,oneof=pending completed failed refunded"`
}

func UpdateProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ProgressRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errs := validators.ValidateStruct(reqData)
		if reqData.CompletedLessonID == nil && reqData.Progress == nil {
			errs = append(errs, middleware.FieldError{
				Field:   "completed_lesson_id",
				Message: "Either completed_lesson_id or progress is required",
			})
		}
		if len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}

		c.Locals("validatedProgress", reqData)
		return c.Next()
	}
}

func UpdatePayment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(PaymentRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.PaymentStatus = strings.ToLower(strings.TrimSpace(reqData.PaymentStatus))

		if errs := validators.ValidateStruct(reqData); len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}

		c.Locals("validatedPayment", reqData)
		return c.Next()
	}
}
