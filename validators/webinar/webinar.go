package webinarValidator

import (
	"strings"
	"time"

	"learnhub/middleware"
	"learnhub/validators"

	"github.com/gofiber/fiber/v2"
)

type CreateWebinarRequest struct {
	Title        string    `json:"title" validate:"required,min=3,max=100"`
	Description  string    `json:"description" validate:"required,min=20,max=5000"`
	StartTime    time.Time `json:"start_time" validate:"required"`
	Duration     int       `json:"duration" validate:"required,min=15,max=480"`
	Link         string    `json:"link" validate:"required,httpurl"`
	RecordingURL string    `json:"recording_url" validate:"omitempty,httpurl"`
	MaxAttendees *int      `json:"max_attendees" validate:"omitempty,min=1,max=100000"`
}

// UpdateWebinarRequest is a partial update: nil fields are left untouched.
type UpdateWebinarRequest struct {
	Title        *string    `json:"title" validate:"omitempty,min=3,max=100"`
	Description  *string    `json:"description" validate:"omitempty,min=20,max=5000"`
	StartTime    *time.Time `json:"start_time"`
	Duration     *int       `json:"duration" validate:"omitempty,min=15,max=480"`
	Link         *string    `json:"link" validate:"omitempty,httpurl"`
	RecordingURL *string    `json:"recording_url" validate:"omitempty,httpurl"`
	MaxAttendees *int       `json:"max_attendees" validate:"omitempty,min=1,max=100000"`
	Status       *string    `json:"status" validate:"omitempty,oneof=scheduled live completed cancelled"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=scheduled live completed cancelled"`
}

type WebinarListQuery struct {
	Status  string `query:"status" validate:"omitempty,oneof=scheduled live completed cancelled"`
	Search  string `query:"search" validate:"max=200"`
	Speaker uint   `query:"speaker"`
}

var timeNow = time.Now

func futureStart(errs []middleware.FieldError, start time.Time) []middleware.FieldError {
	if !start.IsZero() && !start.After(timeNow()) {
		errs = append(errs, middleware.FieldError{Field: "start_time", Message: "Start time must be in the future"})
	}
	return errs
}

func CreateWebinar() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateWebinarRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.Description = strings.TrimSpace(reqData.Description)
		reqData.Link = strings.TrimSpace(reqData.Link)
		reqData.RecordingURL = strings.TrimSpace(reqData.RecordingURL)

		errs := validators.ValidateStruct(reqData)
		errs = futureStart(errs, reqData.StartTime)
		if len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}

		c.Locals("validatedWebinar", reqData)
		return c.Next()
	}
}

func UpdateWebinar() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UpdateWebinarRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		validators.TrimPtr(reqData.Title)
		validators.TrimPtr(reqData.Description)
		validators.TrimPtr(reqData.Link)
		validators.TrimPtr(reqData.RecordingURL)
		validators.TrimPtr(reqData.Status)

		errs := validators.ValidateStruct(reqData)
		if reqData.StartTime != nil {
			errs = futureStart(errs, *reqData.StartTime)
		}
		if len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}

		c.Locals("validatedWebinarUpdate", reqData)
		return c.Next()
	}
}

func UpdateStatus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(StatusRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Status = strings.ToLower(strings.TrimSpace(reqData.Status))

		if errs := validators.ValidateStruct(reqData); len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}

		c.Locals("validatedWebinarStatus", reqData)
		return c.Next()
	}
}

func WebinarList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(WebinarListQuery)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		reqData.Search = strings.TrimSpace(reqData.Search)
		if errs := validators.ValidateStruct(reqData); len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}

		c.Locals("validatedWebinarList", reqData)
		return c.Next()
	}
}
