package courseValidator

import (
	"strings"

	"learnhub/middleware"
	"learnhub/validators"

	"github.com/gofiber/fiber/v2"
)

type LessonInput struct {
	Title    string `json:"title" validate:"required,min=3,max=200"`
	Content  string `json:"content" validate:"max=20000"`
	VideoURL string `json:"video_url" validate:"omitempty,httpurl"`
	Duration int    `json:"duration" validate:"min=0,max=1440"`
	Order    int    `json:"order" validate:"min=0"`
}

type CreateCourseRequest struct {
	Title       string        `json:"title" validate:"required,min=3,max=200"`
	Description string        `json:"description" validate:"required,min=20,max=5000"`
	Category    string        `json:"category" validate:"required,max=100"`
	Level       string        `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Price       float64       `json:"price" validate:"min=0"`
	Thumbnail   string        `json:"thumbnail" validate:"max=500"`
	Tags        []string      `json:"tags" validate:"max=20,dive,min=1,max=50"`
	Lessons     []LessonInput `json:"lessons" validate:"dive"`
}

// UpdateCourseRequest is a partial update: nil fields are left untouched.
type UpdateCourseRequest struct {
	Title       *string        `json:"title" validate:"omitempty,min=3,max=200"`
	Description *string        `json:"description" validate:"omitempty,min=20,max=5000"`
	Category    *string        `json:"category" validate:"omitempty,max=100"`
	Level       *string        `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Price       *float64       `json:"price" validate:"omitempty,min=0"`
	Thumbnail   *string        `json:"thumbnail" validate:"omitempty,max=500"`
	Tags        *[]string      `json:"tags" validate:"omitempty,max=20,dive,min=1,max=50"`
	Lessons     *[]LessonInput `json:"lessons" validate:"omitempty,dive"`
	Published   *bool          `json:"published"`
	Approved    *bool          `json:"approved"`
}

type CourseListQuery struct {
	Category   string `query:"category" validate:"max=100"`
	Search     string `query:"search" validate:"max=200"`
	Instructor uint   `query:"instructor"`
	Published  string `query:"published" validate:"omitempty,oneof=true false all"`
}

func trimLessons(lessons []LessonInput) {
	for i := range lessons {
		lessons[i].Title = strings.TrimSpace(lessons[i].Title)
		lessons[i].VideoURL = strings.TrimSpace(lessons[i].VideoURL)
	}
}

func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateCourseRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.Description = strings.TrimSpace(reqData.Description)
		reqData.Category = strings.TrimSpace(reqData.Category)
		reqData.Level = strings.ToLower(strings.TrimSpace(reqData.Level))
		trimLessons(reqData.Lessons)

		if errs := validators.ValidateStruct(reqData); len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

func UpdateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UpdateCourseRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		validators.TrimPtr(reqData.Title)
		validators.TrimPtr(reqData.Description)
		validators.TrimPtr(reqData.Category)
		if reqData.Level != nil {
			*reqData.Level = strings.ToLower(strings.TrimSpace(*reqData.Level))
		}
		if reqData.Lessons != nil {
			trimLessons(*reqData.Lessons)
		}

		if errs := validators.ValidateStruct(reqData); len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}

		c.Locals("validatedCourseUpdate", reqData)
		return c.Next()
	}
}

func CourseList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CourseListQuery)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		reqData.Category = strings.TrimSpace(reqData.Category)
		reqData.Search = strings.TrimSpace(reqData.Search)
		reqData.Published = strings.ToLower(strings.TrimSpace(reqData.Published))

		if errs := validators.ValidateStruct(reqData); len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}
		if reqData.Published == "" {
			reqData.Published = "true"
		}

		c.Locals("validatedCourseList", reqData)
		return c.Next()
	}
}
