package courseController

import (
	"errors"
	"strings"

	"learnhub/database"
	"learnhub/middleware"
	"learnhub/models"
	"learnhub/utils"
	courseValidator "learnhub/validators/course"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxThumbnailSize = 5 << 20

// CanMutateCourse reports whether user may update or delete course:
// admins always, instructors only their own courses.
func CanMutateCourse(user *models.User, course *models.Course) bool {
	if user == nil || course == nil {
		return false
	}
	return user.IsAdmin() || user.ID == course.InstructorID
}

func lessonsFromInput(in []courseValidator.LessonInput) []models.Lesson {
	lessons := make([]models.Lesson, 0, len(in))
	for i, l := range in {
		order := l.Order
		if order == 0 {
			order = i + 1
		}
		lessons = append(lessons, models.Lesson{
			Title:    l.Title,
			Content:  l.Content,
			VideoURL: l.VideoURL,
			Duration: l.Duration,
			Order:    order,
		})
	}
	return lessons
}

func preloadCourse(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Instructor").
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order(clause.OrderByColumn{Column: clause.Column{Name: "order"}}).Order("id")
		})
}

func findCourse(db *gorm.DB, id uint) (*models.Course, error) {
	var course models.Course
	if err := preloadCourse(db).First(&course, id).Error; err != nil {
		return nil, database.WrapError(err)
	}
	return &course, nil
}

// courseOr404 loads the course named by the :id param and writes the 404 itself.
func courseOr404(c *fiber.Ctx) (*models.Course, error) {
	course, err := findCourse(database.Database.Db, c.Locals("id").(uint))
	if errors.Is(err, database.ErrNotFound) {
		return nil, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found", nil)
	}
	if err != nil {
		return nil, middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
	}
	return course, nil
}

func CreateCourse(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedCourse").(*courseValidator.CreateCourseRequest)
	if !ok || user == nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	level := reqData.Level
	if level == "" {
		level = models.LevelBeginner
	}

	course := models.Course{
		Title:        reqData.Title,
		Description:  reqData.Description,
		Category:     reqData.Category,
		Level:        level,
		Price:        reqData.Price,
		Thumbnail:    reqData.Thumbnail,
		Tags:         datatypes.JSONSlice[string](reqData.Tags),
		InstructorID: user.ID,
		Lessons:      lessonsFromInput(reqData.Lessons),
		// admins publish directly, instructors wait for approval
		Approved:  user.IsAdmin(),
		Published: user.IsAdmin(),
	}

	db := database.Database.Db
	if err := db.Create(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
	}

	created, err := findCourse(db, course.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
	}
	log.Info().Uint("course_id", course.ID).Uint("instructor_id", user.ID).Msg("course created")
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", created)
}

// CourseList is public. Non-admins only ever see approved and published courses;
// admins may filter on published freely, including published=all.
func CourseList(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCourseList").(*courseValidator.CourseListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	user := middleware.CurrentUser(c)

	published := reqData.Published
	if user == nil || !user.IsAdmin() {
		published = "true"
	}

	query := database.Database.Db.Model(&models.Course{}).Preload("Instructor")
	if published != "all" {
		query = query.Where("approved = ? AND published = ?", true, published == "true")
	}
	if reqData.Category != "" {
		query = query.Where("category = ?", reqData.Category)
	}
	if reqData.Instructor != 0 {
		query = query.Where("instructor_id = ?", reqData.Instructor)
	}
	if reqData.Search != "" {
		like := "%" + strings.ToLower(reqData.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var courses []models.Course
	if err := query.Order("created_at DESC, id DESC").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", courses)
}

// CourseDetail hides unapproved or unpublished courses from everyone but the owner and admins.
func CourseDetail(c *fiber.Ctx) error {
	course, err := courseOr404(c)
	if course == nil {
		return err
	}
	if !course.IsPublic() && !CanMutateCourse(middleware.CurrentUser(c), course) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", course)
}

// UpdateCourse merges the fields present in the body. lessons, when sent, replaces the list.
func UpdateCourse(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedCourseUpdate").(*courseValidator.UpdateCourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	course, err := courseOr404(c)
	if course == nil {
		return err
	}
	if !CanMutateCourse(user, course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Not authorized to update this course", nil)
	}
	if reqData.Approved != nil && !user.IsAdmin() {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only admins can approve courses", nil)
	}

	updates := map[string]interface{}{}
	if reqData.Title != nil {
		updates["title"] = *reqData.Title
	}
	if reqData.Description != nil {
		updates["description"] = *reqData.Description
	}
	if reqData.Category != nil {
		updates["category"] = *reqData.Category
	}
	if reqData.Level != nil {
		updates["level"] = *reqData.Level
	}
	if reqData.Price != nil {
		updates["price"] = *reqData.Price
	}
	if reqData.Thumbnail != nil {
		updates["thumbnail"] = *reqData.Thumbnail
	}
	if reqData.Tags != nil {
		updates["tags"] = datatypes.JSONSlice[string](*reqData.Tags)
	}
	if reqData.Published != nil {
		updates["published"] = *reqData.Published
	}
	if reqData.Approved != nil {
		updates["approved"] = *reqData.Approved
	}

	err = database.Database.Db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.Course{}).Where("id = ?", course.ID).Updates(updates).Error; err != nil {
				return err
			}
		}
		if reqData.Lessons != nil {
			if err := tx.Where("course_id = ?", course.ID).Delete(&models.Lesson{}).Error; err != nil {
				return err
			}
			lessons := lessonsFromInput(*reqData.Lessons)
			for i := range lessons {
				lessons[i].CourseID = course.ID
			}
			if len(lessons) > 0 {
				if err := tx.Create(&lessons).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
	}

	updated, err := findCourse(database.Database.Db, course.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", updated)
}

func DeleteCourse(c *fiber.Ctx) error {
	course, err := courseOr404(c)
	if course == nil {
		return err
	}
	if !CanMutateCourse(middleware.CurrentUser(c), course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Not authorized to delete this course", nil)
	}

	err = database.Database.Db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", course.ID).Delete(&models.Lesson{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Course{}, course.ID).Error
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course removed", nil)
}

// ApproveCourse toggles the approved flag.
func ApproveCourse(c *fiber.Ctx) error {
	course, err := courseOr404(c)
	if course == nil {
		return err
	}

	course.Approved = !course.Approved
	if err := database.Database.Db.Model(&models.Course{}).Where("id = ?", course.ID).
		Update("approved", course.Approved).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
	}

	message := "Course approved"
	if !course.Approved {
		message = "Course approval revoked"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, course)
}

// UploadThumbnail stores the multipart "thumbnail" image and sets it on the course.
func UploadThumbnail(c *fiber.Ctx) error {
	course, err := courseOr404(c)
	if course == nil {
		return err
	}
	if !CanMutateCourse(middleware.CurrentUser(c), course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Not authorized to update this course", nil)
	}

	file, err := c.FormFile("thumbnail")
	if err != nil {
		return middleware.ValidationErrorResponse(c, []middleware.FieldError{
			{Field: "thumbnail", Message: "Thumbnail is required"},
		})
	}
	if file.Size > maxThumbnailSize {
		return middleware.ValidationErrorResponse(c, []middleware.FieldError{
			{Field: "thumbnail", Message: "Thumbnail must not exceed 5MB"},
		})
	}

	url, err := utils.SaveUploadedImage(c.UserContext(), file, "course-thumbnails")
	if errors.Is(err, utils.ErrUnsupportedImage) {
		return middleware.ValidationErrorResponse(c, []middleware.FieldError{
			{Field: "thumbnail", Message: "Thumbnail must be a JPEG, PNG, WebP or GIF image"},
		})
	}
	if err != nil {
		log.Error().Err(err).Uint("course_id", course.ID).Msg("thumbnail upload failed")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to store thumbnail", nil)
	}

	course.Thumbnail = url
	if err := database.Database.Db.Model(&models.Course{}).Where("id = ?", course.ID).
		Update("thumbnail", url).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Thumbnail uploaded successfully!", course)
}
