package webinarController

import (
	"errors"
	"strings"
	"time"

	"learnhub/database"
	"learnhub/middleware"
	"learnhub/models"
	"learnhub/utils"
	webinarValidator "learnhub/validators/webinar"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var timeNow = time.Now

func preloadWebinar(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Speaker").
		Preload("Attendees", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
}

func findWebinar(db *gorm.DB, id uint) (*models.Webinar, error) {
	var webinar models.Webinar
	if err := preloadWebinar(db).First(&webinar, id).Error; err != nil {
		return nil, database.WrapError(err)
	}
	return &webinar, nil
}

// canManageWebinar is true for the speaker and for admins.
func canManageWebinar(user *models.User, webinar *models.Webinar) bool {
	return user != nil && (user.IsAdmin() || user.ID == webinar.SpeakerID)
}

// webinarOr404 loads the webinar named by the :id param and writes the 404 itself.
func webinarOr404(c *fiber.Ctx) (*models.Webinar, error) {
	webinar, err := findWebinar(database.Database.Db, c.Locals("id").(uint))
	if errors.Is(err, database.ErrNotFound) {
		return nil, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Webinar not found", nil)
	}
	if err != nil {
		return nil, middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
	}
	return webinar, nil
}

func CreateWebinar(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedWebinar").(*webinarValidator.CreateWebinarRequest)
	if !ok || user == nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	maxAttendees := 100
	if reqData.MaxAttendees != nil {
		maxAttendees = *reqData.MaxAttendees
	}

	webinar := models.Webinar{
		Title:        reqData.Title,
		Description:  reqData.Description,
		SpeakerID:    user.ID,
		StartTime:    reqData.StartTime.UTC(),
		Duration:     reqData.Duration,
		Link:         reqData.Link,
		RecordingURL: reqData.RecordingURL,
		MaxAttendees: maxAttendees,
		Status:       models.WebinarScheduled,
	}

	db := database.Database.Db
	if err := db.Create(&webinar).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
	}

	created, err := findWebinar(db, webinar.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
	}
	log.Info().Uint("webinar_id", webinar.ID).Uint("speaker_id", user.ID).Msg("webinar created")
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Webinar created successfully!", created)
}

// WebinarList is public and sorted by start time, soonest first.
func WebinarList(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedWebinarList").(*webinarValidator.WebinarListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	query := preloadWebinar(database.Database.Db.Model(&models.Webinar{}))
	if reqData.Status != "" {
		query = query.Where("status = ?", reqData.Status)
	}
	if reqData.Speaker != 0 {
		query = query.Where("speaker_id = ?", reqData.Speaker)
	}
	if reqData.Search != "" {
		like := "%" + strings.ToLower(reqData.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var webinars []models.Webinar
	if err := query.Order("start_time ASC, id ASC").Find(&webinars).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Webinars fetched successfully!", webinars)
}

func WebinarDetail(c *fiber.Ctx) error {
	webinar, err := webinarOr404(c)
	if webinar == nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Webinar fetched successfully!", webinar)
}

func UpdateWebinar(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedWebinarUpdate").(*webinarValidator.UpdateWebinarRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	webinar, err := webinarOr404(c)
	if webinar == nil {
		return err
	}
	if !canManageWebinar(user, webinar) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Not authorized to update this webinar", nil)
	}
	if reqData.MaxAttendees != nil && *reqData.MaxAttendees < len(webinar.Attendees) {
		return middleware.ValidationErrorResponse(c, []middleware.FieldError{
			{Field: "max_attendees", Message: "Max attendees cannot be below the current number of attendees"},
		})
	}

	updates := map[string]interface{}{}
	if reqData.Title != nil {
		updates["title"] = *reqData.Title
	}
	if reqData.Description != nil {
		updates["description"] = *reqData.Description
	}
	if reqData.StartTime != nil {
		updates["start_time"] = reqData.StartTime.UTC()
	}
	if reqData.Duration != nil {
		updates["duration"] = *reqData.Duration
	}
	if reqData.Link != nil {
		updates["link"] = *reqData.Link
	}
	if reqData.RecordingURL != nil {
		updates["recording_url"] = *reqData.RecordingURL
	}
	if reqData.MaxAttendees != nil {
		updates["max_attendees"] = *reqData.MaxAttendees
	}
	if reqData.Status != nil {
		updates["status"] = *reqData.Status
	}
	if reqData.StartTime != nil && !reqData.StartTime.Equal(webinar.StartTime) {
		// a moved webinar gets a fresh reminder
		updates["reminder_sent_at"] = nil
	}

	db := database.Database.Db
	if len(updates) > 0 {
		if err := db.Model(&models.Webinar{}).Where("id = ?", webinar.ID).Updates(updates).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
		}
	}

	updated, err := findWebinar(db, webinar.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Webinar updated successfully!", updated)
}

func DeleteWebinar(c *fiber.Ctx) error {
	webinar, err := webinarOr404(c)
	if webinar == nil {
		return err
	}
	if !canManageWebinar(middleware.CurrentUser(c), webinar) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Not authorized to delete this webinar", nil)
	}

	err = database.Database.Db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("webinar_id = ?", webinar.ID).Delete(&models.WebinarAttendee{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Webinar{}, webinar.ID).Error
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Webinar removed", nil)
}

// RegisterForWebinar adds the current user to the attendee list.
func RegisterForWebinar(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Not authorized, no token", nil)
	}
	webinarID := c.Locals("id").(uint)
	db := database.Database.Db

	err := RegisterAttendee(db, webinarID, user.ID, timeNow())

	var regErr *RegistrationError
	switch {
	case errors.As(err, &regErr):
		middleware.WebinarRegistrations.WithLabelValues(regErr.Outcome).Inc()
		return middleware.JsonResponse(c, regErr.Status, false, regErr.Message, nil)
	case err != nil:
		middleware.WebinarRegistrations.WithLabelValues("error").Inc()
		log.Error().Err(err).Uint("webinar_id", webinarID).Uint("user_id", user.ID).Msg("webinar registration failed")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
	}
	middleware.WebinarRegistrations.WithLabelValues("ok").Inc()

	webinar, err := findWebinar(db, webinarID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
	}
	utils.SendWebinarRegistrationEmail(user, webinar)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Registered for webinar successfully!", webinar)
}

func UpdateWebinarStatus(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedWebinarStatus").(*webinarValidator.StatusRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	webinar, err := webinarOr404(c)
	if webinar == nil {
		return err
	}
	if !canManageWebinar(middleware.CurrentUser(c), webinar) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Not authorized to update this webinar", nil)
	}

	if err := database.Database.Db.Model(&models.Webinar{}).Where("id = ?", webinar.ID).
		Update("status", reqData.Status).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
	}
	webinar.Status = reqData.Status

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Webinar status updated successfully!", webinar)
}
