package supportControllers

import (
	"errors"
	"time"

	"learnhub/database"
	"learnhub/middleware"
	"learnhub/models"
	"learnhub/utils"
	contactValidator "learnhub/validators/contact"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const contactListLimit = 50

// notifyAdmin runs detached from the request.
var notifyAdmin = func(admin *models.User, contact *models.Contact) {
	go utils.NotifyAdminOfContact(admin, contact)
}

// SubmitContact stores a public contact message and notifies the first admin.
// Notification failures never fail the request.
func SubmitContact(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedContact").(*contactValidator.ContactRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	contact := models.Contact{
		Name:    reqData.Name,
		Email:   reqData.Email,
		Subject: reqData.Subject,
		Message: reqData.Message,
	}
	if err := db.Create(&contact).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save contact message!", nil)
	}

	var admin models.User
	err := db.Where("role = ?", models.RoleAdmin).Order("id").First(&admin).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		log.Warn().Uint("contact_id", contact.ID).Msg("no admin found to notify about contact message")
	case err != nil:
		log.Error().Err(err).Uint("contact_id", contact.ID).Msg("admin lookup failed")
	default:
		notifyAdmin(&admin, &contact)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Message sent successfully!", contact)
}

func ContactList(c *fiber.Ctx) error {
	var contacts []models.Contact
	if err := database.Database.Db.Order("created_at DESC, id DESC").Limit(contactListLimit).Find(&contacts).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch contacts!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Contacts fetched successfully!", contacts)
}

func findContact(c *fiber.Ctx) (*models.Contact, error) {
	var contact models.Contact
	if err := database.Database.Db.First(&contact, c.Locals("id").(uint)).Error; err != nil {
		return nil, database.WrapError(err)
	}
	return &contact, nil
}

func contactOr404(c *fiber.Ctx) (*models.Contact, error) {
	contact, err := findContact(c)
	if errors.Is(err, database.ErrNotFound) {
		return nil, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Contact not found", nil)
	}
	if err != nil {
		return nil, middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
	}
	return contact, nil
}

func ContactDetail(c *fiber.Ctx) error {
	contact, err := contactOr404(c)
	if contact == nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Contact fetched successfully!", contact)
}

// MarkReplied sets replied=true. Repeating it is harmless.
func MarkReplied(c *fiber.Ctx) error {
	contact, err := contactOr404(c)
	if contact == nil {
		return err
	}

	if !contact.Replied {
		if err := database.Database.Db.Model(contact).Update("replied", true).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
		}
		contact.Replied = true
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Contact marked as replied", contact)
}

func DeleteContact(c *fiber.Ctx) error {
	contact, err := contactOr404(c)
	if contact == nil {
		return err
	}
	if err := database.Database.Db.Delete(contact).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, err.Error(), nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Contact removed", nil)
}

// ContactStats counts messages for the admin dashboard.
func ContactStats(c *fiber.Ctx) error {
	db := database.Database.Db
	current := now.New(time.Now().UTC())

	var total, today, thisWeek, unreplied int64
	queries := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&total, db.Model(&models.Contact{})},
		{&today, db.Model(&models.Contact{}).Where("created_at >= ?", current.BeginningOfDay())},
		{&thisWeek, db.Model(&models.Contact{}).Where("created_at >= ?", current.BeginningOfWeek())},
		{&unreplied, db.Model(&models.Contact{}).Where("replied = ?", false)},
	}
	for _, q := range queries {
		if err := q.query.Count(q.dest).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch contact stats!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Contact stats fetched successfully!", fiber.Map{
		"total":     total,
		"today":     today,
		"this_week": thisWeek,
		"unreplied": unreplied,
	})
}
