package webinarController

import (
	"errors"
	"net/http"
	"time"

	"learnhub/database"
	"learnhub/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RegistrationError is a rejected webinar registration with the HTTP status to report.
type RegistrationError struct {
	Status  int
	Message string
	Outcome string
}

func (e *RegistrationError) Error() string {
	return e.Message
}

var (
	ErrWebinarNotFound   = &RegistrationError{http.StatusNotFound, "Webinar not found", "not_found"}
	ErrWebinarCancelled  = &RegistrationError{http.StatusBadRequest, "This webinar has been cancelled", "cancelled"}
	ErrWebinarStarted    = &RegistrationError{http.StatusBadRequest, "This webinar has already started or ended", "started"}
	ErrWebinarFull       = &RegistrationError{http.StatusBadRequest, "Webinar has reached maximum capacity", "full"}
	ErrAlreadyRegistered = &RegistrationError{http.StatusBadRequest, "Already registered for this webinar", "duplicate"}
)

// CheckRegistration decides whether userID may join webinar at now.
// Checks run in a fixed order and the first failure wins.
func CheckRegistration(webinar *models.Webinar, userID uint, now time.Time) error {
	switch {
	case webinar == nil:
		return ErrWebinarNotFound
	case webinar.Status == models.WebinarCancelled:
		return ErrWebinarCancelled
	case !webinar.StartTime.After(now):
		return ErrWebinarStarted
	case len(webinar.Attendees) >= webinar.MaxAttendees:
		return ErrWebinarFull
	case webinar.HasAttendee(userID):
		return ErrAlreadyRegistered
	}
	return nil
}

// RegisterAttendee adds userID to the webinar. The lookup, the checks and the
// insert share one transaction. Outside sqlite the webinar row is locked FOR
// UPDATE so concurrent registrations for the last seat are serialized.
func RegisterAttendee(db *gorm.DB, webinarID, userID uint, now time.Time) error {
	return db.Transaction(func(tx *gorm.DB) error {
		query := tx
		if tx.Dialector.Name() != "sqlite" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var webinar models.Webinar
		if err := query.First(&webinar, webinarID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWebinarNotFound
			}
			return err
		}
		if err := tx.Model(&webinar).Association("Attendees").Find(&webinar.Attendees); err != nil {
			return err
		}

		if err := CheckRegistration(&webinar, userID, now); err != nil {
			return err
		}

		err := tx.Create(&models.WebinarAttendee{WebinarID: webinar.ID, UserID: userID, CreatedAt: now}).Error
		if errors.Is(database.WrapError(err), database.ErrDuplicate) {
			return ErrAlreadyRegistered
		}
		return err
	})
}
