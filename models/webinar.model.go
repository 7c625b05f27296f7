package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	WebinarScheduled = "scheduled"
	WebinarLive      = "live"
	WebinarCompleted = "completed"
	WebinarCancelled = "cancelled"
)

var WebinarStatuses = []string{WebinarScheduled, WebinarLive, WebinarCompleted, WebinarCancelled}

type Webinar struct {
	gorm.Model
	Title          string     `json:"title" gorm:"not null"`
	Description    string     `json:"description" gorm:"type:text;not null"`
	SpeakerID      uint       `json:"speaker_id" gorm:"index;not null"`
	Speaker        *User      `json:"speaker,omitempty" gorm:"foreignKey:SpeakerID"`
	StartTime      time.Time  `json:"start_time" gorm:"index;not null"`
	Duration       int        `json:"duration" gorm:"not null"` // minutes, 15-480
	Link           string     `json:"link" gorm:"not null"`
	RecordingURL   string     `json:"recording_url"`
	Attendees      []User     `json:"attendees" gorm:"many2many:webinar_attendees;"`
	MaxAttendees   int        `json:"max_attendees" gorm:"default:100"`
	Status         string     `json:"status" gorm:"index;default:'scheduled'"`
	ReminderSentAt *time.Time `json:"-"`
}

// WebinarAttendee is the join row behind Webinar.Attendees.
// The composite primary key forbids duplicate registrations.
type WebinarAttendee struct {
	WebinarID uint `gorm:"primaryKey"`
	UserID    uint `gorm:"primaryKey"`
	CreatedAt time.Time
}

func (WebinarAttendee) TableName() string {
	return "webinar_attendees"
}

func (w *Webinar) HasAttendee(userID uint) bool {
	for _, a := range w.Attendees {
		if a.ID == userID {
			return true
		}
	}
	return false
}

func (w *Webinar) EndTime() time.Time {
	return w.StartTime.Add(time.Duration(w.Duration) * time.Minute)
}

func IsWebinarStatus(status string) bool {
	for _, s := range WebinarStatuses {
		if s == status {
			return true
		}
	}
	return false
}
