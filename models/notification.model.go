package models

import "time"

const (
	NotificationContact = "contact"
	NotificationWebinar = "webinar"
	NotificationOther   = "other"
)

// Notification is an in-app message for one user. It is stored either in the SQL
// database or in MongoDB, so it carries both gorm and bson tags.
type Notification struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36" bson:"_id"`
	UserID       uint      `json:"user_id" gorm:"index;not null" bson:"user_id"`
	Title        string    `json:"title" bson:"title"`
	Message      string    `json:"message" gorm:"type:text" bson:"message"`
	Type         string    `json:"type" gorm:"default:'other'" bson:"type"`
	RelatedID    uint      `json:"related_id" bson:"related_id"`
	RelatedModel string    `json:"related_model" bson:"related_model"`
	Read         bool      `json:"read" gorm:"default:false" bson:"read"`
	CreatedAt    time.Time `json:"created_at" gorm:"index" bson:"created_at"`
}
