package models

import (
	"math"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

var PaymentStatuses = []string{PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded}

type CompletedLesson struct {
	LessonID    uint      `json:"lesson_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// Enrollment links one user to one course. (user_id, course_id) is unique.
type Enrollment struct {
	gorm.Model
	UserID           uint                                 `json:"user_id" gorm:"uniqueIndex:idx_enrollment_user_course;not null"`
	CourseID         uint                                 `json:"course_id" gorm:"uniqueIndex:idx_enrollment_user_course;index;not null"`
	Course           *Course                              `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Progress         int                                  `json:"progress" gorm:"default:0"` // 0-100
	CompletedLessons datatypes.JSONSlice[CompletedLesson] `json:"completed_lessons"`
	PaymentStatus    string                               `json:"payment_status" gorm:"default:'pending'"`
	LastAccessedAt   time.Time                            `json:"last_accessed_at"`
}

func (e *Enrollment) HasCompleted(lessonID uint) bool {
	for _, l := range e.CompletedLessons {
		if l.LessonID == lessonID {
			return true
		}
	}
	return false
}

// CompleteLesson records lessonID once. It reports whether anything changed.
func (e *Enrollment) CompleteLesson(lessonID uint, at time.Time) bool {
	if e.HasCompleted(lessonID) {
		return false
	}
	e.CompletedLessons = append(e.CompletedLessons, CompletedLesson{LessonID: lessonID, CompletedAt: at})
	return true
}

// ComputeProgress returns completed/total as a rounded percentage clamped to 0-100.
func ComputeProgress(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	p := int(math.Round(float64(completed) / float64(total) * 100))
	if p > 100 {
		return 100
	}
	return p
}

func IsPaymentStatus(status string) bool {
	for _, s := range PaymentStatuses {
		if s == status {
			return true
		}
	}
	return false
}
