package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

const (
	UserStatusActive    = "active"
	UserStatusPending   = "pending"
	UserStatusSuspended = "suspended"
)

type User struct {
	gorm.Model
	Name         string     `json:"name" gorm:"not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;not null"`
	Password     string     `json:"-" gorm:"not null"`
	Role         string     `json:"role" gorm:"index;default:'student'"` // student, instructor, admin
	Status       string     `json:"status" gorm:"default:'active'"`      // active, pending, suspended
	ProfileImage string     `json:"profile_image" gorm:"default:''"`
	Bio          string     `json:"bio" gorm:"type:text"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsInstructor reports whether the user may run instructor routes. Admins qualify.
func (u *User) IsInstructor() bool {
	return u.Role == RoleInstructor || u.Role == RoleAdmin
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// InitialStatus is the status a newly registered account gets for role.
// Elevated roles wait for an admin.
func InitialStatus(role string) string {
	if role == RoleStudent || role == "" {
		return UserStatusActive
	}
	return UserStatusPending
}
