package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// Course is a priced set of lessons owned by an instructor.
// Unapproved or unpublished courses are hidden from the public listing.
type Course struct {
	gorm.Model
	Title        string                      `json:"title" gorm:"not null"`
	Description  string                      `json:"description" gorm:"type:text"`
	Category     string                      `json:"category" gorm:"index"`
	Level        string                      `json:"level" gorm:"default:'beginner'"`
	Price        float64                     `json:"price" gorm:"default:0"`
	Thumbnail    string                      `json:"thumbnail"`
	Tags         datatypes.JSONSlice[string] `json:"tags"`
	InstructorID uint                        `json:"instructor_id" gorm:"index;not null"`
	Instructor   *User                       `json:"instructor,omitempty" gorm:"foreignKey:InstructorID"`
	Lessons      []Lesson                    `json:"lessons" gorm:"foreignKey:CourseID"`
	Approved     bool                        `json:"approved" gorm:"index;default:false"`
	Published    bool                        `json:"published" gorm:"index;default:false"`
}

// Lesson belongs to a course; Order is its position within the course.
type Lesson struct {
	gorm.Model
	CourseID uint   `json:"course_id" gorm:"index;not null"`
	Title    string `json:"title" gorm:"not null"`
	Content  string `json:"content" gorm:"type:text"`
	VideoURL string `json:"video_url"`
	Duration int    `json:"duration" gorm:"default:0"` // minutes
	Order    int    `json:"order" gorm:"default:0"`
}

func (c *Course) IsFree() bool {
	return c.Price <= 0
}

// IsPublic reports whether anonymous users may see the course.
func (c *Course) IsPublic() bool {
	return c.Approved && c.Published
}

func (c *Course) HasLesson(lessonID uint) bool {
	for _, l := range c.Lessons {
		if l.ID == lessonID {
			return true
		}
	}
	return false
}
