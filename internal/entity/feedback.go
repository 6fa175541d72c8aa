package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StudentReactions is the fixed set of emoji a student may answer with.
var StudentReactions = []string{"👍", "😊", "🔥", "💪", "🙏"}

const MaxStudentMessageLength = 100

func IsValidReaction(r string) bool {
	for _, allowed := range StudentReactions {
		if r == allowed {
			return true
		}
	}
	return false
}

const (
	MinRating = 1
	MaxRating = 5
)

func IsValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

type Feedback struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	LessonID         uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"lesson_id"`
	TeacherID        uuid.UUID  `gorm:"type:uuid;not null" json:"teacher_id"`
	StudentID        uuid.UUID  `gorm:"type:uuid;not null" json:"student_id"`
	Rating           int        `gorm:"not null" json:"rating"`
	Content          string     `gorm:"type:text;not null" json:"content"`
	Strengths        *string    `gorm:"type:text" json:"strengths"`
	Improvements     *string    `gorm:"type:text" json:"improvements"`
	Homework         *string    `gorm:"type:text" json:"homework"`
	ReferenceURLs    []string   `gorm:"column:reference_urls;serializer:json;type:jsonb" json:"reference_urls"`
	StudentReaction  *string    `gorm:"size:16" json:"student_reaction"`
	StudentMessage   *string    `gorm:"size:100" json:"student_message"`
	StudentReactedAt *time.Time `json:"student_reacted_at"`
	ReactionViewedAt *time.Time `json:"reaction_viewed_at"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Lesson  *Lesson `gorm:"foreignKey:LessonID" json:"-"`
	Teacher *User   `gorm:"foreignKey:TeacherID" json:"-"`
	Student *User   `gorm:"foreignKey:StudentID" json:"-"`
}

func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.ReferenceURLs == nil {
		f.ReferenceURLs = []string{}
	}
	return nil
}

// ReactionUnviewed is true when the student reacted after the teacher last
// looked (or the teacher never looked).
func (f *Feedback) ReactionUnviewed() bool {
	if f.StudentReaction == nil || f.StudentReactedAt == nil {
		return false
	}
	return f.ReactionViewedAt == nil || f.ReactionViewedAt.Before(*f.StudentReactedAt)
}
