package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LessonStatus string

const (
	LessonScheduled LessonStatus = "scheduled"
	LessonCompleted LessonStatus = "completed"
	LessonCancelled LessonStatus = "cancelled"
)

const DefaultLessonDuration = 60

func (s LessonStatus) Valid() bool {
	switch s {
	case LessonScheduled, LessonCompleted, LessonCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s LessonStatus) Terminal() bool {
	return s == LessonCompleted || s == LessonCancelled
}

// CanTransition allows scheduled -> completed|cancelled and same-state
// writes. Completed and cancelled are absorbing.
func CanTransition(from, to LessonStatus) bool {
	if !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	return from == LessonScheduled && to.Terminal()
}

type Lesson struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	TeacherID   uuid.UUID    `gorm:"type:uuid;not null" json:"teacher_id"`
	StudentID   uuid.UUID    `gorm:"type:uuid;not null" json:"student_id"`
	Title       *string      `gorm:"size:200" json:"title"`
	ScheduledAt time.Time    `gorm:"not null" json:"scheduled_at"`
	Duration    int          `gorm:"not null;default:60" json:"duration"`
	Location    *string      `gorm:"size:200" json:"location"`
	Notes       *string      `gorm:"type:text" json:"notes"`
	Status      LessonStatus `gorm:"size:20;not null;default:scheduled" json:"status"`
	CreatedAt   time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"autoUpdateTime" json:"updated_at"`

	Teacher  *User     `gorm:"foreignKey:TeacherID" json:"-"`
	Student  *User     `gorm:"foreignKey:StudentID" json:"-"`
	Feedback *Feedback `gorm:"foreignKey:LessonID" json:"-"`
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// EndsAt is scheduled_at + duration minutes.
func (l *Lesson) EndsAt() time.Time {
	return l.ScheduledAt.Add(time.Duration(l.Duration) * time.Minute)
}

// Advance returns the status the lesson should have at now. Only a
// scheduled lesson whose end time has passed moves, and it moves to
// completed.
func Advance(l *Lesson, now time.Time) LessonStatus {
	if l.Status == LessonScheduled && l.EndsAt().Before(now) {
		return LessonCompleted
	}
	return l.Status
}

// HasParticipant reports whether userID is the lesson's teacher or student.
func (l *Lesson) HasParticipant(userID uuid.UUID) bool {
	return l.TeacherID == userID || l.StudentID == userID
}
