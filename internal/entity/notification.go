package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationLessonCreated    NotificationType = "lesson_created"
	NotificationLessonUpdated    NotificationType = "lesson_updated"
	NotificationLessonCancelled  NotificationType = "lesson_cancelled"
	NotificationTeacherChanged   NotificationType = "teacher_changed"
	NotificationFeedbackReceived NotificationType = "feedback_received"
)

type Notification struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Type            NotificationType `gorm:"size:30;not null" json:"type"`
	Title           string           `gorm:"size:200;not null" json:"title"`
	Message         string           `gorm:"type:text;not null" json:"message"`
	RelatedLessonID *uuid.UUID       `gorm:"type:uuid" json:"related_lesson_id"`
	IsRead          bool             `gorm:"not null;default:false" json:"is_read"`
	CreatedAt       time.Time        `gorm:"autoCreateTime" json:"created_at"`

	Lesson *Lesson `gorm:"foreignKey:RelatedLessonID" json:"lesson,omitempty"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
