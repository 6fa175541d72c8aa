package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StudentProfile exists iff the student is assigned to a teacher.
type StudentProfile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	TeacherID uuid.UUID `gorm:"type:uuid;index;not null" json:"teacher_id"`
	VoiceType *string   `gorm:"size:50" json:"voice_type"`
	Level     *string   `gorm:"size:50" json:"level"`
	Goals     *string   `gorm:"type:text" json:"goals"`
	StartDate time.Time `json:"start_date"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	User    *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Teacher *User `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
}

func (p *StudentProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PreRegistration is a teacher-created placeholder keyed by phone. It is
// consumed when a student signs up with the same phone number.
type PreRegistration struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TeacherID        uuid.UUID  `gorm:"type:uuid;not null" json:"teacher_id"`
	StudentName      string     `gorm:"size:100;not null" json:"student_name"`
	StudentPhone     string     `gorm:"size:30;not null" json:"student_phone"`
	VoiceType        *string    `gorm:"size:50" json:"voice_type"`
	Level            *string    `gorm:"size:50" json:"level"`
	Goals            *string    `gorm:"type:text" json:"goals"`
	StartDate        time.Time  `json:"start_date"`
	IsRegistered     bool       `gorm:"not null;default:false" json:"is_registered"`
	RegisteredUserID *uuid.UUID `gorm:"type:uuid" json:"registered_user_id,omitempty"`
	RegisteredAt     *time.Time `json:"registered_at,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PreRegistration) TableName() string {
	return "student_pre_registrations"
}

func (p *PreRegistration) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ToProfile builds the profile a matching signup receives.
func (p *PreRegistration) ToProfile(userID uuid.UUID) *StudentProfile {
	return &StudentProfile{
		UserID:    userID,
		TeacherID: p.TeacherID,
		VoiceType: p.VoiceType,
		Level:     p.Level,
		Goals:     p.Goals,
		StartDate: p.StartDate,
		IsActive:  true,
	}
}

// Consume marks the registration as used by userID.
func (p *PreRegistration) Consume(userID uuid.UUID, now time.Time) {
	p.IsRegistered = true
	p.RegisteredUserID = &userID
	p.RegisteredAt = &now
}
