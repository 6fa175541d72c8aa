package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the closed set of account kinds. Admin is a flag on top of a
// teacher account, not a role of its own.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

func (r Role) Valid() bool {
	switch r {
	case RoleTeacher, RoleStudent:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Title is the capitalized role name used in messages.
func (r Role) Title() string {
	switch r {
	case RoleTeacher:
		return "Teacher"
	case RoleStudent:
		return "Student"
	}
	return string(r)
}

type User struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string          `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password  string          `gorm:"size:255;not null" json:"-"`
	Name      string          `gorm:"size:100;not null" json:"name"`
	Role      Role            `gorm:"size:20;not null" json:"role"`
	Phone     *string         `gorm:"size:30;uniqueIndex" json:"phone,omitempty"`
	Avatar    *string         `gorm:"type:text" json:"avatar,omitempty"`
	IsAdmin   bool            `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	Profile   *StudentProfile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u *User) IsStudent() bool { return u.Role == RoleStudent }

// UserSummary is the trimmed user shape embedded in lesson, feedback and
// file responses.
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email,omitempty"`
	Phone *string   `json:"phone,omitempty"`
}

func (u *User) Summary() *UserSummary {
	if u == nil || u.ID == uuid.Nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
}

// NormalizePhone drops spaces, dashes, dots and parentheses so the same
// number typed two ways still matches. An empty result means no phone.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch r {
		case ' ', '-', '.', '(', ')':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Actor is the authenticated caller as seen by the services.
type Actor struct {
	ID      uuid.UUID
	Role    Role
	IsAdmin bool
}

func (a Actor) IsTeacher() bool { return a.Role == RoleTeacher }
func (a Actor) IsStudent() bool { return a.Role == RoleStudent }
