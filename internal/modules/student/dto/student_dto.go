package dto

import (
	"time"

	"github.com/google/uuid"
	"vocalstudio.app/backend/internal/entity"
)

type ListStudentsQuery struct {
	Search string `form:"search" binding:"omitempty,max=100"`
}

type AssignStudentInput struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
}

type CreateStudentInput struct {
	Name      string  `json:"name" binding:"required,max=100"`
	Phone     string  `json:"phone" binding:"required,max=30"`
	VoiceType *string `json:"voice_type" binding:"omitempty,max=50"`
	Level     *string `json:"level" binding:"omitempty,max=50"`
	StartDate *string `json:"start_date"`
	Goals     *string `json:"goals"`
}

type UpdateStudentInput struct {
	VoiceType *string `json:"voice_type" binding:"omitempty,max=50"`
	Level     *string `json:"level" binding:"omitempty,max=50"`
	Goals     *string `json:"goals"`
	IsActive  *bool   `json:"is_active"`
}

type UnassignedStudent struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUnassignedStudents(users []entity.User) []UnassignedStudent {
	res := make([]UnassignedStudent, 0, len(users))
	for _, u := range users {
		res = append(res, UnassignedStudent{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone, CreatedAt: u.CreatedAt})
	}
	return res
}

// StudentResponse is a roster entry. ID is the profile id.
type StudentResponse struct {
	ID        uuid.UUID           `json:"id"`
	User      *entity.UserSummary `json:"user"`
	Teacher   *entity.UserSummary `json:"teacher,omitempty"`
	VoiceType *string             `json:"voice_type"`
	Level     *string             `json:"level"`
	Goals     *string             `json:"goals"`
	StartDate time.Time           `json:"start_date"`
	IsActive  bool                `json:"is_active"`
}

func NewStudentResponse(p *entity.StudentProfile) StudentResponse {
	return StudentResponse{
		ID:        p.ID,
		User:      p.User.Summary(),
		Teacher:   p.Teacher.Summary(),
		VoiceType: p.VoiceType,
		Level:     p.Level,
		Goals:     p.Goals,
		StartDate: p.StartDate,
		IsActive:  p.IsActive,
	}
}

func NewStudentResponses(profiles []entity.StudentProfile) []StudentResponse {
	res := make([]StudentResponse, 0, len(profiles))
	for i := range profiles {
		res = append(res, NewStudentResponse(&profiles[i]))
	}
	return res
}

type StudentDetailResponse struct {
	StudentResponse
	TotalLessons     int64 `json:"total_lessons"`
	CompletedLessons int64 `json:"completed_lessons"`
	UpcomingLessons  int64 `json:"upcoming_lessons"`
}

type AssignStudentResponse struct {
	Message string          `json:"message"`
	Profile StudentResponse `json:"profile"`
}

type PreRegistrationResponse struct {
	entity.PreRegistration
	Message string `json:"message,omitempty"`
}
