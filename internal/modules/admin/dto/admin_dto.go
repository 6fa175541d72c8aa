package dto

import (
	"time"

	"github.com/google/uuid"
	"vocalstudio.app/backend/internal/entity"
)

type AssignStudentInput struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
	TeacherID string `json:"teacher_id" binding:"required,uuid"`
}

type ReassignStudentInput struct {
	StudentProfileID string `json:"student_profile_id" binding:"required,uuid"`
	NewTeacherID     string `json:"new_teacher_id" binding:"required,uuid"`
}

type ListLessonsQuery struct {
	// Status is upcoming, past or a lesson status.
	Status string `form:"status"`
}

// Stats keeps the camelCase keys the admin console reads.
type Stats struct {
	TotalTeachers      int64 `json:"totalTeachers"`
	TotalStudents      int64 `json:"totalStudents"`
	ActiveStudents     int64 `json:"activeStudents"`
	UnassignedStudents int64 `json:"unassignedStudents"`
	TotalLessons       int64 `json:"totalLessons"`
	UpcomingLessons    int64 `json:"upcomingLessons"`
}

type TeacherLessonStat struct {
	TeacherID        uuid.UUID `json:"teacherId"`
	TeacherName      string    `json:"teacherName"`
	CompletedLessons int64     `json:"completedLessons"`
	ScheduledLessons int64     `json:"scheduledLessons"`
	TotalLessons     int64     `json:"totalLessons"`
}

type TeacherLessonStats struct {
	Month string              `json:"month"`
	Stats []TeacherLessonStat `json:"stats"`
}

type TeacherResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	IsAdmin   bool      `json:"is_admin"`
}

func NewTeacherResponse(u *entity.User) TeacherResponse {
	return TeacherResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		CreatedAt: u.CreatedAt,
		IsAdmin:   u.IsAdmin,
	}
}

type StudentProfileBrief struct {
	ID        uuid.UUID           `json:"id"`
	Teacher   *entity.UserSummary `json:"teacher"`
	VoiceType *string             `json:"voice_type"`
	Level     *string             `json:"level"`
	StartDate time.Time           `json:"start_date"`
	IsActive  bool                `json:"is_active"`
}

// StudentResponse is a student account with its assignment, if any.
type StudentResponse struct {
	ID        uuid.UUID            `json:"id"`
	Name      string               `json:"name"`
	Email     string               `json:"email"`
	Phone     *string              `json:"phone"`
	CreatedAt time.Time            `json:"created_at"`
	Profile   *StudentProfileBrief `json:"profile"`
}

func NewStudentResponse(u *entity.User) StudentResponse {
	res := StudentResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		CreatedAt: u.CreatedAt,
	}
	if p := u.Profile; p != nil && p.ID != uuid.Nil {
		res.Profile = &StudentProfileBrief{
			ID:        p.ID,
			Teacher:   p.Teacher.Summary(),
			VoiceType: p.VoiceType,
			Level:     p.Level,
			StartDate: p.StartDate,
			IsActive:  p.IsActive,
		}
	}
	return res
}
