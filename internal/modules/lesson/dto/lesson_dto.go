package dto

import (
	"time"

	"github.com/google/uuid"
	"vocalstudio.app/backend/internal/entity"
	"vocalstudio.app/backend/pkg/apperror"
	commonDto "vocalstudio.app/backend/pkg/dto"
)

type ListLessonsQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=scheduled completed cancelled"`
	FromDate string `form:"from_date"`
	ToDate   string `form:"to_date"`
}

// Schedule is the shared way to give a lesson time: either scheduled_at, or
// date plus time.
type Schedule struct {
	ScheduledAt *string `json:"scheduled_at"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
}

// Resolve returns the requested start, or ok=false when none was given.
func (s Schedule) Resolve() (t time.Time, ok bool, err error) {
	if s.ScheduledAt != nil && *s.ScheduledAt != "" {
		t, err = commonDto.ParseDate(*s.ScheduledAt)
		if err != nil {
			return time.Time{}, false, apperror.BadRequest("Invalid scheduled_at")
		}
		return t, true, nil
	}
	if s.Date != nil && s.Time != nil && *s.Date != "" && *s.Time != "" {
		t, err = commonDto.CombineDateTime(*s.Date, *s.Time)
		if err != nil {
			return time.Time{}, false, apperror.BadRequest("Invalid date or time")
		}
		return t, true, nil
	}
	return time.Time{}, false, nil
}

type CreateLessonInput struct {
	StudentID string  `json:"student_id" binding:"required,uuid"`
	Title     *string `json:"title" binding:"omitempty,max=200"`
	Schedule
	Duration *int    `json:"duration" binding:"omitempty,min=1,max=600"`
	Location *string `json:"location" binding:"omitempty,max=200"`
	Notes    *string `json:"notes"`
}

type UpdateLessonInput struct {
	Title *string `json:"title" binding:"omitempty,max=200"`
	Schedule
	Duration  *int    `json:"duration" binding:"omitempty,min=1,max=600"`
	Location  *string `json:"location" binding:"omitempty,max=200"`
	Notes     *string `json:"notes"`
	Status    *string `json:"status" binding:"omitempty,oneof=scheduled completed cancelled"`
	StudentID *string `json:"student_id" binding:"omitempty,uuid"`
	TeacherID *string `json:"teacher_id" binding:"omitempty,uuid"`
}

type FeedbackSummary struct {
	ID               uuid.UUID  `json:"id"`
	Rating           int        `json:"rating"`
	StudentReaction  *string    `json:"student_reaction"`
	StudentMessage   *string    `json:"student_message"`
	StudentReactedAt *time.Time `json:"student_reacted_at"`
}

type LessonResponse struct {
	ID          uuid.UUID           `json:"id"`
	TeacherID   uuid.UUID           `json:"teacher_id"`
	StudentID   uuid.UUID           `json:"student_id"`
	Title       *string             `json:"title"`
	ScheduledAt time.Time           `json:"scheduled_at"`
	Duration    int                 `json:"duration"`
	Location    *string             `json:"location"`
	Notes       *string             `json:"notes"`
	Status      entity.LessonStatus `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Teacher     *entity.UserSummary `json:"teacher,omitempty"`
	Student     *entity.UserSummary `json:"student,omitempty"`
	Feedback    *FeedbackSummary    `json:"feedback"`
}

// LessonDetailResponse carries the full feedback instead of the summary.
type LessonDetailResponse struct {
	LessonResponse
	Feedback *entity.Feedback `json:"feedback"`
}

type CancelLessonResponse struct {
	ID     uuid.UUID           `json:"id"`
	Status entity.LessonStatus `json:"status"`
}

func NewLessonResponse(l *entity.Lesson) LessonResponse {
	res := LessonResponse{
		ID:          l.ID,
		TeacherID:   l.TeacherID,
		StudentID:   l.StudentID,
		Title:       l.Title,
		ScheduledAt: l.ScheduledAt,
		Duration:    l.Duration,
		Location:    l.Location,
		Notes:       l.Notes,
		Status:      l.Status,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
		Teacher:     l.Teacher.Summary(),
		Student:     l.Student.Summary(),
	}
	if f := l.Feedback; f != nil && f.ID != uuid.Nil {
		res.Feedback = &FeedbackSummary{
			ID:               f.ID,
			Rating:           f.Rating,
			StudentReaction:  f.StudentReaction,
			StudentMessage:   f.StudentMessage,
			StudentReactedAt: f.StudentReactedAt,
		}
	}
	return res
}

func NewLessonDetailResponse(l *entity.Lesson) LessonDetailResponse {
	res := LessonDetailResponse{LessonResponse: NewLessonResponse(l)}
	if l.Feedback != nil && l.Feedback.ID != uuid.Nil {
		res.Feedback = l.Feedback
	}
	return res
}
