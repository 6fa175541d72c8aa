package dto

import (
	"time"

	"github.com/google/uuid"
	"vocalstudio.app/backend/internal/entity"
)

type ListFeedbackQuery struct {
	StudentID string `form:"student_id" binding:"omitempty,uuid"`
}

type CreateFeedbackInput struct {
	LessonID      string   `json:"lesson_id" binding:"required,uuid"`
	StudentID     *string  `json:"student_id" binding:"omitempty,uuid"`
	Rating        *int     `json:"rating" binding:"required"`
	Content       string   `json:"content" binding:"required"`
	Strengths     *string  `json:"strengths"`
	Improvements  *string  `json:"improvements"`
	Homework      *string  `json:"homework"`
	ReferenceURLs []string `json:"reference_urls" binding:"omitempty,max=20,dive,url"`
}

type UpdateFeedbackInput struct {
	Rating        *int     `json:"rating"`
	Content       *string  `json:"content"`
	Strengths     *string  `json:"strengths"`
	Improvements  *string  `json:"improvements"`
	Homework      *string  `json:"homework"`
	ReferenceURLs []string `json:"reference_urls" binding:"omitempty,max=20,dive,url"`
}

type ReactionInput struct {
	Reaction string  `json:"reaction" binding:"required,reaction"`
	Message  *string `json:"message" binding:"omitempty,maxrunes=100"`
}

type LessonSummary struct {
	ID          uuid.UUID           `json:"id"`
	Title       *string             `json:"title"`
	ScheduledAt time.Time           `json:"scheduled_at"`
	Duration    int                 `json:"duration"`
	Status      entity.LessonStatus `json:"status"`
}

type FeedbackResponse struct {
	entity.Feedback
	ReactionUnviewed bool                `json:"reaction_unviewed"`
	Lesson           *LessonSummary      `json:"lesson,omitempty"`
	Teacher          *entity.UserSummary `json:"teacher,omitempty"`
	Student          *entity.UserSummary `json:"student,omitempty"`
}

func NewFeedbackResponse(f *entity.Feedback) FeedbackResponse {
	res := FeedbackResponse{
		Feedback:         *f,
		ReactionUnviewed: f.ReactionUnviewed(),
		Teacher:          f.Teacher.Summary(),
		Student:          f.Student.Summary(),
	}
	if res.Feedback.ReferenceURLs == nil {
		res.Feedback.ReferenceURLs = []string{}
	}
	if l := f.Lesson; l != nil && l.ID != uuid.Nil {
		res.Lesson = &LessonSummary{
			ID:          l.ID,
			Title:       l.Title,
			ScheduledAt: l.ScheduledAt,
			Duration:    l.Duration,
			Status:      l.Status,
		}
	}
	return res
}

func NewFeedbackResponses(feedbacks []entity.Feedback) []FeedbackResponse {
	res := make([]FeedbackResponse, 0, len(feedbacks))
	for i := range feedbacks {
		res = append(res, NewFeedbackResponse(&feedbacks[i]))
	}
	return res
}
