package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"vocalstudio.app/backend/internal/entity"
	"vocalstudio.app/backend/internal/modules/feedback/dto"
	feedbackRepo "vocalstudio.app/backend/internal/modules/feedback/repository"
	notifService "vocalstudio.app/backend/internal/modules/notification/service"
	"vocalstudio.app/backend/pkg/apperror"
	"vocalstudio.app/backend/pkg/database"
	"vocalstudio.app/backend/pkg/sanitizer"
)

const duplicateFeedback = "Feedback already exists for this lesson"

// LessonFinder loads the lesson a feedback is written for.
type LessonFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Lesson, error)
}

type FeedbackService interface {
	List(ctx context.Context, actor entity.Actor, query dto.ListFeedbackQuery) ([]dto.FeedbackResponse, error)
	Get(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.FeedbackResponse, error)
	Create(ctx context.Context, actor entity.Actor, input dto.CreateFeedbackInput) (*dto.FeedbackResponse, error)
	Update(ctx context.Context, actor entity.Actor, id uuid.UUID, input dto.UpdateFeedbackInput) (*dto.FeedbackResponse, error)
	React(ctx context.Context, actor entity.Actor, id uuid.UUID, input dto.ReactionInput) (*dto.FeedbackResponse, error)
	ViewReaction(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.FeedbackResponse, error)
	UnviewedReactionsCount(ctx context.Context, actor entity.Actor) (int64, error)
}

type feedbackService struct {
	repo     feedbackRepo.FeedbackRepository
	lessons  LessonFinder
	notifier notifService.Notifier
	now      func() time.Time
	log      *zap.Logger
}

func NewFeedbackService(
	repo feedbackRepo.FeedbackRepository,
	lessons LessonFinder,
	notifier notifService.Notifier,
	log *zap.Logger,
) FeedbackService {
	return &feedbackService{
		repo:     repo,
		lessons:  lessons,
		notifier: notifier,
		now:      time.Now,
		log:      log,
	}
}

func (s *feedbackService) List(ctx context.Context, actor entity.Actor, query dto.ListFeedbackQuery) ([]dto.FeedbackResponse, error) {
	var filter feedbackRepo.Filter
	if actor.IsTeacher() {
		filter.TeacherID = actor.ID
		if query.StudentID != "" {
			studentID, err := uuid.Parse(query.StudentID)
			if err != nil {
				return nil, apperror.BadRequest("Invalid student_id")
			}
			filter.StudentID = studentID
		}
	} else {
		filter.StudentID = actor.ID
	}

	feedbacks, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewFeedbackResponses(feedbacks), nil
}

func (s *feedbackService) find(ctx context.Context, id uuid.UUID) (*entity.Feedback, error) {
	feedback, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperror.NotFound("Feedback not found")
		}
		return nil, err
	}
	return feedback, nil
}

// findAuthored returns feedback written by the calling teacher.
func (s *feedbackService) findAuthored(ctx context.Context, actor entity.Actor, id uuid.UUID) (*entity.Feedback, error) {
	if !actor.IsTeacher() {
		return nil, apperror.Forbidden("Forbidden")
	}
	feedback, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if feedback.TeacherID != actor.ID {
		return nil, apperror.NotFound("Feedback not found")
	}
	return feedback, nil
}

func (s *feedbackService) Get(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.FeedbackResponse, error) {
	feedback, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if feedback.TeacherID != actor.ID && feedback.StudentID != actor.ID {
		return nil, apperror.NotFound("Feedback not found")
	}
	res := dto.NewFeedbackResponse(feedback)
	return &res, nil
}

func (s *feedbackService) Create(ctx context.Context, actor entity.Actor, input dto.CreateFeedbackInput) (*dto.FeedbackResponse, error) {
	if !actor.IsTeacher() {
		return nil, apperror.Forbidden("Forbidden")
	}

	lessonID, err := uuid.Parse(input.LessonID)
	if err != nil {
		return nil, apperror.BadRequest("Invalid lesson_id")
	}
	lesson, err := s.lessons.FindByID(ctx, lessonID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperror.NotFound("Lesson not found")
		}
		return nil, err
	}
	if lesson.TeacherID != actor.ID {
		return nil, apperror.NotFound("Lesson not found")
	}
	if lesson.Status == entity.LessonCancelled {
		return nil, apperror.BadRequest("Cannot add feedback to a cancelled lesson")
	}
	if input.StudentID != nil && *input.StudentID != lesson.StudentID.String() {
		return nil, apperror.BadRequest("Student does not match the lesson")
	}
	if input.Rating == nil || !entity.IsValidRating(*input.Rating) {
		return nil, apperror.BadRequest("Rating must be between %d and %d", entity.MinRating, entity.MaxRating)
	}
	content := sanitizer.Text(input.Content)
	if content == "" {
		return nil, apperror.BadRequest("Content is required")
	}

	// Advisory only; the unique index on lesson_id is what actually holds.
	exists, err := s.repo.ExistsForLesson(ctx, lesson.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.BadRequest(duplicateFeedback)
	}

	feedback := &entity.Feedback{
		LessonID:      lesson.ID,
		TeacherID:     actor.ID,
		StudentID:     lesson.StudentID,
		Rating:        *input.Rating,
		Content:       content,
		Strengths:     sanitizer.Ptr(input.Strengths),
		Improvements:  sanitizer.Ptr(input.Improvements),
		Homework:      sanitizer.Ptr(input.Homework),
		ReferenceURLs: sanitizer.Slice(input.ReferenceURLs),
	}
	if err := s.repo.CreateAndCompleteLesson(ctx, feedback, s.now()); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.BadRequest(duplicateFeedback)
		}
		return nil, err
	}

	s.notifier.Notify(ctx, lesson.StudentID, entity.NotificationFeedbackReceived,
		"New feedback",
		fmt.Sprintf("You received feedback for %s on %s", lessonName(lesson), lesson.ScheduledAt.UTC().Format("Jan 2, 2006")),
		&lesson.ID,
	)

	feedback.Lesson = lesson
	res := dto.NewFeedbackResponse(feedback)
	return &res, nil
}

func (s *feedbackService) Update(ctx context.Context, actor entity.Actor, id uuid.UUID, input dto.UpdateFeedbackInput) (*dto.FeedbackResponse, error) {
	feedback, err := s.findAuthored(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{"updated_at": s.now()}
	if input.Rating != nil {
		if !entity.IsValidRating(*input.Rating) {
			return nil, apperror.BadRequest("Rating must be between %d and %d", entity.MinRating, entity.MaxRating)
		}
		fields["rating"] = *input.Rating
	}
	if input.Content != nil {
		content := sanitizer.Text(*input.Content)
		if content == "" {
			return nil, apperror.BadRequest("Content is required")
		}
		fields["content"] = content
	}
	if input.Strengths != nil {
		fields["strengths"] = sanitizer.Ptr(input.Strengths)
	}
	if input.Improvements != nil {
		fields["improvements"] = sanitizer.Ptr(input.Improvements)
	}
	if input.Homework != nil {
		fields["homework"] = sanitizer.Ptr(input.Homework)
	}
	if input.ReferenceURLs != nil {
		fields["reference_urls"] = sanitizer.Slice(input.ReferenceURLs)
	}

	if err := s.repo.Update(ctx, feedback.ID, fields); err != nil {
		return nil, err
	}
	return s.reload(ctx, feedback.ID)
}

func (s *feedbackService) React(ctx context.Context, actor entity.Actor, id uuid.UUID, input dto.ReactionInput) (*dto.FeedbackResponse, error) {
	if !actor.IsStudent() {
		return nil, apperror.Forbidden("Forbidden")
	}
	feedback, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if feedback.StudentID != actor.ID {
		return nil, apperror.NotFound("Feedback not found")
	}

	if !entity.IsValidReaction(input.Reaction) {
		return nil, apperror.BadRequest("Invalid reaction")
	}
	message := sanitizer.Ptr(input.Message)
	if message != nil && len([]rune(*message)) > entity.MaxStudentMessageLength {
		return nil, apperror.BadRequest("Message must be at most %d characters", entity.MaxStudentMessageLength)
	}

	now := s.now()
	if err := s.repo.Update(ctx, feedback.ID, map[string]any{
		"student_reaction":   input.Reaction,
		"student_message":    message,
		"student_reacted_at": now,
		"reaction_viewed_at": nil,
		"updated_at":         now,
	}); err != nil {
		return nil, err
	}
	return s.reload(ctx, feedback.ID)
}

func (s *feedbackService) ViewReaction(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.FeedbackResponse, error) {
	feedback, err := s.findAuthored(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, feedback.ID, map[string]any{"reaction_viewed_at": s.now()}); err != nil {
		return nil, err
	}
	return s.reload(ctx, feedback.ID)
}

func (s *feedbackService) UnviewedReactionsCount(ctx context.Context, actor entity.Actor) (int64, error) {
	if !actor.IsTeacher() {
		return 0, apperror.Forbidden("Forbidden")
	}
	return s.repo.CountUnviewedReactions(ctx, actor.ID)
}

func (s *feedbackService) reload(ctx context.Context, id uuid.UUID) (*dto.FeedbackResponse, error) {
	feedback, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	res := dto.NewFeedbackResponse(feedback)
	return &res, nil
}

func lessonName(l *entity.Lesson) string {
	if l.Title != nil && *l.Title != "" {
		return fmt.Sprintf("%q", *l.Title)
	}
	return "your lesson"
}
