package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"vocalstudio.app/backend/internal/entity"
	"vocalstudio.app/backend/internal/modules/lesson/dto"
	lessonRepo "vocalstudio.app/backend/internal/modules/lesson/repository"
	notifService "vocalstudio.app/backend/internal/modules/notification/service"
	"vocalstudio.app/backend/pkg/apperror"
	"vocalstudio.app/backend/pkg/database"
	commonDto "vocalstudio.app/backend/pkg/dto"
	"vocalstudio.app/backend/pkg/sanitizer"
)

// UserFinder resolves teacher and student ids referenced by a lesson.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

type LessonService interface {
	List(ctx context.Context, actor entity.Actor, query dto.ListLessonsQuery) ([]dto.LessonResponse, error)
	Get(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.LessonDetailResponse, error)
	GetFeedback(ctx context.Context, actor entity.Actor, id uuid.UUID) (*entity.Feedback, error)
	Create(ctx context.Context, actor entity.Actor, input dto.CreateLessonInput) (*dto.LessonResponse, error)
	Update(ctx context.Context, actor entity.Actor, id uuid.UUID, input dto.UpdateLessonInput) (*dto.LessonResponse, error)
	Cancel(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.CancelLessonResponse, error)
	Delete(ctx context.Context, actor entity.Actor, id uuid.UUID) error
}

type lessonService struct {
	repo     lessonRepo.LessonRepository
	users    UserFinder
	sweeper  Sweeper
	notifier notifService.Notifier
	now      func() time.Time
	log      *zap.Logger
}

func NewLessonService(
	repo lessonRepo.LessonRepository,
	users UserFinder,
	sweeper Sweeper,
	notifier notifService.Notifier,
	log *zap.Logger,
) LessonService {
	return &lessonService{
		repo:     repo,
		users:    users,
		sweeper:  sweeper,
		notifier: notifier,
		now:      time.Now,
		log:      log,
	}
}

func (s *lessonService) List(ctx context.Context, actor entity.Actor, query dto.ListLessonsQuery) ([]dto.LessonResponse, error) {
	scope := lessonRepo.ScopeFor(actor)
	if err := s.sweeper.Sweep(ctx, scope); err != nil {
		return nil, err
	}

	var filter lessonRepo.Filter
	if query.Status != "" {
		filter.Statuses = []entity.LessonStatus{entity.LessonStatus(query.Status)}
	}
	if query.FromDate != "" {
		from, err := commonDto.ParseDate(query.FromDate)
		if err != nil {
			return nil, apperror.BadRequest("Invalid from_date")
		}
		filter.From = &from
	}
	if query.ToDate != "" {
		to, err := commonDto.ParseDate(query.ToDate)
		if err != nil {
			return nil, apperror.BadRequest("Invalid to_date")
		}
		filter.To = &to
	}

	lessons, err := s.repo.List(ctx, scope, filter)
	if err != nil {
		return nil, err
	}

	res := make([]dto.LessonResponse, 0, len(lessons))
	for i := range lessons {
		res = append(res, dto.NewLessonResponse(&lessons[i]))
	}
	return res, nil
}

// findOwned returns the lesson only when actor takes part in it. Lessons
// of other users are reported as missing.
func (s *lessonService) findOwned(ctx context.Context, actor entity.Actor, id uuid.UUID) (*entity.Lesson, error) {
	lesson, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperror.NotFound("Lesson not found")
		}
		return nil, err
	}
	if !lesson.HasParticipant(actor.ID) {
		return nil, apperror.NotFound("Lesson not found")
	}
	return lesson, nil
}

// findTeaching is findOwned restricted to the lesson's teacher.
func (s *lessonService) findTeaching(ctx context.Context, actor entity.Actor, id uuid.UUID) (*entity.Lesson, error) {
	if !actor.IsTeacher() {
		return nil, apperror.Forbidden("Forbidden")
	}
	lesson, err := s.findOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if lesson.TeacherID != actor.ID {
		return nil, apperror.NotFound("Lesson not found")
	}
	return lesson, nil
}

func (s *lessonService) Get(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.LessonDetailResponse, error) {
	lesson, err := s.findOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	res := dto.NewLessonDetailResponse(lesson)
	return &res, nil
}

func (s *lessonService) GetFeedback(ctx context.Context, actor entity.Actor, id uuid.UUID) (*entity.Feedback, error) {
	lesson, err := s.findOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if lesson.Feedback == nil || lesson.Feedback.ID == uuid.Nil {
		return nil, apperror.NotFound("Feedback not found")
	}
	return lesson.Feedback, nil
}

func (s *lessonService) requireUser(ctx context.Context, id uuid.UUID, role entity.Role) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperror.NotFound("%s not found", role.Title())
		}
		return nil, err
	}
	if user.Role != role {
		return nil, apperror.NotFound("%s not found", role.Title())
	}
	return user, nil
}

func (s *lessonService) Create(ctx context.Context, actor entity.Actor, input dto.CreateLessonInput) (*dto.LessonResponse, error) {
	if !actor.IsTeacher() {
		return nil, apperror.Forbidden("Forbidden")
	}

	scheduledAt, ok, err := input.Schedule.Resolve()
	if err != nil {
		return nil, err
	}
	studentID, parseErr := uuid.Parse(input.StudentID)
	if !ok || parseErr != nil {
		return nil, apperror.BadRequest("Student ID and scheduled_at (or date and time) are required")
	}

	if _, err := s.requireUser(ctx, studentID, entity.RoleStudent); err != nil {
		return nil, err
	}

	duration := entity.DefaultLessonDuration
	if input.Duration != nil {
		duration = *input.Duration
	}

	lesson := &entity.Lesson{
		TeacherID:   actor.ID,
		StudentID:   studentID,
		Title:       sanitizer.Ptr(input.Title),
		ScheduledAt: scheduledAt,
		Duration:    duration,
		Location:    sanitizer.Ptr(input.Location),
		Notes:       sanitizer.Ptr(input.Notes),
		Status:      entity.LessonScheduled,
	}
	if err := s.repo.Create(ctx, lesson); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, studentID, entity.NotificationLessonCreated,
		"New lesson scheduled",
		fmt.Sprintf("%s is scheduled for %s", lessonName(lesson), formatWhen(lesson.ScheduledAt)),
		&lesson.ID,
	)

	res := dto.NewLessonResponse(lesson)
	return &res, nil
}

func (s *lessonService) Update(ctx context.Context, actor entity.Actor, id uuid.UUID, input dto.UpdateLessonInput) (*dto.LessonResponse, error) {
	lesson, err := s.findTeaching(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	oldTeacherID := lesson.TeacherID

	fields := map[string]any{"updated_at": s.now()}

	if input.Title != nil {
		fields["title"] = sanitizer.Ptr(input.Title)
	}
	if input.Location != nil {
		fields["location"] = sanitizer.Ptr(input.Location)
	}
	if input.Notes != nil {
		fields["notes"] = sanitizer.Ptr(input.Notes)
	}
	if input.Duration != nil {
		fields["duration"] = *input.Duration
	}

	scheduledAt, ok, err := input.Schedule.Resolve()
	if err != nil {
		return nil, err
	}
	if ok {
		fields["scheduled_at"] = scheduledAt
	}

	if input.Status != nil {
		next := entity.LessonStatus(*input.Status)
		if !entity.CanTransition(lesson.Status, next) {
			return nil, apperror.BadRequest("Cannot change lesson status from %s to %s", lesson.Status, next)
		}
		fields["status"] = next
	}

	if input.StudentID != nil {
		studentID, err := uuid.Parse(*input.StudentID)
		if err != nil {
			return nil, apperror.BadRequest("Invalid student_id")
		}
		if studentID != lesson.StudentID {
			if _, err := s.requireUser(ctx, studentID, entity.RoleStudent); err != nil {
				return nil, err
			}
		}
		fields["student_id"] = studentID
	}

	var newTeacher *entity.User
	if input.TeacherID != nil {
		teacherID, err := uuid.Parse(*input.TeacherID)
		if err != nil {
			return nil, apperror.BadRequest("Invalid teacher_id")
		}
		if teacherID != oldTeacherID {
			newTeacher, err = s.requireUser(ctx, teacherID, entity.RoleTeacher)
			if err != nil {
				return nil, err
			}
			fields["teacher_id"] = teacherID
		}
	}

	if err := s.repo.Update(ctx, lesson.ID, fields); err != nil {
		return nil, err
	}

	updated, err := s.repo.FindByID(ctx, lesson.ID)
	if err != nil {
		return nil, err
	}

	s.notifyUpdate(ctx, updated, oldTeacherID, newTeacher)

	res := dto.NewLessonResponse(updated)
	return &res, nil
}

// notifyUpdate sends three teacher_changed notifications when the lesson
// moved to another teacher and two lesson_updated ones otherwise.
func (s *lessonService) notifyUpdate(ctx context.Context, l *entity.Lesson, oldTeacherID uuid.UUID, newTeacher *entity.User) {
	name := lessonName(l)
	when := formatWhen(l.ScheduledAt)

	if newTeacher != nil {
		s.notifier.Notify(ctx, newTeacher.ID, entity.NotificationTeacherChanged,
			"Lesson assigned to you",
			fmt.Sprintf("%s on %s is now yours to teach", name, when), &l.ID)
		s.notifier.Notify(ctx, oldTeacherID, entity.NotificationTeacherChanged,
			"Lesson reassigned",
			fmt.Sprintf("%s on %s was handed over to %s", name, when, newTeacher.Name), &l.ID)
		s.notifier.Notify(ctx, l.StudentID, entity.NotificationTeacherChanged,
			"Your teacher changed",
			fmt.Sprintf("%s on %s will be taught by %s", name, when, newTeacher.Name), &l.ID)
		return
	}

	msg := fmt.Sprintf("%s on %s was updated", name, when)
	s.notifier.Notify(ctx, l.TeacherID, entity.NotificationLessonUpdated, "Lesson updated", msg, &l.ID)
	s.notifier.Notify(ctx, l.StudentID, entity.NotificationLessonUpdated, "Lesson updated", msg, &l.ID)
}

func (s *lessonService) Cancel(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.CancelLessonResponse, error) {
	lesson, err := s.findTeaching(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if lesson.Status != entity.LessonScheduled {
		return nil, apperror.BadRequest("Only scheduled lessons can be cancelled")
	}

	if err := s.repo.Update(ctx, lesson.ID, map[string]any{
		"status":     entity.LessonCancelled,
		"updated_at": s.now(),
	}); err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("%s on %s was cancelled", lessonName(lesson), formatWhen(lesson.ScheduledAt))
	s.notifier.Notify(ctx, lesson.TeacherID, entity.NotificationLessonCancelled, "Lesson cancelled", msg, &lesson.ID)
	s.notifier.Notify(ctx, lesson.StudentID, entity.NotificationLessonCancelled, "Lesson cancelled", msg, &lesson.ID)

	return &dto.CancelLessonResponse{ID: lesson.ID, Status: entity.LessonCancelled}, nil
}

func (s *lessonService) Delete(ctx context.Context, actor entity.Actor, id uuid.UUID) error {
	lesson, err := s.findTeaching(ctx, actor, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, lesson.ID)
}

func lessonName(l *entity.Lesson) string {
	if l.Title != nil && *l.Title != "" {
		return fmt.Sprintf("Lesson %q", *l.Title)
	}
	return "Lesson"
}

func formatWhen(t time.Time) string {
	return t.UTC().Format("Jan 2, 2006 15:04 MST")
}
