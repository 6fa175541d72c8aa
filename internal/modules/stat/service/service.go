package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"vocalstudio.app/backend/internal/entity"
	feedbackDto "vocalstudio.app/backend/internal/modules/feedback/dto"
	feedbackRepo "vocalstudio.app/backend/internal/modules/feedback/repository"
	lessonDto "vocalstudio.app/backend/internal/modules/lesson/dto"
	lessonRepo "vocalstudio.app/backend/internal/modules/lesson/repository"
	lessonService "vocalstudio.app/backend/internal/modules/lesson/service"
	"vocalstudio.app/backend/internal/modules/stat/dto"
	studentRepo "vocalstudio.app/backend/internal/modules/student/repository"
	"vocalstudio.app/backend/pkg/apperror"
	"vocalstudio.app/backend/pkg/database"
)

const (
	statsListSize     = 5
	dashboardListSize = 3
)

type LessonReader interface {
	List(ctx context.Context, scope lessonRepo.Scope, filter lessonRepo.Filter) ([]entity.Lesson, error)
	Count(ctx context.Context, scope lessonRepo.Scope, filter lessonRepo.Filter) (int64, error)
}

type FeedbackReader interface {
	List(ctx context.Context, filter feedbackRepo.Filter) ([]entity.Feedback, error)
	Count(ctx context.Context, filter feedbackRepo.Filter) (int64, error)
	AverageRating(ctx context.Context, filter feedbackRepo.Filter) (float64, error)
}

type ProfileReader interface {
	FindProfileByUser(ctx context.Context, userID uuid.UUID) (*entity.StudentProfile, error)
	ListProfiles(ctx context.Context, filter studentRepo.ProfileFilter) ([]entity.StudentProfile, error)
	CountProfiles(ctx context.Context, filter studentRepo.ProfileFilter) (int64, error)
}

type StatService interface {
	TeacherStats(ctx context.Context, teacherID uuid.UUID) (*dto.TeacherStats, error)
	StudentStats(ctx context.Context, studentID uuid.UUID) (*dto.StudentStats, error)
	StudentDashboard(ctx context.Context, studentID uuid.UUID) (*dto.StudentDashboard, error)
	StudentProfile(ctx context.Context, studentID uuid.UUID) (*dto.StudentProfileResponse, error)
}

type statService struct {
	lessons   LessonReader
	feedbacks FeedbackReader
	profiles  ProfileReader
	sweeper   lessonService.Sweeper
	now       func() time.Time
}

func NewStatService(
	lessons LessonReader,
	feedbacks FeedbackReader,
	profiles ProfileReader,
	sweeper lessonService.Sweeper,
) StatService {
	return &statService{
		lessons:   lessons,
		feedbacks: feedbacks,
		profiles:  profiles,
		sweeper:   sweeper,
		now:       time.Now,
	}
}

// upcoming is a scheduled lesson that has not started yet.
func (s *statService) upcoming(limit int) lessonRepo.Filter {
	now := s.now()
	return lessonRepo.Filter{
		Statuses:  []entity.LessonStatus{entity.LessonScheduled},
		From:      &now,
		Ascending: true,
		Limit:     limit,
	}
}

func (s *statService) TeacherStats(ctx context.Context, teacherID uuid.UUID) (*dto.TeacherStats, error) {
	scope := lessonRepo.TeacherScope(teacherID)
	if err := s.sweeper.Sweep(ctx, scope); err != nil {
		return nil, err
	}

	res := &dto.TeacherStats{}
	var err error

	roster := studentRepo.ProfileFilter{TeacherID: teacherID}
	if res.TotalStudents, err = s.profiles.CountProfiles(ctx, roster); err != nil {
		return nil, err
	}
	if res.UpcomingLessons, err = s.lessons.Count(ctx, scope, s.upcoming(0)); err != nil {
		return nil, err
	}
	res.PendingFeedback, err = s.lessons.Count(ctx, scope, lessonRepo.Filter{
		Statuses:        []entity.LessonStatus{entity.LessonCompleted},
		WithoutFeedback: true,
	})
	if err != nil {
		return nil, err
	}

	roster.RecentFirst = true
	roster.Limit = statsListSize
	profiles, err := s.profiles.ListProfiles(ctx, roster)
	if err != nil {
		return nil, err
	}
	res.RecentStudents = make([]dto.RecentStudent, 0, len(profiles))
	for _, p := range profiles {
		item := dto.RecentStudent{ID: p.ID, VoiceType: p.VoiceType, Level: p.Level}
		if p.User != nil {
			item.Name = p.User.Name
		}
		res.RecentStudents = append(res.RecentStudents, item)
	}

	lessons, err := s.lessons.List(ctx, scope, s.upcoming(statsListSize))
	if err != nil {
		return nil, err
	}
	res.UpcomingLessonsList = make([]dto.TeacherUpcomingLesson, 0, len(lessons))
	for _, l := range lessons {
		item := dto.TeacherUpcomingLesson{ID: l.ID, ScheduledAt: l.ScheduledAt, Duration: l.Duration}
		if l.Student != nil {
			item.StudentName = l.Student.Name
		}
		res.UpcomingLessonsList = append(res.UpcomingLessonsList, item)
	}

	return res, nil
}

func (s *statService) StudentStats(ctx context.Context, studentID uuid.UUID) (*dto.StudentStats, error) {
	scope := lessonRepo.StudentScope(studentID)
	if err := s.sweeper.Sweep(ctx, scope); err != nil {
		return nil, err
	}

	res := &dto.StudentStats{}

	profile, err := s.profiles.FindProfileByUser(ctx, studentID)
	switch {
	case err == nil:
		res.Profile = dto.ProfileBrief{VoiceType: profile.VoiceType, Level: profile.Level}
	case !database.IsNotFound(err):
		return nil, err
	}

	if res.UpcomingLessons, err = s.lessons.Count(ctx, scope, s.upcoming(0)); err != nil {
		return nil, err
	}

	own := feedbackRepo.Filter{StudentID: studentID}
	if res.TotalFeedback, err = s.feedbacks.Count(ctx, own); err != nil {
		return nil, err
	}

	own.Limit = statsListSize
	feedbacks, err := s.feedbacks.List(ctx, own)
	if err != nil {
		return nil, err
	}
	res.RecentFeedback = make([]dto.RecentFeedback, 0, len(feedbacks))
	for _, f := range feedbacks {
		res.RecentFeedback = append(res.RecentFeedback, dto.RecentFeedback{
			ID:        f.ID,
			Rating:    f.Rating,
			Content:   f.Content,
			CreatedAt: f.CreatedAt,
		})
	}

	lessons, err := s.lessons.List(ctx, scope, s.upcoming(statsListSize))
	if err != nil {
		return nil, err
	}
	res.UpcomingLessonsList = make([]dto.StudentUpcomingLesson, 0, len(lessons))
	for _, l := range lessons {
		item := dto.StudentUpcomingLesson{
			ID:          l.ID,
			ScheduledAt: l.ScheduledAt,
			Duration:    l.Duration,
			Location:    l.Location,
		}
		if l.Teacher != nil {
			item.TeacherName = l.Teacher.Name
		}
		res.UpcomingLessonsList = append(res.UpcomingLessonsList, item)
	}

	return res, nil
}

func (s *statService) StudentDashboard(ctx context.Context, studentID uuid.UUID) (*dto.StudentDashboard, error) {
	scope := lessonRepo.StudentScope(studentID)
	if err := s.sweeper.Sweep(ctx, scope); err != nil {
		return nil, err
	}

	res := &dto.StudentDashboard{}

	profile, err := s.profiles.FindProfileByUser(ctx, studentID)
	switch {
	case err == nil:
		res.Profile = dto.NewStudentProfileResponse(profile)
	case !database.IsNotFound(err):
		return nil, err
	}

	if res.Stats.TotalLessons, err = s.lessons.Count(ctx, scope, lessonRepo.Filter{}); err != nil {
		return nil, err
	}
	res.Stats.CompletedLessons, err = s.lessons.Count(ctx, scope, lessonRepo.Filter{
		Statuses: []entity.LessonStatus{entity.LessonCompleted},
	})
	if err != nil {
		return nil, err
	}
	res.Stats.ScheduledLessons, err = s.lessons.Count(ctx, scope, lessonRepo.Filter{
		Statuses: []entity.LessonStatus{entity.LessonScheduled},
	})
	if err != nil {
		return nil, err
	}

	own := feedbackRepo.Filter{StudentID: studentID}
	if res.Stats.TotalFeedbacks, err = s.feedbacks.Count(ctx, own); err != nil {
		return nil, err
	}
	if res.Stats.AverageRating, err = s.feedbacks.AverageRating(ctx, own); err != nil {
		return nil, err
	}

	lessons, err := s.lessons.List(ctx, scope, s.upcoming(dashboardListSize))
	if err != nil {
		return nil, err
	}
	res.UpcomingLessons = make([]lessonDto.LessonResponse, 0, len(lessons))
	for i := range lessons {
		res.UpcomingLessons = append(res.UpcomingLessons, lessonDto.NewLessonResponse(&lessons[i]))
	}

	own.Limit = dashboardListSize
	feedbacks, err := s.feedbacks.List(ctx, own)
	if err != nil {
		return nil, err
	}
	res.RecentFeedbacks = feedbackDto.NewFeedbackResponses(feedbacks)

	return res, nil
}

func (s *statService) StudentProfile(ctx context.Context, studentID uuid.UUID) (*dto.StudentProfileResponse, error) {
	profile, err := s.profiles.FindProfileByUser(ctx, studentID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperror.NotFound("Student profile not found")
		}
		return nil, err
	}
	return dto.NewStudentProfileResponse(profile), nil
}
