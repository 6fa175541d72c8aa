package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"vocalstudio.app/backend/internal/entity"
	"vocalstudio.app/backend/internal/modules/admin/dto"
	lessonDto "vocalstudio.app/backend/internal/modules/lesson/dto"
	lessonRepo "vocalstudio.app/backend/internal/modules/lesson/repository"
	lessonService "vocalstudio.app/backend/internal/modules/lesson/service"
	notifService "vocalstudio.app/backend/internal/modules/notification/service"
	studentDto "vocalstudio.app/backend/internal/modules/student/dto"
	studentRepo "vocalstudio.app/backend/internal/modules/student/repository"
	"vocalstudio.app/backend/pkg/apperror"
	"vocalstudio.app/backend/pkg/database"
)

type UserReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	ListByRole(ctx context.Context, role entity.Role) ([]entity.User, error)
	CountByRole(ctx context.Context, role entity.Role) (int64, error)
}

type StudentReader interface {
	ListStudents(ctx context.Context) ([]entity.User, error)
	CountUnassigned(ctx context.Context) (int64, error)
	ListProfiles(ctx context.Context, filter studentRepo.ProfileFilter) ([]entity.StudentProfile, error)
	CountProfiles(ctx context.Context, filter studentRepo.ProfileFilter) (int64, error)
}

type LessonReader interface {
	List(ctx context.Context, scope lessonRepo.Scope, filter lessonRepo.Filter) ([]entity.Lesson, error)
	Count(ctx context.Context, scope lessonRepo.Scope, filter lessonRepo.Filter) (int64, error)
}

// StudentAssigner is implemented by the student service.
type StudentAssigner interface {
	Assign(ctx context.Context, teacherID, studentID uuid.UUID) (*studentDto.StudentResponse, error)
	Reassign(ctx context.Context, profileID, newTeacherID uuid.UUID) (*studentDto.StudentResponse, error)
}

type AdminService interface {
	Stats(ctx context.Context) (*dto.Stats, error)
	TeacherLessonStats(ctx context.Context) (*dto.TeacherLessonStats, error)
	Teachers(ctx context.Context) ([]dto.TeacherResponse, error)
	TeacherStudents(ctx context.Context, teacherID uuid.UUID) ([]studentDto.StudentResponse, error)
	Students(ctx context.Context) ([]dto.StudentResponse, error)
	AssignStudent(ctx context.Context, input dto.AssignStudentInput) (*studentDto.StudentResponse, error)
	ReassignStudent(ctx context.Context, input dto.ReassignStudentInput) (*studentDto.StudentResponse, error)
	Lessons(ctx context.Context, query dto.ListLessonsQuery) ([]lessonDto.LessonResponse, error)
}

type adminService struct {
	users    UserReader
	students StudentReader
	lessons  LessonReader
	assigner StudentAssigner
	sweeper  lessonService.Sweeper
	notifier notifService.Notifier
	now      func() time.Time
	log      *zap.Logger
}

func NewAdminService(
	users UserReader,
	students StudentReader,
	lessons LessonReader,
	assigner StudentAssigner,
	sweeper lessonService.Sweeper,
	notifier notifService.Notifier,
	log *zap.Logger,
) AdminService {
	return &adminService{
		users:    users,
		students: students,
		lessons:  lessons,
		assigner: assigner,
		sweeper:  sweeper,
		notifier: notifier,
		now:      time.Now,
		log:      log,
	}
}

func (s *adminService) Stats(ctx context.Context) (*dto.Stats, error) {
	res := &dto.Stats{}
	var err error

	if res.TotalTeachers, err = s.users.CountByRole(ctx, entity.RoleTeacher); err != nil {
		return nil, err
	}
	if res.TotalStudents, err = s.users.CountByRole(ctx, entity.RoleStudent); err != nil {
		return nil, err
	}
	if res.ActiveStudents, err = s.students.CountProfiles(ctx, studentRepo.ProfileFilter{ActiveOnly: true}); err != nil {
		return nil, err
	}
	if res.UnassignedStudents, err = s.students.CountUnassigned(ctx); err != nil {
		return nil, err
	}
	if res.TotalLessons, err = s.lessons.Count(ctx, lessonRepo.Scope{}, lessonRepo.Filter{}); err != nil {
		return nil, err
	}
	// Every scheduled lesson counts, including ones still waiting for the sweep.
	res.UpcomingLessons, err = s.lessons.Count(ctx, lessonRepo.Scope{}, lessonRepo.Filter{
		Statuses: []entity.LessonStatus{entity.LessonScheduled},
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

// monthBounds returns the first and last instant of now's month.
func monthBounds(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 1, 0).Add(-time.Nanosecond)
}

func (s *adminService) TeacherLessonStats(ctx context.Context) (*dto.TeacherLessonStats, error) {
	now := s.now()
	from, to := monthBounds(now)

	teachers, err := s.users.ListByRole(ctx, entity.RoleTeacher)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(teachers, func(i, j int) bool { return teachers[i].Name < teachers[j].Name })

	res := &dto.TeacherLessonStats{
		Month: now.Format("January 2006"),
		Stats: make([]dto.TeacherLessonStat, 0, len(teachers)),
	}
	for _, t := range teachers {
		scope := lessonRepo.TeacherScope(t.ID)
		month := lessonRepo.Filter{From: &from, To: &to}
		stat := dto.TeacherLessonStat{TeacherID: t.ID, TeacherName: t.Name}

		if stat.TotalLessons, err = s.lessons.Count(ctx, scope, month); err != nil {
			return nil, err
		}
		month.Statuses = []entity.LessonStatus{entity.LessonCompleted}
		if stat.CompletedLessons, err = s.lessons.Count(ctx, scope, month); err != nil {
			return nil, err
		}
		month.Statuses = []entity.LessonStatus{entity.LessonScheduled}
		if stat.ScheduledLessons, err = s.lessons.Count(ctx, scope, month); err != nil {
			return nil, err
		}

		res.Stats = append(res.Stats, stat)
	}

	return res, nil
}

func (s *adminService) Teachers(ctx context.Context) ([]dto.TeacherResponse, error) {
	teachers, err := s.users.ListByRole(ctx, entity.RoleTeacher)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(teachers, func(i, j int) bool { return teachers[i].CreatedAt.After(teachers[j].CreatedAt) })

	res := make([]dto.TeacherResponse, 0, len(teachers))
	for i := range teachers {
		res = append(res, dto.NewTeacherResponse(&teachers[i]))
	}
	return res, nil
}

func (s *adminService) TeacherStudents(ctx context.Context, teacherID uuid.UUID) ([]studentDto.StudentResponse, error) {
	profiles, err := s.students.ListProfiles(ctx, studentRepo.ProfileFilter{TeacherID: teacherID, ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	return studentDto.NewStudentResponses(profiles), nil
}

func (s *adminService) Students(ctx context.Context) ([]dto.StudentResponse, error) {
	users, err := s.students.ListStudents(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]dto.StudentResponse, 0, len(users))
	for i := range users {
		res = append(res, dto.NewStudentResponse(&users[i]))
	}
	return res, nil
}

func (s *adminService) findTeacher(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperror.NotFound("Teacher not found")
		}
		return nil, err
	}
	if !user.IsTeacher() {
		return nil, apperror.NotFound("Teacher not found")
	}
	return user, nil
}

func parseID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.BadRequest("Invalid %s", field)
	}
	return id, nil
}

func (s *adminService) AssignStudent(ctx context.Context, input dto.AssignStudentInput) (*studentDto.StudentResponse, error) {
	teacherID, err := parseID(input.TeacherID, "teacher_id")
	if err != nil {
		return nil, err
	}
	studentID, err := parseID(input.StudentID, "student_id")
	if err != nil {
		return nil, err
	}

	teacher, err := s.findTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	return s.assigner.Assign(ctx, teacher.ID, studentID)
}

func (s *adminService) ReassignStudent(ctx context.Context, input dto.ReassignStudentInput) (*studentDto.StudentResponse, error) {
	teacherID, err := parseID(input.NewTeacherID, "new_teacher_id")
	if err != nil {
		return nil, err
	}
	profileID, err := parseID(input.StudentProfileID, "student_profile_id")
	if err != nil {
		return nil, err
	}

	teacher, err := s.findTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	profile, err := s.assigner.Reassign(ctx, profileID, teacher.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info("student reassigned",
		zap.String("profile_id", input.StudentProfileID),
		zap.String("teacher_id", teacher.ID.String()),
	)

	if profile.User != nil {
		s.notifier.Notify(ctx, profile.User.ID, entity.NotificationTeacherChanged,
			"Teacher changed",
			fmt.Sprintf("Your lessons are now with %s", teacher.Name),
			nil,
		)
	}

	return profile, nil
}

func (s *adminService) Lessons(ctx context.Context, query dto.ListLessonsQuery) ([]lessonDto.LessonResponse, error) {
	scope := lessonRepo.Scope{}
	if err := s.sweeper.Sweep(ctx, scope); err != nil {
		return nil, err
	}

	var filter lessonRepo.Filter
	switch query.Status {
	case "":
	case "upcoming":
		now := s.now()
		filter.Statuses = []entity.LessonStatus{entity.LessonScheduled}
		filter.From = &now
	case "past":
		filter.Statuses = []entity.LessonStatus{entity.LessonCompleted}
	default:
		status := entity.LessonStatus(query.Status)
		if !status.Valid() {
			return nil, apperror.BadRequest("Invalid status")
		}
		filter.Statuses = []entity.LessonStatus{status}
	}

	lessons, err := s.lessons.List(ctx, scope, filter)
	if err != nil {
		return nil, err
	}

	res := make([]lessonDto.LessonResponse, 0, len(lessons))
	for i := range lessons {
		res = append(res, lessonDto.NewLessonResponse(&lessons[i]))
	}
	return res, nil
}
