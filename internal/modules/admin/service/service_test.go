package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"vocalstudio.app/backend/internal/entity"
	"vocalstudio.app/backend/internal/modules/admin/dto"
	lessonRepo "vocalstudio.app/backend/internal/modules/lesson/repository"
	studentDto "vocalstudio.app/backend/internal/modules/student/dto"
	studentRepo "vocalstudio.app/backend/internal/modules/student/repository"
	"vocalstudio.app/backend/pkg/apperror"
)

type fakeUsers struct {
	users []entity.User
}

func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	for i := range f.users {
		if f.users[i].ID == id {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) ListByRole(_ context.Context, role entity.Role) ([]entity.User, error) {
	var out []entity.User
	for _, u := range f.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUsers) CountByRole(ctx context.Context, role entity.Role) (int64, error) {
	out, _ := f.ListByRole(ctx, role)
	return int64(len(out)), nil
}

type fakeStudents struct {
	profiles   []entity.StudentProfile
	unassigned int64
	lastFilter studentRepo.ProfileFilter
}

func (f *fakeStudents) ListStudents(context.Context) ([]entity.User, error) {
	return []entity.User{
		{ID: uuid.New(), Name: "Jun", Role: entity.RoleStudent},
		{ID: uuid.New(), Name: "Ara", Role: entity.RoleStudent, Profile: &f.profiles[0]},
	}, nil
}

func (f *fakeStudents) CountUnassigned(context.Context) (int64, error) {
	return f.unassigned, nil
}

func (f *fakeStudents) ListProfiles(_ context.Context, filter studentRepo.ProfileFilter) ([]entity.StudentProfile, error) {
	f.lastFilter = filter
	var out []entity.StudentProfile
	for _, p := range f.profiles {
		if filter.TeacherID != uuid.Nil && p.TeacherID != filter.TeacherID {
			continue
		}
		if filter.ActiveOnly && !p.IsActive {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeStudents) CountProfiles(ctx context.Context, filter studentRepo.ProfileFilter) (int64, error) {
	out, _ := f.ListProfiles(ctx, filter)
	return int64(len(out)), nil
}

type fakeLessons struct {
	lessons []entity.Lesson
	filters []lessonRepo.Filter
}

func (f *fakeLessons) match(scope lessonRepo.Scope, filter lessonRepo.Filter) []entity.Lesson {
	var out []entity.Lesson
	for _, l := range f.lessons {
		if scope.TeacherID != uuid.Nil && l.TeacherID != scope.TeacherID {
			continue
		}
		if len(filter.Statuses) > 0 && l.Status != filter.Statuses[0] {
			continue
		}
		if filter.From != nil && l.ScheduledAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && l.ScheduledAt.After(*filter.To) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func (f *fakeLessons) List(_ context.Context, scope lessonRepo.Scope, filter lessonRepo.Filter) ([]entity.Lesson, error) {
	f.filters = append(f.filters, filter)
	return f.match(scope, filter), nil
}

func (f *fakeLessons) Count(_ context.Context, scope lessonRepo.Scope, filter lessonRepo.Filter) (int64, error) {
	return int64(len(f.match(scope, filter))), nil
}

type fakeAssigner struct {
	assigned   [2]uuid.UUID
	reassigned [2]uuid.UUID
	studentID  uuid.UUID
}

func (f *fakeAssigner) Assign(_ context.Context, teacherID, studentID uuid.UUID) (*studentDto.StudentResponse, error) {
	f.assigned = [2]uuid.UUID{teacherID, studentID}
	return &studentDto.StudentResponse{ID: uuid.New()}, nil
}

func (f *fakeAssigner) Reassign(_ context.Context, profileID, teacherID uuid.UUID) (*studentDto.StudentResponse, error) {
	f.reassigned = [2]uuid.UUID{profileID, teacherID}
	return &studentDto.StudentResponse{
		ID:   profileID,
		User: &entity.UserSummary{ID: f.studentID, Name: "Jun"},
	}, nil
}

type recordingSweeper struct {
	scopes []lessonRepo.Scope
}

func (s *recordingSweeper) Sweep(_ context.Context, scope lessonRepo.Scope) error {
	s.scopes = append(s.scopes, scope)
	return nil
}

type notice struct {
	to   uuid.UUID
	kind entity.NotificationType
}

type recordingNotifier struct {
	sent []notice
}

func (n *recordingNotifier) Notify(_ context.Context, userID uuid.UUID, kind entity.NotificationType, _, _ string, _ *uuid.UUID) {
	n.sent = append(n.sent, notice{userID, kind})
}

type fixture struct {
	svc      *adminService
	users    *fakeUsers
	students *fakeStudents
	lessons  *fakeLessons
	assigner *fakeAssigner
	sweeper  *recordingSweeper
	notifier *recordingNotifier
	now      time.Time
	teachers []entity.User
}

func newFixture() *fixture {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	teachers := []entity.User{
		{ID: uuid.New(), Name: "Yuna", Role: entity.RoleTeacher, CreatedAt: now.Add(-48 * time.Hour)},
		{ID: uuid.New(), Name: "Bora", Role: entity.RoleTeacher, CreatedAt: now.Add(-time.Hour), IsAdmin: true},
	}
	f := &fixture{
		users:    &fakeUsers{users: append([]entity.User{{ID: uuid.New(), Role: entity.RoleStudent}}, teachers...)},
		lessons:  &fakeLessons{},
		assigner: &fakeAssigner{studentID: uuid.New()},
		sweeper:  &recordingSweeper{},
		notifier: &recordingNotifier{},
		now:      now,
		teachers: teachers,
	}
	f.students = &fakeStudents{
		unassigned: 3,
		profiles: []entity.StudentProfile{
			{ID: uuid.New(), TeacherID: teachers[0].ID, IsActive: true, Teacher: &teachers[0]},
			{ID: uuid.New(), TeacherID: teachers[0].ID, IsActive: false},
			{ID: uuid.New(), TeacherID: teachers[1].ID, IsActive: true},
		},
	}
	svc := NewAdminService(f.users, f.students, f.lessons, f.assigner, f.sweeper, f.notifier, zap.NewNop()).(*adminService)
	svc.now = func() time.Time { return now }
	f.svc = svc
	return f
}

func (f *fixture) lesson(teacher uuid.UUID, at time.Time, status entity.LessonStatus) {
	f.lessons.lessons = append(f.lessons.lessons, entity.Lesson{
		ID: uuid.New(), TeacherID: teacher, StudentID: uuid.New(),
		ScheduledAt: at, Duration: 60, Status: status,
	})
}

func TestStats(t *testing.T) {
	f := newFixture()
	f.lesson(f.teachers[0].ID, f.now.Add(time.Hour), entity.LessonScheduled)
	f.lesson(f.teachers[0].ID, f.now.Add(-time.Hour), entity.LessonScheduled)
	f.lesson(f.teachers[1].ID, f.now.Add(-48*time.Hour), entity.LessonCompleted)

	res, err := f.svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, dto.Stats{
		TotalTeachers:      2,
		TotalStudents:      1,
		ActiveStudents:     2,
		UnassignedStudents: 3,
		TotalLessons:       3,
		UpcomingLessons:    2,
	}, *res)
}

func TestTeacherLessonStatsCoversCurrentMonth(t *testing.T) {
	f := newFixture()
	yuna := f.teachers[0].ID
	f.lesson(yuna, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), entity.LessonCompleted)
	f.lesson(yuna, time.Date(2025, 3, 31, 23, 0, 0, 0, time.UTC), entity.LessonScheduled)
	f.lesson(yuna, time.Date(2025, 3, 20, 9, 0, 0, 0, time.UTC), entity.LessonCancelled)
	f.lesson(yuna, time.Date(2025, 2, 28, 9, 0, 0, 0, time.UTC), entity.LessonCompleted)
	f.lesson(yuna, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), entity.LessonScheduled)

	res, err := f.svc.TeacherLessonStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "March 2025", res.Month)
	require.Len(t, res.Stats, 2)
	assert.Equal(t, "Bora", res.Stats[0].TeacherName)
	assert.Zero(t, res.Stats[0].TotalLessons)

	yunaStat := res.Stats[1]
	assert.Equal(t, yuna, yunaStat.TeacherID)
	assert.Equal(t, int64(3), yunaStat.TotalLessons)
	assert.Equal(t, int64(1), yunaStat.CompletedLessons)
	assert.Equal(t, int64(1), yunaStat.ScheduledLessons)
}

func TestTeachersNewestFirst(t *testing.T) {
	f := newFixture()

	res, err := f.svc.Teachers(context.Background())
	require.NoError(t, err)

	require.Len(t, res, 2)
	assert.Equal(t, "Bora", res[0].Name)
	assert.True(t, res[0].IsAdmin)
	assert.Equal(t, "Yuna", res[1].Name)
}

func TestTeacherStudentsListsActiveOnly(t *testing.T) {
	f := newFixture()

	res, err := f.svc.TeacherStudents(context.Background(), f.teachers[0].ID)
	require.NoError(t, err)

	assert.Len(t, res, 1)
	assert.True(t, f.students.lastFilter.ActiveOnly)
}

func TestStudentsIncludeProfile(t *testing.T) {
	f := newFixture()

	res, err := f.svc.Students(context.Background())
	require.NoError(t, err)

	require.Len(t, res, 2)
	assert.Nil(t, res[0].Profile)
	require.NotNil(t, res[1].Profile)
	assert.Equal(t, "Yuna", res[1].Profile.Teacher.Name)
}

func TestAssignStudentChecksTeacher(t *testing.T) {
	f := newFixture()
	studentID := uuid.New()

	_, err := f.svc.AssignStudent(context.Background(), dto.AssignStudentInput{
		StudentID: studentID.String(),
		TeacherID: uuid.NewString(),
	})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.EqualError(t, err, "Teacher not found")

	// a student id in the teacher slot is rejected as well
	_, err = f.svc.AssignStudent(context.Background(), dto.AssignStudentInput{
		StudentID: studentID.String(),
		TeacherID: f.users.users[0].ID.String(),
	})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.svc.AssignStudent(context.Background(), dto.AssignStudentInput{
		StudentID: studentID.String(),
		TeacherID: f.teachers[0].ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, [2]uuid.UUID{f.teachers[0].ID, studentID}, f.assigner.assigned)
}

func TestReassignStudentNotifiesStudent(t *testing.T) {
	f := newFixture()
	profileID := uuid.New()

	res, err := f.svc.ReassignStudent(context.Background(), dto.ReassignStudentInput{
		StudentProfileID: profileID.String(),
		NewTeacherID:     f.teachers[1].ID.String(),
	})
	require.NoError(t, err)

	assert.Equal(t, profileID, res.ID)
	assert.Equal(t, [2]uuid.UUID{profileID, f.teachers[1].ID}, f.assigner.reassigned)
	assert.Equal(t, []notice{{f.assigner.studentID, entity.NotificationTeacherChanged}}, f.notifier.sent)
}

func TestReassignStudentUnknownTeacher(t *testing.T) {
	f := newFixture()

	_, err := f.svc.ReassignStudent(context.Background(), dto.ReassignStudentInput{
		StudentProfileID: uuid.NewString(),
		NewTeacherID:     uuid.NewString(),
	})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Empty(t, f.notifier.sent)
}

func TestMalformedIDsAreBadRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.AssignStudent(ctx, dto.AssignStudentInput{StudentID: "nope", TeacherID: f.teachers[0].ID.String()})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
	assert.EqualError(t, err, "Invalid student_id")

	_, err = f.svc.AssignStudent(ctx, dto.AssignStudentInput{StudentID: uuid.NewString(), TeacherID: ""})
	assert.EqualError(t, err, "Invalid teacher_id")

	_, err = f.svc.ReassignStudent(ctx, dto.ReassignStudentInput{StudentProfileID: "x", NewTeacherID: f.teachers[1].ID.String()})
	assert.EqualError(t, err, "Invalid student_profile_id")

	_, err = f.svc.ReassignStudent(ctx, dto.ReassignStudentInput{StudentProfileID: uuid.NewString(), NewTeacherID: "x"})
	assert.EqualError(t, err, "Invalid new_teacher_id")

	assert.Equal(t, [2]uuid.UUID{}, f.assigner.assigned)
	assert.Equal(t, [2]uuid.UUID{}, f.assigner.reassigned)
	assert.Empty(t, f.notifier.sent)
}

func TestLessonsStatusFilters(t *testing.T) {
	f := newFixture()
	yuna := f.teachers[0].ID
	f.lesson(yuna, f.now.Add(time.Hour), entity.LessonScheduled)
	f.lesson(yuna, f.now.Add(-time.Hour), entity.LessonScheduled)
	f.lesson(yuna, f.now.Add(-48*time.Hour), entity.LessonCompleted)
	f.lesson(yuna, f.now.Add(-72*time.Hour), entity.LessonCancelled)

	cases := map[string]int{
		"":          4,
		"upcoming":  1,
		"past":      1,
		"cancelled": 1,
		"scheduled": 2,
	}
	for status, want := range cases {
		res, err := f.svc.Lessons(context.Background(), dto.ListLessonsQuery{Status: status})
		require.NoError(t, err, status)
		assert.Len(t, res, want, status)
	}

	for _, scope := range f.sweeper.scopes {
		assert.Equal(t, lessonRepo.Scope{}, scope)
	}
	assert.Len(t, f.sweeper.scopes, len(cases))

	_, err := f.svc.Lessons(context.Background(), dto.ListLessonsQuery{Status: "archived"})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
}
