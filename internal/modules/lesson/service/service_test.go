package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"vocalstudio.app/backend/internal/entity"
	"vocalstudio.app/backend/internal/modules/lesson/dto"
	lessonRepo "vocalstudio.app/backend/internal/modules/lesson/repository"
	"vocalstudio.app/backend/pkg/apperror"
)

type fixture struct {
	repo     *fakeLessonRepo
	notifier *recordingNotifier
	svc      LessonService
	sweeper  *sweeper
	teacher  entity.Actor
	student  entity.Actor
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newFakeLessonRepo()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	teacher := entity.Actor{ID: uuid.New(), Role: entity.RoleTeacher}
	student := entity.Actor{ID: uuid.New(), Role: entity.RoleStudent}
	repo.users[teacher.ID] = &entity.User{ID: teacher.ID, Name: "Teacher T", Role: entity.RoleTeacher}
	repo.users[student.ID] = &entity.User{ID: student.ID, Name: "Student S", Role: entity.RoleStudent}

	sw := &sweeper{repo: repo, now: func() time.Time { return now }, log: zap.NewNop()}
	notifier := &recordingNotifier{}
	svc := NewLessonService(repo, fakeUsers{repo}, sw, notifier, zap.NewNop())
	svc.(*lessonService).now = func() time.Time { return now }

	return &fixture{repo: repo, notifier: notifier, svc: svc, sweeper: sw, teacher: teacher, student: student, now: now}
}

func (f *fixture) addLesson(teacherID, studentID uuid.UUID, at time.Time, status entity.LessonStatus) *entity.Lesson {
	l := &entity.Lesson{ID: uuid.New(), TeacherID: teacherID, StudentID: studentID, ScheduledAt: at, Duration: 60, Status: status}
	f.repo.lessons[l.ID] = l
	return l
}

func strPtr(s string) *string { return &s }

func TestSweepCompletesOnlyEndedLessonsInScope(t *testing.T) {
	f := newFixture(t)
	otherTeacher := uuid.New()

	ended := f.addLesson(f.teacher.ID, f.student.ID, f.now.Add(-2*time.Hour), entity.LessonScheduled)
	running := f.addLesson(f.teacher.ID, f.student.ID, f.now.Add(-30*time.Minute), entity.LessonScheduled)
	cancelled := f.addLesson(f.teacher.ID, f.student.ID, f.now.Add(-48*time.Hour), entity.LessonCancelled)
	foreign := f.addLesson(otherTeacher, uuid.New(), f.now.Add(-5*time.Hour), entity.LessonScheduled)

	require.NoError(t, f.sweeper.Sweep(context.Background(), lessonRepo.TeacherScope(f.teacher.ID)))

	assert.Equal(t, entity.LessonCompleted, f.repo.lessons[ended.ID].Status)
	assert.Equal(t, entity.LessonScheduled, f.repo.lessons[running.ID].Status)
	assert.Equal(t, entity.LessonCancelled, f.repo.lessons[cancelled.ID].Status)
	assert.Equal(t, entity.LessonScheduled, f.repo.lessons[foreign.ID].Status)

	// a second sweep is a no-op
	require.NoError(t, f.sweeper.Sweep(context.Background(), lessonRepo.TeacherScope(f.teacher.ID)))
	assert.Equal(t, entity.LessonCompleted, f.repo.lessons[ended.ID].Status)
}

func TestListSweepsBeforeFiltering(t *testing.T) {
	f := newFixture(t)
	past := f.addLesson(f.teacher.ID, f.student.ID, f.now.Add(-3*time.Hour), entity.LessonScheduled)
	f.addLesson(f.teacher.ID, f.student.ID, f.now.Add(24*time.Hour), entity.LessonScheduled)

	completed, err := f.svc.List(context.Background(), f.student, dto.ListLessonsQuery{Status: "completed"})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, past.ID, completed[0].ID)
	assert.Equal(t, "Student S", completed[0].Student.Name)

	all, err := f.svc.List(context.Background(), f.teacher, dto.ListLessonsQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.True(t, all[0].ScheduledAt.After(all[1].ScheduledAt))
}

func TestListRejectsBadDates(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.List(context.Background(), f.teacher, dto.ListLessonsQuery{FromDate: "soon"})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
}

func TestCreateLesson(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Create(ctx, f.teacher, dto.CreateLessonInput{
		StudentID: f.student.ID.String(),
		Title:     strPtr(" Breathing <basics> "),
		Schedule:  dto.Schedule{Date: strPtr("2026-06-02"), Time: strPtr("18:30:00")},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.DefaultLessonDuration, res.Duration)
	assert.Equal(t, entity.LessonScheduled, res.Status)
	assert.Equal(t, time.Date(2026, 6, 2, 18, 30, 0, 0, time.UTC), res.ScheduledAt)
	assert.Equal(t, "Breathing <basics>", *res.Title)
	assert.Equal(t, []sent{{f.student.ID, entity.NotificationLessonCreated}}, f.notifier.sent)
}

func TestCreateLessonValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.teacher, dto.CreateLessonInput{StudentID: f.student.ID.String()})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)

	_, err = f.svc.Create(ctx, f.teacher, dto.CreateLessonInput{
		StudentID: f.teacher.ID.String(),
		Schedule:  dto.Schedule{ScheduledAt: strPtr("2026-06-02T10:00:00Z")},
	})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.svc.Create(ctx, f.student, dto.CreateLessonInput{
		StudentID: f.student.ID.String(),
		Schedule:  dto.Schedule{ScheduledAt: strPtr("2026-06-02T10:00:00Z")},
	})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	assert.Empty(t, f.notifier.sent)
}

func TestUpdateNotifiesTeacherAndStudent(t *testing.T) {
	f := newFixture(t)
	l := f.addLesson(f.teacher.ID, f.student.ID, f.now.Add(time.Hour), entity.LessonScheduled)

	res, err := f.svc.Update(context.Background(), f.teacher, l.ID, dto.UpdateLessonInput{Location: strPtr("Room 2")})
	require.NoError(t, err)
	assert.Equal(t, "Room 2", *res.Location)

	assert.ElementsMatch(t, []sent{
		{f.teacher.ID, entity.NotificationLessonUpdated},
		{f.student.ID, entity.NotificationLessonUpdated},
	}, f.notifier.sent)
}

func TestUpdateTeacherChangeNotifiesThree(t *testing.T) {
	f := newFixture(t)
	newTeacher := uuid.New()
	f.repo.users[newTeacher] = &entity.User{ID: newTeacher, Name: "New T", Role: entity.RoleTeacher}
	l := f.addLesson(f.teacher.ID, f.student.ID, f.now.Add(time.Hour), entity.LessonScheduled)

	res, err := f.svc.Update(context.Background(), f.teacher, l.ID, dto.UpdateLessonInput{TeacherID: strPtr(newTeacher.String())})
	require.NoError(t, err)
	assert.Equal(t, newTeacher, res.TeacherID)

	assert.ElementsMatch(t, []sent{
		{newTeacher, entity.NotificationTeacherChanged},
		{f.teacher.ID, entity.NotificationTeacherChanged},
		{f.student.ID, entity.NotificationTeacherChanged},
	}, f.notifier.sent)

	// the old teacher no longer owns it
	_, err = f.svc.Get(context.Background(), f.teacher, l.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateSameTeacherIsPlainUpdate(t *testing.T) {
	f := newFixture(t)
	l := f.addLesson(f.teacher.ID, f.student.ID, f.now.Add(time.Hour), entity.LessonScheduled)

	_, err := f.svc.Update(context.Background(), f.teacher, l.ID, dto.UpdateLessonInput{TeacherID: strPtr(f.teacher.ID.String())})
	require.NoError(t, err)
	assert.Len(t, f.notifier.sent, 2)
}

func TestUpdateRejectsInvalidTransition(t *testing.T) {
	f := newFixture(t)
	l := f.addLesson(f.teacher.ID, f.student.ID, f.now.Add(-time.Hour*3), entity.LessonCompleted)

	_, err := f.svc.Update(context.Background(), f.teacher, l.ID, dto.UpdateLessonInput{Status: strPtr("scheduled")})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
	assert.Empty(t, f.notifier.sent)
}

func TestUpdateByStudentIsForbidden(t *testing.T) {
	f := newFixture(t)
	l := f.addLesson(f.teacher.ID, f.student.ID, f.now.Add(time.Hour), entity.LessonScheduled)

	_, err := f.svc.Update(context.Background(), f.student, l.ID, dto.UpdateLessonInput{})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestCancelLesson(t *testing.T) {
	f := newFixture(t)
	l := f.addLesson(f.teacher.ID, f.student.ID, f.now.Add(time.Hour), entity.LessonScheduled)
	ctx := context.Background()

	res, err := f.svc.Cancel(ctx, f.teacher, l.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.LessonCancelled, res.Status)
	assert.ElementsMatch(t, []sent{
		{f.teacher.ID, entity.NotificationLessonCancelled},
		{f.student.ID, entity.NotificationLessonCancelled},
	}, f.notifier.sent)

	_, err = f.svc.Cancel(ctx, f.teacher, l.ID)
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
	assert.Len(t, f.notifier.sent, 2)
}

func TestGetIsLimitedToParticipants(t *testing.T) {
	f := newFixture(t)
	l := f.addLesson(f.teacher.ID, f.student.ID, f.now.Add(time.Hour), entity.LessonScheduled)
	ctx := context.Background()

	_, err := f.svc.Get(ctx, f.student, l.ID)
	require.NoError(t, err)

	stranger := entity.Actor{ID: uuid.New(), Role: entity.RoleStudent}
	_, err = f.svc.Get(ctx, stranger, l.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.svc.GetFeedback(ctx, f.student, l.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	f.repo.lessons[l.ID].Feedback = &entity.Feedback{ID: uuid.New(), Rating: 5}
	fb, err := f.svc.GetFeedback(ctx, f.student, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, fb.Rating)
}

func TestDeleteLesson(t *testing.T) {
	f := newFixture(t)
	l := f.addLesson(f.teacher.ID, f.student.ID, f.now.Add(time.Hour), entity.LessonScheduled)

	require.NoError(t, f.svc.Delete(context.Background(), f.teacher, l.ID))
	assert.NotContains(t, f.repo.lessons, l.ID)

	err := f.svc.Delete(context.Background(), f.teacher, l.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
