package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"vocalstudio.app/backend/internal/entity"
	lessonRepo "vocalstudio.app/backend/internal/modules/lesson/repository"
)

type fakeLessonRepo struct {
	lessons map[uuid.UUID]*entity.Lesson
	users   map[uuid.UUID]*entity.User
}

func newFakeLessonRepo() *fakeLessonRepo {
	return &fakeLessonRepo{lessons: map[uuid.UUID]*entity.Lesson{}, users: map[uuid.UUID]*entity.User{}}
}

func (f *fakeLessonRepo) inScope(l *entity.Lesson, s lessonRepo.Scope) bool {
	if s.TeacherID != uuid.Nil && l.TeacherID != s.TeacherID {
		return false
	}
	if s.StudentID != uuid.Nil && l.StudentID != s.StudentID {
		return false
	}
	return true
}

func (f *fakeLessonRepo) matches(l *entity.Lesson, flt lessonRepo.Filter) bool {
	if len(flt.Statuses) > 0 {
		ok := false
		for _, st := range flt.Statuses {
			ok = ok || l.Status == st
		}
		if !ok {
			return false
		}
	}
	if flt.From != nil && l.ScheduledAt.Before(*flt.From) {
		return false
	}
	if flt.To != nil && l.ScheduledAt.After(*flt.To) {
		return false
	}
	if flt.WithoutFeedback && l.Feedback != nil {
		return false
	}
	return true
}

func (f *fakeLessonRepo) hydrate(l entity.Lesson) entity.Lesson {
	l.Teacher = f.users[l.TeacherID]
	l.Student = f.users[l.StudentID]
	return l
}

func (f *fakeLessonRepo) Create(_ context.Context, l *entity.Lesson) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	cp := *l
	f.lessons[l.ID] = &cp
	return nil
}

func (f *fakeLessonRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Lesson, error) {
	l, ok := f.lessons[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := f.hydrate(*l)
	return &cp, nil
}

func (f *fakeLessonRepo) List(_ context.Context, s lessonRepo.Scope, flt lessonRepo.Filter) ([]entity.Lesson, error) {
	var out []entity.Lesson
	for _, l := range f.lessons {
		if f.inScope(l, s) && f.matches(l, flt) {
			out = append(out, f.hydrate(*l))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if flt.Ascending {
			return out[i].ScheduledAt.Before(out[j].ScheduledAt)
		}
		return out[i].ScheduledAt.After(out[j].ScheduledAt)
	})
	if flt.Limit > 0 && len(out) > flt.Limit {
		out = out[:flt.Limit]
	}
	return out, nil
}

func (f *fakeLessonRepo) Count(ctx context.Context, s lessonRepo.Scope, flt lessonRepo.Filter) (int64, error) {
	flt.Limit = 0
	out, _ := f.List(ctx, s, flt)
	return int64(len(out)), nil
}

func (f *fakeLessonRepo) Update(_ context.Context, id uuid.UUID, fields map[string]any) error {
	l, ok := f.lessons[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "title":
			l.Title = v.(*string)
		case "location":
			l.Location = v.(*string)
		case "notes":
			l.Notes = v.(*string)
		case "duration":
			l.Duration = v.(int)
		case "scheduled_at":
			l.ScheduledAt = v.(time.Time)
		case "status":
			l.Status = v.(entity.LessonStatus)
		case "student_id":
			l.StudentID = v.(uuid.UUID)
		case "teacher_id":
			l.TeacherID = v.(uuid.UUID)
		case "updated_at":
			l.UpdatedAt = v.(time.Time)
		}
	}
	return nil
}

func (f *fakeLessonRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.lessons, id)
	return nil
}

func (f *fakeLessonRepo) ListScheduled(_ context.Context, s lessonRepo.Scope) ([]entity.Lesson, error) {
	var out []entity.Lesson
	for _, l := range f.lessons {
		if f.inScope(l, s) && l.Status == entity.LessonScheduled {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeLessonRepo) CompleteScheduled(_ context.Context, ids []uuid.UUID, now time.Time) (int64, error) {
	var n int64
	for _, id := range ids {
		if l, ok := f.lessons[id]; ok && l.Status == entity.LessonScheduled {
			l.Status = entity.LessonCompleted
			l.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

// fakeUsers reads users off the shared fake repo.
type fakeUsers struct{ repo *fakeLessonRepo }

func (f fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	u, ok := f.repo.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

type sent struct {
	UserID uuid.UUID
	Type   entity.NotificationType
}

type recordingNotifier struct{ sent []sent }

func (r *recordingNotifier) Notify(_ context.Context, userID uuid.UUID, kind entity.NotificationType, _, _ string, _ *uuid.UUID) {
	r.sent = append(r.sent, sent{UserID: userID, Type: kind})
}
