package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"vocalstudio.app/backend/internal/entity"
)

// Scope restricts queries to one teacher's or one student's lessons. The
// zero Scope covers every lesson.
type Scope struct {
	TeacherID uuid.UUID
	StudentID uuid.UUID
}

func TeacherScope(id uuid.UUID) Scope { return Scope{TeacherID: id} }
func StudentScope(id uuid.UUID) Scope { return Scope{StudentID: id} }

// ScopeFor picks the scope matching the actor's role.
func ScopeFor(actor entity.Actor) Scope {
	if actor.IsTeacher() {
		return TeacherScope(actor.ID)
	}
	return StudentScope(actor.ID)
}

func (s Scope) apply(db *gorm.DB) *gorm.DB {
	if s.TeacherID != uuid.Nil {
		db = db.Where("lessons.teacher_id = ?", s.TeacherID)
	}
	if s.StudentID != uuid.Nil {
		db = db.Where("lessons.student_id = ?", s.StudentID)
	}
	return db
}

type Filter struct {
	Statuses []entity.LessonStatus
	// From and To bound scheduled_at inclusively.
	From *time.Time
	To   *time.Time
	// WithoutFeedback keeps lessons that have no feedback row.
	WithoutFeedback bool
	Ascending       bool
	Limit           int
}

func (f Filter) apply(db *gorm.DB) *gorm.DB {
	if len(f.Statuses) > 0 {
		db = db.Where("lessons.status IN ?", f.Statuses)
	}
	if f.From != nil {
		db = db.Where("lessons.scheduled_at >= ?", *f.From)
	}
	if f.To != nil {
		db = db.Where("lessons.scheduled_at <= ?", *f.To)
	}
	if f.WithoutFeedback {
		db = db.Where("NOT EXISTS (SELECT 1 FROM feedbacks WHERE feedbacks.lesson_id = lessons.id)")
	}
	return db
}

type LessonRepository interface {
	Create(ctx context.Context, lesson *entity.Lesson) error
	// FindByID loads the lesson with its teacher, student and feedback.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Lesson, error)
	List(ctx context.Context, scope Scope, filter Filter) ([]entity.Lesson, error)
	Count(ctx context.Context, scope Scope, filter Filter) (int64, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error

	ListScheduled(ctx context.Context, scope Scope) ([]entity.Lesson, error)
	// CompleteScheduled moves the given lessons to completed, skipping any
	// that already left the scheduled state.
	CompleteScheduled(ctx context.Context, ids []uuid.UUID, now time.Time) (int64, error)
}

type lessonRepository struct {
	db *gorm.DB
}

func NewLessonRepository(db *gorm.DB) LessonRepository {
	return &lessonRepository{db: db}
}

func preloadParticipants(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Teacher", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "email", "phone")
		}).
		Preload("Student", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "email", "phone")
		})
}

func (r *lessonRepository) Create(ctx context.Context, lesson *entity.Lesson) error {
	return r.db.WithContext(ctx).Create(lesson).Error
}

func (r *lessonRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Lesson, error) {
	var lesson entity.Lesson
	err := preloadParticipants(r.db.WithContext(ctx)).
		Preload("Feedback").
		Where("id = ?", id).
		First(&lesson).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *lessonRepository) List(ctx context.Context, scope Scope, filter Filter) ([]entity.Lesson, error) {
	var lessons []entity.Lesson

	q := filter.apply(scope.apply(r.db.WithContext(ctx).Model(&entity.Lesson{})))
	q = preloadParticipants(q).Preload("Feedback")
	if filter.Ascending {
		q = q.Order("lessons.scheduled_at asc")
	} else {
		q = q.Order("lessons.scheduled_at desc")
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	err := q.Find(&lessons).Error
	return lessons, err
}

func (r *lessonRepository) Count(ctx context.Context, scope Scope, filter Filter) (int64, error) {
	var count int64
	err := filter.apply(scope.apply(r.db.WithContext(ctx).Model(&entity.Lesson{}))).Count(&count).Error
	return count, err
}

func (r *lessonRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&entity.Lesson{}).Where("id = ?", id).Updates(fields).Error
}

func (r *lessonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Lesson{}).Error
}

func (r *lessonRepository) ListScheduled(ctx context.Context, scope Scope) ([]entity.Lesson, error) {
	var lessons []entity.Lesson
	err := scope.apply(r.db.WithContext(ctx).Model(&entity.Lesson{})).
		Select("id", "scheduled_at", "duration", "status").
		Where("status = ?", entity.LessonScheduled).
		Find(&lessons).Error
	return lessons, err
}

func (r *lessonRepository) CompleteScheduled(ctx context.Context, ids []uuid.UUID, now time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&entity.Lesson{}).
		Where("id IN ? AND status = ?", ids, entity.LessonScheduled).
		Updates(map[string]any{"status": entity.LessonCompleted, "updated_at": now})
	return res.RowsAffected, res.Error
}
