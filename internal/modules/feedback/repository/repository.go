package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"vocalstudio.app/backend/internal/entity"
)

// Filter narrows a feedback listing. Zero ids are ignored.
type Filter struct {
	TeacherID uuid.UUID
	StudentID uuid.UUID
	Limit     int
}

func (f Filter) apply(db *gorm.DB) *gorm.DB {
	if f.TeacherID != uuid.Nil {
		db = db.Where("feedbacks.teacher_id = ?", f.TeacherID)
	}
	if f.StudentID != uuid.Nil {
		db = db.Where("feedbacks.student_id = ?", f.StudentID)
	}
	return db
}

type FeedbackRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Feedback, error)
	ExistsForLesson(ctx context.Context, lessonID uuid.UUID) (bool, error)
	List(ctx context.Context, filter Filter) ([]entity.Feedback, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	// AverageRating is 0 when nothing matches.
	AverageRating(ctx context.Context, filter Filter) (float64, error)
	// CreateAndCompleteLesson inserts feedback and marks its lesson completed
	// in one transaction.
	CreateAndCompleteLesson(ctx context.Context, feedback *entity.Feedback, now time.Time) error
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error
	CountUnviewedReactions(ctx context.Context, teacherID uuid.UUID) (int64, error)
}

type feedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Lesson", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "title", "scheduled_at", "duration", "status")
		}).
		Preload("Teacher", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "email")
		}).
		Preload("Student", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "email")
		})
}

func (r *feedbackRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Feedback, error) {
	var feedback entity.Feedback
	if err := withRelations(r.db.WithContext(ctx)).Where("id = ?", id).First(&feedback).Error; err != nil {
		return nil, err
	}
	return &feedback, nil
}

func (r *feedbackRepository) ExistsForLesson(ctx context.Context, lessonID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Feedback{}).Where("lesson_id = ?", lessonID).Count(&count).Error
	return count > 0, err
}

func (r *feedbackRepository) List(ctx context.Context, filter Filter) ([]entity.Feedback, error) {
	var feedbacks []entity.Feedback
	q := withRelations(filter.apply(r.db.WithContext(ctx).Model(&entity.Feedback{}))).
		Order("feedbacks.created_at desc")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	err := q.Find(&feedbacks).Error
	return feedbacks, err
}

func (r *feedbackRepository) Count(ctx context.Context, filter Filter) (int64, error) {
	var count int64
	err := filter.apply(r.db.WithContext(ctx).Model(&entity.Feedback{})).Count(&count).Error
	return count, err
}

func (r *feedbackRepository) AverageRating(ctx context.Context, filter Filter) (float64, error) {
	var avg float64
	err := filter.apply(r.db.WithContext(ctx).Model(&entity.Feedback{})).
		Select("COALESCE(AVG(feedbacks.rating), 0)").
		Scan(&avg).Error
	return avg, err
}

func (r *feedbackRepository) CreateAndCompleteLesson(ctx context.Context, feedback *entity.Feedback, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(feedback).Error; err != nil {
			return err
		}
		return tx.Model(&entity.Lesson{}).
			Where("id = ? AND status = ?", feedback.LessonID, entity.LessonScheduled).
			Updates(map[string]any{"status": entity.LessonCompleted, "updated_at": now}).Error
	})
}

func (r *feedbackRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	// map updates bypass the json serializer declared on the entity
	if urls, ok := fields["reference_urls"].([]string); ok {
		raw, err := json.Marshal(urls)
		if err != nil {
			return err
		}
		fields["reference_urls"] = string(raw)
	}
	return r.db.WithContext(ctx).Model(&entity.Feedback{}).Where("id = ?", id).Updates(fields).Error
}

func (r *feedbackRepository) CountUnviewedReactions(ctx context.Context, teacherID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Feedback{}).
		Where("teacher_id = ? AND student_reaction IS NOT NULL", teacherID).
		Where("reaction_viewed_at IS NULL OR reaction_viewed_at < student_reacted_at").
		Count(&count).Error
	return count, err
}
