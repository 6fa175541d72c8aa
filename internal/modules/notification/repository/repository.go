package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"vocalstudio.app/backend/internal/entity"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]entity.Notification, error)
	// MarkAsRead returns false when no notification with id belongs to userID.
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) (bool, error)
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]entity.Notification, error) {
	var notifications []entity.Notification
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	err := q.Order("created_at desc").
		Limit(limit).
		Preload("Lesson", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "title", "scheduled_at", "duration", "status", "teacher_id", "student_id")
		}).
		Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	return res.RowsAffected > 0, res.Error
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}
