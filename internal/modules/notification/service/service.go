package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"vocalstudio.app/backend/internal/entity"
	notifRepo "vocalstudio.app/backend/internal/modules/notification/repository"
	"vocalstudio.app/backend/pkg/apperror"
)

// ListLimit caps how many notifications a list call returns.
const ListLimit = 50

// Notifier is the fan-out helper used by the lesson, feedback and admin
// services. Delivery is best effort: failures are logged, never returned.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind entity.NotificationType, title, message string, lessonID *uuid.UUID)
}

type NotificationService interface {
	Notifier
	GetNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]entity.Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	redisClient *redis.Client
	log         *zap.Logger
}

func NewNotificationService(repo notifRepo.NotificationRepository, redisClient *redis.Client, log *zap.Logger) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
		log:         log,
	}
}

// Channel is the redis pub/sub channel carrying userID's live notifications.
func Channel(userID string) string {
	return fmt.Sprintf("user_notifications:%s", userID)
}

func (s *notificationService) Notify(ctx context.Context, userID uuid.UUID, kind entity.NotificationType, title, message string, lessonID *uuid.UUID) {
	notification := &entity.Notification{
		UserID:          userID,
		Type:            kind,
		Title:           title,
		Message:         message,
		RelatedLessonID: lessonID,
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		s.log.Warn("failed to create notification",
			zap.String("user_id", userID.String()),
			zap.String("type", string(kind)),
			zap.Error(err),
		)
		return
	}

	if s.redisClient == nil {
		return
	}

	payload, err := json.Marshal(notification)
	if err != nil {
		return
	}
	if err := s.redisClient.Publish(ctx, Channel(userID.String()), payload).Err(); err != nil {
		s.log.Debug("failed to publish notification", zap.Error(err))
	}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]entity.Notification, error) {
	return s.repo.ListByUser(ctx, userID, unreadOnly, ListLimit)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *notificationService) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	found, err := s.repo.MarkAsRead(ctx, id, userID)
	if err != nil {
		return err
	}
	if !found {
		return apperror.NotFound("Notification not found")
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}
