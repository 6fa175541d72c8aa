package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"vocalstudio.app/backend/internal/entity"
	lessonRepo "vocalstudio.app/backend/internal/modules/lesson/repository"
)

// Sweeper completes scheduled lessons whose end time has passed. Every
// list or count over lessons runs it first for the same scope.
type Sweeper interface {
	Sweep(ctx context.Context, scope lessonRepo.Scope) error
}

type sweeper struct {
	repo lessonRepo.LessonRepository
	now  func() time.Time
	log  *zap.Logger
}

func NewSweeper(repo lessonRepo.LessonRepository, log *zap.Logger) Sweeper {
	return &sweeper{repo: repo, now: time.Now, log: log}
}

func (s *sweeper) Sweep(ctx context.Context, scope lessonRepo.Scope) error {
	lessons, err := s.repo.ListScheduled(ctx, scope)
	if err != nil {
		return fmt.Errorf("load scheduled lessons: %w", err)
	}

	now := s.now()
	var due []uuid.UUID
	for i := range lessons {
		if entity.Advance(&lessons[i], now) == entity.LessonCompleted {
			due = append(due, lessons[i].ID)
		}
	}
	if len(due) == 0 {
		return nil
	}

	n, err := s.repo.CompleteScheduled(ctx, due, now)
	if err != nil {
		return fmt.Errorf("complete past lessons: %w", err)
	}
	s.log.Debug("completed past lessons", zap.Int64("count", n))
	return nil
}
