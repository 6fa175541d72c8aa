package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"vocalstudio.app/backend/internal/entity"
)

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	Create(ctx context.Context, user *entity.User) error
	// CreateStudent inserts a student and, when a pending pre-registration
	// carries the same phone, creates the profile from it and consumes it.
	// All of it happens in one transaction. The profile is nil when nothing
	// matched.
	CreateStudent(ctx context.Context, user *entity.User) (*entity.StudentProfile, error)
	ListByRole(ctx context.Context, role entity.Role) ([]entity.User, error)
	CountByRole(ctx context.Context, role entity.Role) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *userRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.User{}).Where("phone = ?", phone).Count(&count).Error
	return count > 0, err
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) CreateStudent(ctx context.Context, user *entity.User) (*entity.StudentProfile, error) {
	var profile *entity.StudentProfile

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		if user.Phone == nil {
			return nil
		}

		var pre entity.PreRegistration
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("student_phone = ? AND is_registered = ?", *user.Phone, false).
			First(&pre).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		p := pre.ToProfile(user.ID)
		if err := tx.Create(p).Error; err != nil {
			return err
		}

		pre.Consume(user.ID, time.Now())
		if err := tx.Model(&pre).Updates(map[string]any{
			"is_registered":      pre.IsRegistered,
			"registered_user_id": pre.RegisteredUserID,
			"registered_at":      pre.RegisteredAt,
		}).Error; err != nil {
			return err
		}

		p.User = user
		profile = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role entity.Role) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("name asc").
		Find(&users).Error
	return users, err
}

func (r *userRepository) CountByRole(ctx context.Context, role entity.Role) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.User{}).Where("role = ?", role).Count(&count).Error
	return count, err
}
