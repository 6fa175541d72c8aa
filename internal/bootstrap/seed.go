package bootstrap

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"vocalstudio.app/backend/internal/entity"
)

const (
	adminEmail    = "admin@vocalstudio.app"
	adminPassword = "admin123"
)

// SeedAdmin creates the development admin, a teacher account with the admin
// flag. It does nothing when the account already exists.
func SeedAdmin(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	var count int64
	if err := db.WithContext(ctx).Model(&entity.User{}).
		Where("email = ?", adminEmail).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Debug("admin user already exists, skipping seed")
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := entity.User{
		Email:    adminEmail,
		Password: string(hashed),
		Name:     "Administrator",
		Role:     entity.RoleTeacher,
		IsAdmin:  true,
	}
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		return err
	}

	log.Info("admin user seeded",
		zap.String("email", adminEmail),
		zap.String("password", adminPassword),
	)
	return nil
}
