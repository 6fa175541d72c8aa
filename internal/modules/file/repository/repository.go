package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"vocalstudio.app/backend/internal/entity"
)

// Filter narrows a file listing. UploaderID and VisibleTo are mutually
// exclusive ways to scope it.
type Filter struct {
	UploaderID uuid.UUID
	StudentID  uuid.UUID
	// VisibleTo keeps files shared with this student or with everyone.
	VisibleTo  uuid.UUID
	TypePrefix string
}

func (f Filter) apply(db *gorm.DB) *gorm.DB {
	if f.UploaderID != uuid.Nil {
		db = db.Where("files.uploader_id = ?", f.UploaderID)
	}
	if f.StudentID != uuid.Nil {
		db = db.Where("files.student_id = ?", f.StudentID)
	}
	if f.VisibleTo != uuid.Nil {
		db = db.Where("files.student_id = ? OR files.student_id IS NULL", f.VisibleTo)
	}
	if f.TypePrefix != "" {
		db = db.Where("files.file_type LIKE ?", f.TypePrefix+"%")
	}
	return db
}

type FileRepository interface {
	Create(ctx context.Context, file *entity.File) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.File, error)
	List(ctx context.Context, filter Filter) ([]entity.File, error)
	Delete(ctx context.Context, id uuid.UUID) error
	IsStudent(ctx context.Context, userID uuid.UUID) (bool, error)
}

type fileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(ctx context.Context, file *entity.File) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *fileRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.File, error) {
	var file entity.File
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&file).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *fileRepository) List(ctx context.Context, filter Filter) ([]entity.File, error) {
	var files []entity.File
	err := filter.apply(r.db.WithContext(ctx).Model(&entity.File{})).
		Preload("Uploader", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name")
		}).
		Preload("Student", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name")
		}).
		Order("files.uploaded_at desc").
		Find(&files).Error
	return files, err
}

func (r *fileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.File{}).Error
}

func (r *fileRepository) IsStudent(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.User{}).
		Where("id = ? AND role = ?", userID, entity.RoleStudent).
		Count(&count).Error
	return count > 0, err
}
