package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"vocalstudio.app/backend/internal/entity"
)

// ProfileFilter narrows a roster query. Zero values are ignored.
type ProfileFilter struct {
	TeacherID uuid.UUID
	// NameLike matches the student's name case-insensitively.
	NameLike   string
	IDs        []uuid.UUID
	ActiveOnly bool
	// RecentFirst orders by last update instead of creation.
	RecentFirst bool
	Limit       int
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (f ProfileFilter) apply(db *gorm.DB) *gorm.DB {
	if f.TeacherID != uuid.Nil {
		db = db.Where("student_profiles.teacher_id = ?", f.TeacherID)
	}
	if f.NameLike != "" {
		db = db.Joins("JOIN users AS su ON su.id = student_profiles.user_id").
			Where("su.name ILIKE ?", "%"+likeEscaper.Replace(f.NameLike)+"%")
	}
	if f.IDs != nil {
		db = db.Where("student_profiles.id IN ?", f.IDs)
	}
	if f.ActiveOnly {
		db = db.Where("student_profiles.is_active = ?", true)
	}
	return db
}

type StudentRepository interface {
	// FindStudent returns the user only when it has the student role.
	FindStudent(ctx context.Context, userID uuid.UUID) (*entity.User, error)
	ListUnassigned(ctx context.Context) ([]entity.User, error)
	CountUnassigned(ctx context.Context) (int64, error)
	// ListStudents returns every student with profile and teacher loaded.
	ListStudents(ctx context.Context) ([]entity.User, error)

	FindProfile(ctx context.Context, id uuid.UUID) (*entity.StudentProfile, error)
	FindProfileByUser(ctx context.Context, userID uuid.UUID) (*entity.StudentProfile, error)
	HasProfile(ctx context.Context, userID uuid.UUID) (bool, error)
	CreateProfile(ctx context.Context, profile *entity.StudentProfile) error
	ListProfiles(ctx context.Context, filter ProfileFilter) ([]entity.StudentProfile, error)
	CountProfiles(ctx context.Context, filter ProfileFilter) (int64, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, fields map[string]any) error
	DeleteProfile(ctx context.Context, id uuid.UUID) error

	PhoneRegistered(ctx context.Context, phone string) (bool, error)
	PhonePreRegistered(ctx context.Context, phone string) (bool, error)
	CreatePreRegistration(ctx context.Context, pre *entity.PreRegistration) error
	ListPreRegistrations(ctx context.Context, teacherID uuid.UUID) ([]entity.PreRegistration, error)
	FindPreRegistration(ctx context.Context, id uuid.UUID) (*entity.PreRegistration, error)
	DeletePreRegistration(ctx context.Context, id uuid.UUID) error
}

type studentRepository struct {
	db *gorm.DB
}

func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func selectSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "email", "phone")
}

func withPeople(db *gorm.DB) *gorm.DB {
	return db.Preload("User", selectSummary).Preload("Teacher", selectSummary)
}

func (r *studentRepository) FindStudent(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Where("id = ? AND role = ?", userID, entity.RoleStudent).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func unassigned(db *gorm.DB) *gorm.DB {
	return db.Where("users.role = ?", entity.RoleStudent).
		Where("NOT EXISTS (SELECT 1 FROM student_profiles sp WHERE sp.user_id = users.id)")
}

func (r *studentRepository) ListUnassigned(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	err := unassigned(r.db.WithContext(ctx).Model(&entity.User{})).
		Order("users.created_at desc").
		Find(&users).Error
	return users, err
}

func (r *studentRepository) CountUnassigned(ctx context.Context) (int64, error) {
	var count int64
	err := unassigned(r.db.WithContext(ctx).Model(&entity.User{})).Count(&count).Error
	return count, err
}

func (r *studentRepository) ListStudents(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Where("role = ?", entity.RoleStudent).
		Preload("Profile").
		Preload("Profile.Teacher", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "email")
		}).
		Order("created_at desc").
		Find(&users).Error
	return users, err
}

func (r *studentRepository) FindProfile(ctx context.Context, id uuid.UUID) (*entity.StudentProfile, error) {
	var profile entity.StudentProfile
	if err := withPeople(r.db.WithContext(ctx)).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *studentRepository) FindProfileByUser(ctx context.Context, userID uuid.UUID) (*entity.StudentProfile, error) {
	var profile entity.StudentProfile
	if err := withPeople(r.db.WithContext(ctx)).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *studentRepository) HasProfile(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.StudentProfile{}).Where("user_id = ?", userID).Count(&count).Error
	return count > 0, err
}

func (r *studentRepository) CreateProfile(ctx context.Context, profile *entity.StudentProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *studentRepository) ListProfiles(ctx context.Context, filter ProfileFilter) ([]entity.StudentProfile, error) {
	var profiles []entity.StudentProfile
	q := withPeople(filter.apply(r.db.WithContext(ctx).Model(&entity.StudentProfile{})))
	if filter.RecentFirst {
		q = q.Order("student_profiles.updated_at desc")
	} else {
		q = q.Order("student_profiles.created_at desc")
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	err := q.Find(&profiles).Error
	return profiles, err
}

func (r *studentRepository) CountProfiles(ctx context.Context, filter ProfileFilter) (int64, error) {
	var count int64
	err := filter.apply(r.db.WithContext(ctx).Model(&entity.StudentProfile{})).Count(&count).Error
	return count, err
}

func (r *studentRepository) UpdateProfile(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&entity.StudentProfile{}).Where("id = ?", id).Updates(fields).Error
}

func (r *studentRepository) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.StudentProfile{}).Error
}

func (r *studentRepository) PhoneRegistered(ctx context.Context, phone string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.User{}).Where("phone = ?", phone).Count(&count).Error
	return count > 0, err
}

func (r *studentRepository) PhonePreRegistered(ctx context.Context, phone string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.PreRegistration{}).
		Where("student_phone = ? AND is_registered = ?", phone, false).
		Count(&count).Error
	return count > 0, err
}

func (r *studentRepository) CreatePreRegistration(ctx context.Context, pre *entity.PreRegistration) error {
	return r.db.WithContext(ctx).Create(pre).Error
}

func (r *studentRepository) ListPreRegistrations(ctx context.Context, teacherID uuid.UUID) ([]entity.PreRegistration, error) {
	var pres []entity.PreRegistration
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at desc").
		Find(&pres).Error
	return pres, err
}

func (r *studentRepository) FindPreRegistration(ctx context.Context, id uuid.UUID) (*entity.PreRegistration, error) {
	var pre entity.PreRegistration
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&pre).Error; err != nil {
		return nil, err
	}
	return &pre, nil
}

func (r *studentRepository) DeletePreRegistration(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.PreRegistration{}).Error
}
