package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"vocalstudio.app/backend/internal/entity"
	search "vocalstudio.app/backend/internal/modules/search/service"
	"vocalstudio.app/backend/internal/modules/user/dto"
	"vocalstudio.app/backend/internal/modules/user/repository"
	"vocalstudio.app/backend/pkg/apperror"
	"vocalstudio.app/backend/pkg/database"
	"vocalstudio.app/backend/pkg/sanitizer"
	"vocalstudio.app/backend/pkg/token"
)

type AuthService interface {
	Signup(ctx context.Context, input dto.SignupInput) (*dto.AuthResponse, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
	ListTeachers(ctx context.Context) ([]dto.TeacherResponse, error)
}

// RateLimiter is satisfied by *ratelimiter.Limiter.
type RateLimiter interface {
	Allow(ctx context.Context, action, subject string, window time.Duration) error
	Clear(ctx context.Context, action, subject string) error
}

type authService struct {
	repo       repository.UserRepository
	tokens     *token.Manager
	limiter    RateLimiter
	rateWindow time.Duration
	search     search.SearchService
	log        *zap.Logger
}

// NewAuthService wires the auth flows. search may be nil.
func NewAuthService(
	repo repository.UserRepository,
	tokens *token.Manager,
	limiter RateLimiter,
	rateWindow time.Duration,
	search search.SearchService,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:       repo,
		tokens:     tokens,
		limiter:    limiter,
		rateWindow: rateWindow,
		search:     search,
		log:        log,
	}
}

func (s *authService) Signup(ctx context.Context, input dto.SignupInput) (res *dto.AuthResponse, err error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := s.limiter.Allow(ctx, "signup", email, s.rateWindow); err != nil {
		return nil, err
	}
	// A rejected signup gives the slot back so the form can be corrected.
	defer func() {
		if err == nil {
			return
		}
		if clearErr := s.limiter.Clear(ctx, "signup", email); clearErr != nil {
			s.log.Warn("failed to release signup rate limit", zap.Error(clearErr))
		}
	}()

	role := entity.Role(input.Role)
	if !role.Valid() {
		return nil, apperror.BadRequest("Role must be either teacher or student")
	}

	name := sanitizer.Text(input.Name)
	if name == "" {
		return nil, apperror.BadRequest("Name, email, password, and role are required")
	}

	var phone *string
	if input.Phone != nil {
		if p := entity.NormalizePhone(*input.Phone); p != "" {
			phone = &p
		}
	}

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.AlreadyExists("Email already exists")
	}

	if phone != nil {
		exists, err := s.repo.ExistsByPhone(ctx, *phone)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperror.AlreadyExists("Phone number already exists")
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entity.User{
		Email:    email,
		Password: string(hashed),
		Name:     name,
		Role:     role,
		Phone:    phone,
	}

	var profile *entity.StudentProfile
	if role == entity.RoleStudent {
		profile, err = s.repo.CreateStudent(ctx, user)
	} else {
		err = s.repo.Create(ctx, user)
	}
	if err != nil {
		return nil, translateUniqueViolation(err)
	}

	if profile != nil {
		s.log.Info("student auto-assigned from pre-registration",
			zap.String("user_id", user.ID.String()),
			zap.String("teacher_id", profile.TeacherID.String()),
		)
		if s.search != nil {
			if err := s.search.IndexStudent(ctx, profile); err != nil {
				s.log.Warn("failed to index student", zap.Error(err))
			}
		}
	}

	res, err = s.buildAuthResponse(user)
	if err != nil {
		return nil, err
	}
	res.AutoAssigned = profile != nil
	return res, nil
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := s.limiter.Allow(ctx, "login", email, s.rateWindow); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperror.Unauthorized("Invalid credentials")
		}
		return nil, err
	}

	if user.Role != entity.Role(input.Role) {
		return nil, apperror.Unauthorized("Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return nil, apperror.Unauthorized("Invalid credentials")
	}

	return s.buildAuthResponse(user)
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, err
	}
	res := dto.NewUserResponse(user)
	return &res, nil
}

func (s *authService) ListTeachers(ctx context.Context) ([]dto.TeacherResponse, error) {
	teachers, err := s.repo.ListByRole(ctx, entity.RoleTeacher)
	if err != nil {
		return nil, err
	}

	res := make([]dto.TeacherResponse, 0, len(teachers))
	for _, t := range teachers {
		res = append(res, dto.TeacherResponse{ID: t.ID, Name: t.Name, Email: t.Email})
	}
	return res, nil
}

func (s *authService) buildAuthResponse(user *entity.User) (*dto.AuthResponse, error) {
	signed, expiresAt, err := s.tokens.Generate(user.ID, user.Email, user.Role.String(), user.IsAdmin)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		User:      dto.NewUserResponse(user),
		Token:     signed,
		TokenType: "Bearer",
		ExpiresIn: expiresAt,
	}, nil
}

// translateUniqueViolation covers the race where two signups pass the
// existence checks together.
func translateUniqueViolation(err error) error {
	if !database.IsUniqueViolation(err) {
		return err
	}
	if strings.Contains(database.ConstraintName(err), "phone") {
		return apperror.AlreadyExists("Phone number already exists")
	}
	return apperror.AlreadyExists("Email already exists")
}
