package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"vocalstudio.app/backend/internal/entity"
	lessonRepo "vocalstudio.app/backend/internal/modules/lesson/repository"
	lessonService "vocalstudio.app/backend/internal/modules/lesson/service"
	search "vocalstudio.app/backend/internal/modules/search/service"
	"vocalstudio.app/backend/internal/modules/student/dto"
	studentRepo "vocalstudio.app/backend/internal/modules/student/repository"
	"vocalstudio.app/backend/pkg/apperror"
	"vocalstudio.app/backend/pkg/database"
	commonDto "vocalstudio.app/backend/pkg/dto"
	"vocalstudio.app/backend/pkg/sanitizer"
)

const searchLimit = 100

const (
	msgAlreadyAssigned  = "Student already has a teacher assigned"
	msgPhoneRegistered  = "Phone number already registered - Student account exists"
	msgPhonePreRegister = "Phone number already pre-registered - Student will be auto-assigned on signup"
)

// LessonCounter is the slice of the lesson repository the roster needs.
type LessonCounter interface {
	Count(ctx context.Context, scope lessonRepo.Scope, filter lessonRepo.Filter) (int64, error)
}

type StudentService interface {
	ListUnassigned(ctx context.Context) ([]dto.UnassignedStudent, error)
	// Assign creates the profile tying studentID to teacherID.
	Assign(ctx context.Context, teacherID, studentID uuid.UUID) (*dto.StudentResponse, error)
	// Reassign moves an existing profile to another teacher. The caller
	// checks that newTeacherID is a teacher.
	Reassign(ctx context.Context, profileID, newTeacherID uuid.UUID) (*dto.StudentResponse, error)
	List(ctx context.Context, teacherID uuid.UUID, query dto.ListStudentsQuery) ([]dto.StudentResponse, error)
	Get(ctx context.Context, teacherID, profileID uuid.UUID) (*dto.StudentDetailResponse, error)
	Update(ctx context.Context, teacherID, profileID uuid.UUID, input dto.UpdateStudentInput) (*dto.StudentResponse, error)
	Delete(ctx context.Context, teacherID, profileID uuid.UUID) error

	PreRegister(ctx context.Context, teacherID uuid.UUID, input dto.CreateStudentInput) (*dto.PreRegistrationResponse, error)
	ListPreRegistrations(ctx context.Context, teacherID uuid.UUID) ([]entity.PreRegistration, error)
	DeletePreRegistration(ctx context.Context, teacherID, id uuid.UUID) error
}

type studentService struct {
	repo    studentRepo.StudentRepository
	lessons LessonCounter
	sweeper lessonService.Sweeper
	search  search.SearchService
	now     func() time.Time
	log     *zap.Logger
}

// NewStudentService wires the roster. search may be nil, in which case
// roster search falls back to SQL.
func NewStudentService(
	repo studentRepo.StudentRepository,
	lessons LessonCounter,
	sweeper lessonService.Sweeper,
	search search.SearchService,
	log *zap.Logger,
) StudentService {
	return &studentService{
		repo:    repo,
		lessons: lessons,
		sweeper: sweeper,
		search:  search,
		now:     time.Now,
		log:     log,
	}
}

func (s *studentService) ListUnassigned(ctx context.Context) ([]dto.UnassignedStudent, error) {
	users, err := s.repo.ListUnassigned(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewUnassignedStudents(users), nil
}

func (s *studentService) Assign(ctx context.Context, teacherID, studentID uuid.UUID) (*dto.StudentResponse, error) {
	if _, err := s.repo.FindStudent(ctx, studentID); err != nil {
		if database.IsNotFound(err) {
			return nil, apperror.NotFound("Student not found")
		}
		return nil, err
	}

	assigned, err := s.repo.HasProfile(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if assigned {
		return nil, apperror.BadRequest(msgAlreadyAssigned)
	}

	profile := &entity.StudentProfile{
		UserID:    studentID,
		TeacherID: teacherID,
		StartDate: s.now(),
		IsActive:  true,
	}
	if err := s.repo.CreateProfile(ctx, profile); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.BadRequest(msgAlreadyAssigned)
		}
		return nil, err
	}

	return s.reindex(ctx, profile.ID)
}

func (s *studentService) Reassign(ctx context.Context, profileID, newTeacherID uuid.UUID) (*dto.StudentResponse, error) {
	if _, err := s.findProfile(ctx, profileID); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateProfile(ctx, profileID, map[string]any{
		"teacher_id": newTeacherID,
		"updated_at": s.now(),
	}); err != nil {
		return nil, err
	}
	return s.reindex(ctx, profileID)
}

func (s *studentService) List(ctx context.Context, teacherID uuid.UUID, query dto.ListStudentsQuery) ([]dto.StudentResponse, error) {
	term := sanitizer.Text(query.Search)
	filter := studentRepo.ProfileFilter{TeacherID: teacherID}

	if term != "" && s.search != nil {
		ids, err := s.search.SearchStudents(ctx, teacherID, term, searchLimit)
		if err == nil {
			if len(ids) == 0 {
				return []dto.StudentResponse{}, nil
			}
			filter.IDs = ids
			profiles, err := s.repo.ListProfiles(ctx, filter)
			if err != nil {
				return nil, err
			}
			return dto.NewStudentResponses(orderByIDs(profiles, ids)), nil
		}
		s.log.Warn("student search failed, falling back to sql", zap.Error(err))
	}

	filter.NameLike = term
	profiles, err := s.repo.ListProfiles(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewStudentResponses(profiles), nil
}

// orderByIDs keeps the relevance order the search engine returned.
func orderByIDs(profiles []entity.StudentProfile, ids []uuid.UUID) []entity.StudentProfile {
	byID := make(map[uuid.UUID]entity.StudentProfile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}
	out := make([]entity.StudentProfile, 0, len(profiles))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

func (s *studentService) findProfile(ctx context.Context, id uuid.UUID) (*entity.StudentProfile, error) {
	profile, err := s.repo.FindProfile(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperror.NotFound("Student not found")
		}
		return nil, err
	}
	return profile, nil
}

func (s *studentService) findOwnProfile(ctx context.Context, teacherID, id uuid.UUID) (*entity.StudentProfile, error) {
	profile, err := s.findProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile.TeacherID != teacherID {
		return nil, apperror.NotFound("Student not found")
	}
	return profile, nil
}

func (s *studentService) Get(ctx context.Context, teacherID, profileID uuid.UUID) (*dto.StudentDetailResponse, error) {
	profile, err := s.findOwnProfile(ctx, teacherID, profileID)
	if err != nil {
		return nil, err
	}

	scope := lessonRepo.StudentScope(profile.UserID)
	if err := s.sweeper.Sweep(ctx, scope); err != nil {
		return nil, err
	}

	res := &dto.StudentDetailResponse{StudentResponse: dto.NewStudentResponse(profile)}
	if res.TotalLessons, err = s.lessons.Count(ctx, scope, lessonRepo.Filter{}); err != nil {
		return nil, err
	}
	if res.CompletedLessons, err = s.lessons.Count(ctx, scope, lessonRepo.Filter{
		Statuses: []entity.LessonStatus{entity.LessonCompleted},
	}); err != nil {
		return nil, err
	}
	now := s.now()
	if res.UpcomingLessons, err = s.lessons.Count(ctx, scope, lessonRepo.Filter{
		Statuses: []entity.LessonStatus{entity.LessonScheduled},
		From:     &now,
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *studentService) Update(ctx context.Context, teacherID, profileID uuid.UUID, input dto.UpdateStudentInput) (*dto.StudentResponse, error) {
	profile, err := s.findOwnProfile(ctx, teacherID, profileID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{"updated_at": s.now()}
	if input.VoiceType != nil {
		fields["voice_type"] = sanitizer.Ptr(input.VoiceType)
	}
	if input.Level != nil {
		fields["level"] = sanitizer.Ptr(input.Level)
	}
	if input.Goals != nil {
		fields["goals"] = sanitizer.Ptr(input.Goals)
	}
	if input.IsActive != nil {
		fields["is_active"] = *input.IsActive
	}

	if err := s.repo.UpdateProfile(ctx, profile.ID, fields); err != nil {
		return nil, err
	}
	return s.reindex(ctx, profile.ID)
}

func (s *studentService) Delete(ctx context.Context, teacherID, profileID uuid.UUID) error {
	profile, err := s.findOwnProfile(ctx, teacherID, profileID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteProfile(ctx, profile.ID); err != nil {
		return err
	}
	if s.search != nil {
		if err := s.search.DeleteStudent(ctx, profile.ID); err != nil {
			s.log.Warn("failed to remove student from search index", zap.String("profile_id", profile.ID.String()), zap.Error(err))
		}
	}
	return nil
}

// reindex reloads the profile with its people and pushes it to the search
// index when one is configured.
func (s *studentService) reindex(ctx context.Context, profileID uuid.UUID) (*dto.StudentResponse, error) {
	profile, err := s.findProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if s.search != nil {
		if err := s.search.IndexStudent(ctx, profile); err != nil {
			s.log.Warn("failed to index student", zap.String("profile_id", profile.ID.String()), zap.Error(err))
		}
	}
	res := dto.NewStudentResponse(profile)
	return &res, nil
}

func (s *studentService) PreRegister(ctx context.Context, teacherID uuid.UUID, input dto.CreateStudentInput) (*dto.PreRegistrationResponse, error) {
	name := sanitizer.Text(input.Name)
	phone := entity.NormalizePhone(input.Phone)
	if name == "" || phone == "" {
		return nil, apperror.BadRequest("Name and phone are required")
	}

	startDate := s.now()
	if input.StartDate != nil && *input.StartDate != "" {
		parsed, err := commonDto.ParseDate(*input.StartDate)
		if err != nil {
			return nil, apperror.BadRequest("Invalid start_date")
		}
		startDate = parsed
	}

	registered, err := s.repo.PhoneRegistered(ctx, phone)
	if err != nil {
		return nil, err
	}
	if registered {
		return nil, apperror.BadRequest(msgPhoneRegistered)
	}
	pending, err := s.repo.PhonePreRegistered(ctx, phone)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, apperror.BadRequest(msgPhonePreRegister)
	}

	pre := &entity.PreRegistration{
		TeacherID:    teacherID,
		StudentName:  name,
		StudentPhone: phone,
		VoiceType:    sanitizer.Ptr(input.VoiceType),
		Level:        sanitizer.Ptr(input.Level),
		Goals:        sanitizer.Ptr(input.Goals),
		StartDate:    startDate,
	}
	if err := s.repo.CreatePreRegistration(ctx, pre); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.BadRequest(msgPhonePreRegister)
		}
		return nil, err
	}

	return &dto.PreRegistrationResponse{
		PreRegistration: *pre,
		Message:         "Student pre-registered. They can now sign up with this phone number.",
	}, nil
}

func (s *studentService) ListPreRegistrations(ctx context.Context, teacherID uuid.UUID) ([]entity.PreRegistration, error) {
	pres, err := s.repo.ListPreRegistrations(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	if pres == nil {
		pres = []entity.PreRegistration{}
	}
	return pres, nil
}

func (s *studentService) DeletePreRegistration(ctx context.Context, teacherID, id uuid.UUID) error {
	pre, err := s.repo.FindPreRegistration(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return apperror.NotFound("Pre-registration not found")
		}
		return err
	}
	if pre.TeacherID != teacherID {
		return apperror.NotFound("Pre-registration not found")
	}
	if pre.IsRegistered {
		return apperror.BadRequest("Pre-registration was already used by a signup")
	}
	return s.repo.DeletePreRegistration(ctx, pre.ID)
}
