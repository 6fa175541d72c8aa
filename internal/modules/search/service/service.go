package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"
	"vocalstudio.app/backend/internal/entity"
	"vocalstudio.app/backend/pkg/sanitizer"
)

const studentsIndex = "students"

// SearchService keeps the student index in Meilisearch and answers the
// teacher's roster search.
type SearchService interface {
	// IndexStudent upserts profile. profile.User must be loaded.
	IndexStudent(ctx context.Context, profile *entity.StudentProfile) error
	DeleteStudent(ctx context.Context, profileID uuid.UUID) error
	// SearchStudents returns matching profile ids of teacherID, best first.
	SearchStudents(ctx context.Context, teacherID uuid.UUID, query string, limit int) ([]uuid.UUID, error)
}

type meiliSearchService struct {
	client meilisearch.ServiceManager
	log    *zap.Logger
}

func NewMeiliSearchService(client meilisearch.ServiceManager, log *zap.Logger) SearchService {
	s := &meiliSearchService{client: client, log: log}
	s.initIndexes()
	return s
}

func (s *meiliSearchService) initIndexes() {
	filterable := []any{"teacher_id", "is_active"}
	if _, err := s.client.Index(studentsIndex).UpdateFilterableAttributes(&filterable); err != nil {
		s.log.Warn("failed to update students filterable attributes", zap.Error(err))
	}

	searchable := []string{"name", "email", "phone", "voice_type", "level", "goals"}
	if _, err := s.client.Index(studentsIndex).UpdateSearchableAttributes(&searchable); err != nil {
		s.log.Warn("failed to update students searchable attributes", zap.Error(err))
	}

	s.log.Info("meilisearch indexes initialized")
}

type studentDoc struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	TeacherID string `json:"teacher_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	VoiceType string `json:"voice_type"`
	Level     string `json:"level"`
	Goals     string `json:"goals"`
	IsActive  bool   `json:"is_active"`
}

func newStudentDoc(p *entity.StudentProfile) studentDoc {
	doc := studentDoc{
		ID:        p.ID.String(),
		UserID:    p.UserID.String(),
		TeacherID: p.TeacherID.String(),
		VoiceType: deref(p.VoiceType),
		Level:     deref(p.Level),
		Goals:     sanitizer.Strip(deref(p.Goals)),
		IsActive:  p.IsActive,
	}
	if p.User != nil {
		doc.Name = p.User.Name
		doc.Email = p.User.Email
		doc.Phone = deref(p.User.Phone)
	}
	return doc
}

func (s *meiliSearchService) IndexStudent(ctx context.Context, profile *entity.StudentProfile) error {
	if profile == nil || profile.User == nil {
		return fmt.Errorf("student profile user not loaded")
	}

	task, err := s.client.Index(studentsIndex).AddDocuments([]studentDoc{newStudentDoc(profile)}, strPtr("id"))
	if err != nil {
		return fmt.Errorf("index student %s: %w", profile.ID, err)
	}
	s.log.Debug("indexed student", zap.String("profile_id", profile.ID.String()), zap.Int64("task_uid", task.TaskUID))
	return nil
}

func (s *meiliSearchService) DeleteStudent(ctx context.Context, profileID uuid.UUID) error {
	_, err := s.client.Index(studentsIndex).DeleteDocument(profileID.String())
	return err
}

func (s *meiliSearchService) SearchStudents(ctx context.Context, teacherID uuid.UUID, query string, limit int) ([]uuid.UUID, error) {
	raw, err := s.client.Index(studentsIndex).SearchRaw(query, &meilisearch.SearchRequest{
		Filter:               TeacherFilter(teacherID),
		Limit:                int64(limit),
		AttributesToRetrieve: []string{"id"},
	})
	if err != nil {
		return nil, fmt.Errorf("search students: %w", err)
	}
	return decodeHitIDs(*raw)
}

// TeacherFilter scopes a search to one teacher's roster.
func TeacherFilter(teacherID uuid.UUID) string {
	return fmt.Sprintf("teacher_id = '%s'", teacherID.String())
}

func decodeHitIDs(raw json.RawMessage) ([]uuid.UUID, error) {
	var body struct {
		Hits []struct {
			ID string `json:"id"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(body.Hits))
	for _, h := range body.Hits {
		id, err := uuid.Parse(strings.TrimSpace(h.ID))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strPtr(s string) *string {
	return &s
}
