package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vocalstudio.app/backend/internal/entity"
	"vocalstudio.app/backend/internal/modules/stat/dto"
	"vocalstudio.app/backend/pkg/apperror"
	"vocalstudio.app/backend/pkg/response"
)

type stubStatService struct {
	called string
}

func (s *stubStatService) TeacherStats(context.Context, uuid.UUID) (*dto.TeacherStats, error) {
	s.called = "teacher"
	return &dto.TeacherStats{TotalStudents: 3}, nil
}

func (s *stubStatService) StudentStats(context.Context, uuid.UUID) (*dto.StudentStats, error) {
	s.called = "student"
	return &dto.StudentStats{TotalFeedback: 2}, nil
}

func (s *stubStatService) StudentDashboard(context.Context, uuid.UUID) (*dto.StudentDashboard, error) {
	return &dto.StudentDashboard{Stats: dto.DashboardStats{AverageRating: 4.5}}, nil
}

func (s *stubStatService) StudentProfile(context.Context, uuid.UUID) (*dto.StudentProfileResponse, error) {
	return nil, apperror.NotFound("Student profile not found")
}

func newRouter(svc *stubStatService, role entity.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(response.KeyUserID, uuid.NewString())
		c.Set(response.KeyRole, string(role))
	})

	h := NewStatHandler(svc)
	r.GET("/dashboard/stats", h.GetDashboardStats)
	r.GET("/student/dashboard", h.GetStudentDashboard)
	r.GET("/student/profile", h.GetStudentProfile)
	return r
}

func serve(r *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]any) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestDashboardStatsFollowsRole(t *testing.T) {
	svc := &stubStatService{}

	w, body := serve(newRouter(svc, entity.RoleTeacher), "/dashboard/stats")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "teacher", svc.called)
	assert.Equal(t, float64(3), body["total_students"])

	w, body = serve(newRouter(svc, entity.RoleStudent), "/dashboard/stats")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "student", svc.called)
	assert.Equal(t, float64(2), body["total_feedback"])
}

func TestStudentRoutesRejectTeachers(t *testing.T) {
	r := newRouter(&stubStatService{}, entity.RoleTeacher)

	for _, path := range []string{"/student/dashboard", "/student/profile"} {
		w, body := serve(r, path)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
		assert.Equal(t, "Forbidden - Student access only", body["error"], path)
	}
}

func TestStudentDashboardUsesCamelCase(t *testing.T) {
	w, body := serve(newRouter(&stubStatService{}, entity.RoleStudent), "/student/dashboard")
	require.Equal(t, http.StatusOK, w.Code)

	stats, ok := body["stats"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 4.5, stats["averageRating"])
	assert.Contains(t, body, "upcomingLessons")
	assert.Nil(t, body["profile"])
}

func TestStudentProfileNotFound(t *testing.T) {
	w, body := serve(newRouter(&stubStatService{}, entity.RoleStudent), "/student/profile")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Student profile not found", body["error"])
}
