package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	statService "vocalstudio.app/backend/internal/modules/stat/service"
	"vocalstudio.app/backend/pkg/apperror"
	"vocalstudio.app/backend/pkg/response"
)

type StatHandler struct {
	statService statService.StatService
}

func NewStatHandler(statService statService.StatService) *StatHandler {
	return &StatHandler{statService: statService}
}

// GetDashboardStats answers with the teacher or the student view depending
// on the caller's role.
func (h *StatHandler) GetDashboardStats(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var res any
	if actor.IsTeacher() {
		res, err = h.statService.TeacherStats(c.Request.Context(), actor.ID)
	} else {
		res, err = h.statService.StudentStats(c.Request.Context(), actor.ID)
	}
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to get dashboard stats")
		return
	}

	c.JSON(http.StatusOK, res)
}

// requireStudent rejects anyone who is not a student.
func requireStudent(c *gin.Context) (uuid.UUID, error) {
	actor, err := response.GetActor(c)
	if err != nil {
		return uuid.Nil, err
	}
	if !actor.IsStudent() {
		return uuid.Nil, apperror.Forbidden("Forbidden - Student access only")
	}
	return actor.ID, nil
}

func (h *StatHandler) GetStudentDashboard(c *gin.Context) {
	studentID, err := requireStudent(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.statService.StudentDashboard(c.Request.Context(), studentID)
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to get student dashboard data")
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *StatHandler) GetStudentProfile(c *gin.Context) {
	studentID, err := requireStudent(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.statService.StudentProfile(c.Request.Context(), studentID)
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to get student profile")
		return
	}

	c.JSON(http.StatusOK, res)
}
