package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"vocalstudio.app/backend/internal/modules/admin/dto"
	adminService "vocalstudio.app/backend/internal/modules/admin/service"
	studentDto "vocalstudio.app/backend/internal/modules/student/dto"
	"vocalstudio.app/backend/pkg/apperror"
	"vocalstudio.app/backend/pkg/response"
	"vocalstudio.app/backend/pkg/validator"
)

// AdminHandler routes sit behind RequireAdmin.
type AdminHandler struct {
	adminService adminService.AdminService
}

func NewAdminHandler(adminService adminService.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

func (h *AdminHandler) GetStats(c *gin.Context) {
	res, err := h.adminService.Stats(c.Request.Context())
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to get statistics")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *AdminHandler) GetTeacherLessonStats(c *gin.Context) {
	res, err := h.adminService.TeacherLessonStats(c.Request.Context())
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to get teacher lesson statistics")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *AdminHandler) GetTeachers(c *gin.Context) {
	res, err := h.adminService.Teachers(c.Request.Context())
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to get teachers")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *AdminHandler) GetTeacherStudents(c *gin.Context) {
	teacherID, err := uuid.Parse(c.Param("teacherId"))
	if err != nil {
		response.ResponseError(c, apperror.NotFound("Teacher not found"))
		return
	}

	res, err := h.adminService.TeacherStudents(c.Request.Context(), teacherID)
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to get teacher students")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *AdminHandler) GetStudents(c *gin.Context) {
	res, err := h.adminService.Students(c.Request.Context())
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to get students")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *AdminHandler) AssignStudent(c *gin.Context) {
	var input dto.AssignStudentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	profile, err := h.adminService.AssignStudent(c.Request.Context(), input)
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to assign student")
		return
	}

	c.JSON(http.StatusCreated, studentDto.AssignStudentResponse{
		Message: "Student assigned successfully",
		Profile: *profile,
	})
}

func (h *AdminHandler) ReassignStudent(c *gin.Context) {
	var input dto.ReassignStudentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	profile, err := h.adminService.ReassignStudent(c.Request.Context(), input)
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to reassign student")
		return
	}

	c.JSON(http.StatusOK, studentDto.AssignStudentResponse{
		Message: "Student reassigned successfully",
		Profile: *profile,
	})
}

func (h *AdminHandler) GetLessons(c *gin.Context) {
	var query dto.ListLessonsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.adminService.Lessons(c.Request.Context(), query)
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to get lessons")
		return
	}
	c.JSON(http.StatusOK, res)
}
