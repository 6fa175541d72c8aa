package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"vocalstudio.app/backend/internal/modules/student/dto"
	studentService "vocalstudio.app/backend/internal/modules/student/service"
	"vocalstudio.app/backend/pkg/apperror"
	commonDto "vocalstudio.app/backend/pkg/dto"
	"vocalstudio.app/backend/pkg/response"
	"vocalstudio.app/backend/pkg/validator"
)

// StudentHandler serves the teacher's roster. Routes sit behind
// RequireRole(teacher).
type StudentHandler struct {
	studentService studentService.StudentService
}

func NewStudentHandler(studentService studentService.StudentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

func pathID(c *gin.Context, notFound string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperror.NotFound("%s", notFound)
	}
	return id, nil
}

func (h *StudentHandler) GetUnassigned(c *gin.Context) {
	res, err := h.studentService.ListUnassigned(c.Request.Context())
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to get unassigned students")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *StudentHandler) Assign(c *gin.Context) {
	teacherID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.AssignStudentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	profile, err := h.studentService.Assign(c.Request.Context(), teacherID, uuid.MustParse(input.StudentID))
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to assign student")
		return
	}

	c.JSON(http.StatusCreated, dto.AssignStudentResponse{Message: "Student assigned successfully", Profile: *profile})
}

func (h *StudentHandler) GetStudents(c *gin.Context) {
	teacherID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var query dto.ListStudentsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.studentService.List(c.Request.Context(), teacherID, query)
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to get students")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *StudentHandler) GetStudent(c *gin.Context) {
	teacherID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := pathID(c, "Student not found")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.studentService.Get(c.Request.Context(), teacherID, id)
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to get student")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *StudentHandler) CreateStudent(c *gin.Context) {
	teacherID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.CreateStudentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.studentService.PreRegister(c.Request.Context(), teacherID, input)
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to pre-register student")
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *StudentHandler) GetPreRegistrations(c *gin.Context) {
	teacherID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.studentService.ListPreRegistrations(c.Request.Context(), teacherID)
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to get pre-registrations")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *StudentHandler) DeletePreRegistration(c *gin.Context) {
	teacherID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := pathID(c, "Pre-registration not found")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.studentService.DeletePreRegistration(c.Request.Context(), teacherID, id); err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to delete pre-registration")
		return
	}
	c.JSON(http.StatusOK, commonDto.MessageResponse{Message: "Pre-registration deleted successfully"})
}

func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	teacherID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := pathID(c, "Student not found")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.UpdateStudentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.studentService.Update(c.Request.Context(), teacherID, id, input)
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to update student")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	teacherID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := pathID(c, "Student not found")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.studentService.Delete(c.Request.Context(), teacherID, id); err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to delete student")
		return
	}
	c.JSON(http.StatusOK, commonDto.MessageResponse{Message: "Student deleted successfully"})
}
