package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"vocalstudio.app/backend/internal/modules/lesson/dto"
	lessonService "vocalstudio.app/backend/internal/modules/lesson/service"
	"vocalstudio.app/backend/pkg/apperror"
	"vocalstudio.app/backend/pkg/response"
	"vocalstudio.app/backend/pkg/validator"
)

type LessonHandler struct {
	lessonService lessonService.LessonService
}

func NewLessonHandler(lessonService lessonService.LessonService) *LessonHandler {
	return &LessonHandler{lessonService: lessonService}
}

func lessonID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperror.NotFound("Lesson not found")
	}
	return id, nil
}

func (h *LessonHandler) GetLessons(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var query dto.ListLessonsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.lessonService.List(c.Request.Context(), actor, query)
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to get lessons")
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *LessonHandler) GetLesson(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := lessonID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.lessonService.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to get lesson")
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *LessonHandler) GetLessonFeedback(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := lessonID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.lessonService.GetFeedback(c.Request.Context(), actor, id)
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to get feedback")
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *LessonHandler) CreateLesson(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.CreateLessonInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.lessonService.Create(c.Request.Context(), actor, input)
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to create lesson")
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *LessonHandler) UpdateLesson(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := lessonID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.UpdateLessonInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.lessonService.Update(c.Request.Context(), actor, id, input)
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to update lesson")
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *LessonHandler) CancelLesson(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := lessonID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.lessonService.Cancel(c.Request.Context(), actor, id)
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to cancel lesson")
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *LessonHandler) DeleteLesson(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := lessonID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.lessonService.Delete(c.Request.Context(), actor, id); err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to delete lesson")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Lesson deleted successfully"})
}
