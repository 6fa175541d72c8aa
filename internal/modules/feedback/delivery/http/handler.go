package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"vocalstudio.app/backend/internal/modules/feedback/dto"
	feedbackService "vocalstudio.app/backend/internal/modules/feedback/service"
	"vocalstudio.app/backend/pkg/apperror"
	commonDto "vocalstudio.app/backend/pkg/dto"
	"vocalstudio.app/backend/pkg/response"
	"vocalstudio.app/backend/pkg/validator"
)

type FeedbackHandler struct {
	feedbackService feedbackService.FeedbackService
}

func NewFeedbackHandler(feedbackService feedbackService.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

func feedbackID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperror.NotFound("Feedback not found")
	}
	return id, nil
}

func (h *FeedbackHandler) GetFeedbacks(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var query dto.ListFeedbackQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.feedbackService.List(c.Request.Context(), actor, query)
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to get feedback")
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *FeedbackHandler) GetUnviewedReactionsCount(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	count, err := h.feedbackService.UnviewedReactionsCount(c.Request.Context(), actor)
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to count reactions")
		return
	}

	c.JSON(http.StatusOK, commonDto.CountResponse{Count: count})
}

func (h *FeedbackHandler) GetFeedback(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := feedbackID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.feedbackService.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to get feedback")
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *FeedbackHandler) CreateFeedback(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.CreateFeedbackInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.feedbackService.Create(c.Request.Context(), actor, input)
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to create feedback")
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *FeedbackHandler) UpdateFeedback(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := feedbackID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.UpdateFeedbackInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.feedbackService.Update(c.Request.Context(), actor, id, input)
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to update feedback")
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *FeedbackHandler) React(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := feedbackID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.ReactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.feedbackService.React(c.Request.Context(), actor, id, input)
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to save reaction")
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *FeedbackHandler) ViewReaction(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := feedbackID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.feedbackService.ViewReaction(c.Request.Context(), actor, id)
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to mark reaction as viewed")
		return
	}

	c.JSON(http.StatusOK, res)
}
