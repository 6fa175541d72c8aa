package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"vocalstudio.app/backend/internal/modules/user/dto"
	userService "vocalstudio.app/backend/internal/modules/user/service"
	"vocalstudio.app/backend/pkg/ratelimiter"
	"vocalstudio.app/backend/pkg/response"
	"vocalstudio.app/backend/pkg/validator"
)

type AuthHandler struct {
	authService userService.AuthService
}

func NewAuthHandler(authService userService.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var input dto.SignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.authService.Signup(c.Request.Context(), input)
	if err != nil {
		writeAuthError(c, err, "Signup failed")
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input dto.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		writeAuthError(c, err, "Login failed")
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to get user information")
		return
	}

	c.JSON(http.StatusOK, res)
}

// Logout is a no-op: tokens are stateless and dropped by the client.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *AuthHandler) ListTeachers(c *gin.Context) {
	res, err := h.authService.ListTeachers(c.Request.Context())
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to get teachers")
		return
	}

	c.JSON(http.StatusOK, res)
}

func writeAuthError(c *gin.Context, err error, fallback string) {
	var rateLimitErr *ratelimiter.RateLimitError
	if errors.As(err, &rateLimitErr) {
		c.Header("Retry-After", strconv.Itoa(int(rateLimitErr.RetryAfter.Seconds())+1))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       rateLimitErr.Message,
			"retry_after": rateLimitErr.RetryAfter.Seconds(),
		})
		return
	}
	response.ResponseErrorWithFallback(c, err, fallback)
}
