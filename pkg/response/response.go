package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"vocalstudio.app/backend/internal/entity"
	"vocalstudio.app/backend/pkg/apperror"
)

// Context keys set by the auth middleware.
const (
	KeyUserID  = "user_id"
	KeyRole    = "role"
	KeyIsAdmin = "is_admin"
)

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get(KeyUserID)
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	s, ok := userIDStr.(string)
	if !ok {
		return uuid.Nil, apperror.ErrUnauthorized
	}
	userID, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// GetActor bundles the caller's id, role and admin flag.
func GetActor(c *gin.Context) (entity.Actor, error) {
	userID, err := GetUserID(c)
	if err != nil {
		return entity.Actor{}, err
	}
	role := entity.Role(GetRole(c))
	if !role.Valid() {
		return entity.Actor{}, apperror.ErrUnauthorized
	}
	return entity.Actor{ID: userID, Role: role, IsAdmin: IsAdmin(c)}, nil
}

func GetRole(c *gin.Context) string {
	return c.GetString(KeyRole)
}

func IsAdmin(c *gin.Context) bool {
	return c.GetBool(KeyIsAdmin)
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	ResponseErrorWithFallback(c, err, "Internal server error")
}

// ResponseErrorWithFallback hides internal errors behind fallback.
func ResponseErrorWithFallback(c *gin.Context, err error, fallback string) {
	code := apperror.MapErrorToStatus(err)

	if code == http.StatusInternalServerError {
		zap.L().Error("internal error",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}

	c.JSON(code, gin.H{"error": apperror.PublicMessage(err, fallback)})
}

// UploadError writes the error envelope used by the upload endpoints.
func UploadError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"success": false,
		"error":   gin.H{"message": message},
	})
}

func UploadSuccess(c *gin.Context, code int, data any) {
	c.JSON(code, gin.H{
		"success": true,
		"data":    data,
	})
}
