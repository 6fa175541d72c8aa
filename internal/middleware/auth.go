package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"vocalstudio.app/backend/internal/entity"
	"vocalstudio.app/backend/pkg/response"
	"vocalstudio.app/backend/pkg/token"
)

// UserFinder is the slice of the user repository the middleware needs.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

type AuthMiddleware struct {
	users  UserFinder
	tokens *token.Manager
}

func NewAuthMiddleware(users UserFinder, tokens *token.Manager) *AuthMiddleware {
	return &AuthMiddleware{
		users:  users,
		tokens: tokens,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")

		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		// Fallback to query parameter "token" (useful for WebSockets)
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access denied. No token provided."})
			return
		}

		claims, err := m.tokens.Parse(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(response.KeyUserID, claims.Subject)
		c.Set(response.KeyRole, claims.Role)
		c.Set(response.KeyIsAdmin, claims.IsAdmin)
		c.Next()
	}
}

// RequireRole lets through only callers whose token carries role.
func RequireRole(role entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if response.GetRole(c) != role.String() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied. " + role.Title() + " role required."})
			return
		}
		c.Next()
	}
}

// RequireAdmin re-reads the user so a revoked admin flag takes effect
// before the token expires.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := response.GetUserID(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			return
		}

		user, err := m.users.FindByID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}

		if !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}

		c.Set(response.KeyIsAdmin, true)
		c.Next()
	}
}
