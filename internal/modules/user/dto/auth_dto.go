package dto

import (
	"github.com/google/uuid"
	"vocalstudio.app/backend/internal/entity"
)

type SignupInput struct {
	Name     string  `json:"name" binding:"required,max=100"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=6"`
	Phone    *string `json:"phone"`
	Role     string  `json:"role" binding:"required,oneof=teacher student"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=teacher student"`
}

type UserResponse struct {
	ID      uuid.UUID   `json:"id"`
	Email   string      `json:"email"`
	Name    string      `json:"name"`
	Role    entity.Role `json:"role"`
	IsAdmin bool        `json:"is_admin"`
	Avatar  *string     `json:"avatar"`
	Phone   *string     `json:"phone"`
}

func NewUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name,
		Role:    u.Role,
		IsAdmin: u.IsAdmin,
		Avatar:  u.Avatar,
		Phone:   u.Phone,
	}
}

type AuthResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresIn int64        `json:"expires_in"`
	// AutoAssigned is set on signup when a pre-registration matched.
	AutoAssigned bool `json:"auto_assigned,omitempty"`
}

type TeacherResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}
