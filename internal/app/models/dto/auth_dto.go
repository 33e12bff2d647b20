package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yigit/paperarchive/internal/app/models"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Name       string `json:"name" binding:"required,max=120"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=6"`
	University string `json:"university" binding:"max=160"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// UserResponse is the public profile of a user. The password hash never leaves the server.
type UserResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Avatar     string    `json:"avatar,omitempty"`
	University string    `json:"university,omitempty"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  UserResponse  `json:"user"`
}

// NewUserResponse converts a user model into its public profile
func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Avatar:     derefString(u.Avatar),
		University: derefString(u.University),
		Role:       string(u.Role),
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
