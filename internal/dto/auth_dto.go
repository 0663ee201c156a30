package dto

import (
	"time"

	"github.com/danieliancu/AICodeMaster/internal/models"
)

// RegisterRequest captures the payload for creating a learner account.
type RegisterRequest struct {
	FullName string `json:"full_name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Language string `json:"language" validate:"omitempty,min=2,max=8"`
}

// LoginRequest captures the payload for an email/password login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse serializes an account for API clients.
type UserResponse struct {
	ID                uint       `json:"id"`
	FullName          string     `json:"full_name"`
	Email             string     `json:"email"`
	PreferredLanguage string     `json:"preferred_language"`
	LastLoginAt       *time.Time `json:"last_login_at"`
	CreatedAt         time.Time  `json:"created_at"`
}

// NewUserResponse converts a model into a DTO.
func NewUserResponse(model models.User) UserResponse {
	return UserResponse{
		ID:                model.ID,
		FullName:          model.FullName,
		Email:             model.Email,
		PreferredLanguage: model.PreferredLanguage,
		LastLoginAt:       model.LastLoginAt,
		CreatedAt:         model.CreatedAt,
	}
}

// AuthResponse carries the issued bearer token and its owner.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}
