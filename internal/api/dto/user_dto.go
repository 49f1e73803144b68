package dto

import (
	"time"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// RegisterRequest payload.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the issued session token.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UserResponse is the public account shape.
type UserResponse struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role,omitempty"`
}

// UpdateProfileRequest carries optional self-service updates.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	Password    *string `json:"password"`
}

// CreateUserRequest is the admin user-creation payload.
type CreateUserRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// AssignRoleRequest payload.
type AssignRoleRequest struct {
	Role domain.Role `json:"role"`
}
