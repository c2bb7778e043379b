package handler

import (
	"time"

	"github.com/douradolabs/backoffice/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx
// responses. Rendering happens in the centralized HTTP error handler; the
// type is declared here for the route annotations.
type errorResponse struct {
	Message string `json:"message"`
}

// --- Request types ---

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type createUserRequest struct {
	Name  string `json:"name"  validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role"  validate:"required"`
}

// changePasswordRequest accepts the confirmation field clients send, but the
// server contract is current + new only; matching confirmation is a UI-layer
// guard, not a security boundary.
type changePasswordRequest struct {
	CurrentPassword    string `json:"current_password" validate:"required"`
	NewPassword        string `json:"new_password"     validate:"required"`
	ConfirmNewPassword string `json:"confirm_new_password,omitempty"`
}

// --- Response types ---
// Intentionally separate from domain types so the JSON contract is not
// coupled to internal changes.

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsEnabled bool      `json:"is_enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		IsEnabled: u.IsEnabled,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type createUserResponse struct {
	User              userResponse `json:"user"`
	TemporaryPassword string       `json:"temporary_password"`
	Message           string       `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
}
