package ports

import (
	"context"

	"github.com/douradolabs/backoffice/internal/core/domain"
)

// CreateUserInput carries the fields an administrator submits for a new account.
type CreateUserInput struct {
	Name  string
	Email string
	Role  string
}

// CreateUserResult is returned after a successful create. The record is the
// store's canonical representation, not an echo of the input. The temporary
// password is shown exactly once; only its hash is persisted.
type CreateUserResult struct {
	User              domain.User
	TemporaryPassword string
}

// ChangePasswordInput carries the self-service password change fields.
// Confirmation of the new password is a client-side concern and is not part
// of the server contract.
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

// UserService defines the administrative operations. Every method takes the
// request credentials and authorizes them itself; authorization is never
// cached across calls.
type UserService interface {
	ListUsers(ctx context.Context, creds Credentials) ([]domain.User, error)
	GetCurrentUser(ctx context.Context, creds Credentials) (*domain.User, error)
	CreateUser(ctx context.Context, creds Credentials, input CreateUserInput) (*CreateUserResult, error)
	ChangePassword(ctx context.Context, creds Credentials, input ChangePasswordInput) error
}

// AuthService handles session issuance and teardown.
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Logout(ctx context.Context, creds Credentials) error
}
