package ports

import (
	"context"

	"github.com/douradolabs/backoffice/internal/core/domain"
)

// UserRepository is the durable keeper of user records.
type UserRepository interface {
	FindAll(ctx context.Context) ([]domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Insert persists a new record. Email uniqueness is enforced by the
	// store; a duplicate yields domain.ErrEmailTaken.
	Insert(ctx context.Context, user *domain.User) (*domain.User, error)
	// UpdatePasswordHash replaces the stored hash only if it still equals
	// expectedHash, so a verify+write pair cannot race a concurrent change.
	// A filter miss (record gone or hash moved) yields domain.ErrWrongPassword.
	UpdatePasswordHash(ctx context.Context, id, expectedHash, newHash string) error
	// Count reports the number of stored records. Used for bootstrap.
	Count(ctx context.Context) (int64, error)
}
