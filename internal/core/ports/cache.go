package ports

import (
	"context"

	"github.com/douradolabs/backoffice/internal/core/domain"
)

// Projection identifies a cached read-side view.
type Projection string

// ProjectionUsersList is the cached result of ListUsers.
const ProjectionUsersList Projection = "users:list"

// ProjectionCache holds read-side projections with best-effort semantics:
// a cache failure never fails the operation, it only forces a store read.
type ProjectionCache interface {
	GetUsersList(ctx context.Context) ([]domain.User, bool)
	SetUsersList(ctx context.Context, users []domain.User)
	Invalidate(ctx context.Context, p Projection)
}
