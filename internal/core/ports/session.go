package ports

import (
	"context"
	"time"

	"github.com/douradolabs/backoffice/internal/core/domain"
)

// Credentials carries the raw bearer token extracted from a request.
// An empty token means the request presented no credentials at all.
type Credentials struct {
	Token string
}

// SessionProvider resolves request credentials to an authenticated principal.
//
// Resolve returns (nil, nil) when no valid session exists: missing or
// malformed token, expired session, revoked session. Only infrastructure
// failures surface as errors; callers treat those as unauthenticated rather
// than crashing the operation.
type SessionProvider interface {
	Resolve(ctx context.Context, creds Credentials) (*domain.Principal, error)
}

// SessionStore issues and revokes sessions. Split from SessionProvider so
// that read-only consumers (the guard) cannot mint sessions.
type SessionStore interface {
	SessionProvider
	// Create opens a session for the principal and returns a bearer token.
	Create(ctx context.Context, principal domain.Principal, ttl time.Duration) (string, error)
	// Revoke invalidates the session behind the credentials. Revoking an
	// already-dead session is not an error.
	Revoke(ctx context.Context, creds Credentials) error
}
