// Package auth implements the authorization choke point every administrative
// operation passes through.
package auth

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/douradolabs/backoffice/internal/core/domain"
	"github.com/douradolabs/backoffice/internal/core/ports"
)

// Guard resolves request credentials to a principal and enforces the
// operation's minimum role. It is re-evaluated on every request; decisions
// are never cached, so a revoked session or demoted role takes effect on the
// next call.
type Guard struct {
	sessions ports.SessionProvider
	logger   zerolog.Logger
}

func NewGuard(sessions ports.SessionProvider, logger zerolog.Logger) *Guard {
	return &Guard{sessions: sessions, logger: logger}
}

// Authorize returns the authenticated principal behind creds, or
// domain.ErrUnauthenticated when no valid session exists, or
// domain.ErrForbidden when the session's role is below minRole.
// Pass domain.RoleNone as minRole for operations that only require
// authentication. A session-provider outage counts as unauthenticated
// rather than crashing the operation.
func (g *Guard) Authorize(ctx context.Context, creds ports.Credentials, minRole domain.Role) (*domain.Principal, error) {
	principal, err := g.sessions.Resolve(ctx, creds)
	if err != nil {
		g.logger.Warn().Err(err).Msg("session resolution failed")
		return nil, domain.ErrUnauthenticated
	}
	if principal == nil {
		return nil, domain.ErrUnauthenticated
	}

	if !principal.Role.Satisfies(minRole) {
		g.logger.Debug().
			Str("user_id", principal.UserID).
			Str("role", string(principal.Role)).
			Str("min_role", string(minRole)).
			Msg("authorization denied")
		return nil, domain.ErrForbidden
	}

	return principal, nil
}
