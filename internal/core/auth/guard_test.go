package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/douradolabs/backoffice/internal/core/domain"
	"github.com/douradolabs/backoffice/internal/core/ports"
)

type stubSessions struct {
	principals map[string]*domain.Principal
	err        error
	calls      int
}

func (s *stubSessions) Resolve(_ context.Context, creds ports.Credentials) (*domain.Principal, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.principals[creds.Token], nil
}

func TestGuard_Unauthenticated(t *testing.T) {
	sessions := &stubSessions{principals: map[string]*domain.Principal{}}
	g := NewGuard(sessions, zerolog.Nop())

	_, err := g.Authorize(context.Background(), ports.Credentials{Token: "nope"}, domain.RoleNone)
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestGuard_ProviderFailureIsUnauthenticated(t *testing.T) {
	sessions := &stubSessions{err: errors.New("redis down")}
	g := NewGuard(sessions, zerolog.Nop())

	_, err := g.Authorize(context.Background(), ports.Credentials{Token: "tok"}, domain.RoleNone)
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestGuard_ForbiddenBelowMinimum(t *testing.T) {
	sessions := &stubSessions{principals: map[string]*domain.Principal{
		"tok": {UserID: "u1", Role: domain.RoleUser},
	}}
	g := NewGuard(sessions, zerolog.Nop())

	_, err := g.Authorize(context.Background(), ports.Credentials{Token: "tok"}, domain.RoleAdmin)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestGuard_ElevatedRolesPass(t *testing.T) {
	sessions := &stubSessions{principals: map[string]*domain.Principal{
		"admin": {UserID: "u1", Role: domain.RoleAdmin},
		"super": {UserID: "u2", Role: domain.RoleSuperAdmin},
	}}
	g := NewGuard(sessions, zerolog.Nop())

	for _, token := range []string{"admin", "super"} {
		p, err := g.Authorize(context.Background(), ports.Credentials{Token: token}, domain.RoleAdmin)
		if err != nil {
			t.Fatalf("token %q: unexpected error: %v", token, err)
		}
		if p == nil || p.UserID == "" {
			t.Fatalf("token %q: expected principal, got %+v", token, p)
		}
	}
}

func TestGuard_ReEvaluatesEveryCall(t *testing.T) {
	sessions := &stubSessions{principals: map[string]*domain.Principal{
		"tok": {UserID: "u1", Role: domain.RoleAdmin},
	}}
	g := NewGuard(sessions, zerolog.Nop())

	if _, err := g.Authorize(context.Background(), ports.Credentials{Token: "tok"}, domain.RoleAdmin); err != nil {
		t.Fatalf("first call: %v", err)
	}

	// Session revoked between requests: the next call must see it.
	delete(sessions.principals, "tok")
	if _, err := g.Authorize(context.Background(), ports.Credentials{Token: "tok"}, domain.RoleAdmin); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated after revocation, got %v", err)
	}
	if sessions.calls != 2 {
		t.Fatalf("expected 2 provider calls, got %d", sessions.calls)
	}
}
