package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/douradolabs/backoffice/internal/core/domain"
	"github.com/douradolabs/backoffice/internal/core/ports"
)

// AuthService implements login and logout on top of the session store.
type AuthService struct {
	repo       ports.UserRepository
	sessions   ports.SessionStore
	sessionTTL time.Duration
	logger     zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, sessions ports.SessionStore, sessionTTL time.Duration, logger zerolog.Logger) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{repo: repo, sessions: sessions, sessionTTL: sessionTTL, logger: logger}
}

// Login verifies the password and opens a session. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		s.logger.Error().Err(err).Msg("login: store failure")
		return "", nil, domain.ErrStoreUnavailable
	}

	if !user.IsEnabled {
		return "", nil, domain.ErrAccountDisabled
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ctx, domain.Principal{UserID: user.ID, Role: user.Role}, s.sessionTTL)
	if err != nil {
		s.logger.Error().Err(err).Msg("login: session creation failed")
		return "", nil, domain.ErrStoreUnavailable
	}

	s.logger.Info().Str("user_id", user.ID).Msg("session opened")

	out := *user
	out.PasswordHash = ""
	return token, &out, nil
}

// Logout revokes the session behind the credentials. Revoking a dead session
// is a no-op, not an error.
func (s *AuthService) Logout(ctx context.Context, creds ports.Credentials) error {
	if err := s.sessions.Revoke(ctx, creds); err != nil {
		s.logger.Error().Err(err).Msg("logout: revoke failed")
		return domain.ErrStoreUnavailable
	}
	return nil
}
