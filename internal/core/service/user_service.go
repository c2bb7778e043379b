package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/douradolabs/backoffice/internal/core/auth"
	"github.com/douradolabs/backoffice/internal/core/domain"
	"github.com/douradolabs/backoffice/internal/core/ports"
)

// writeInvalidations declares, per write operation, which read-side
// projections it stales. Invalidation happens inside the write request, not
// as an incidental side effect at call sites.
var writeInvalidations = map[string][]ports.Projection{
	"create_user":     {ports.ProjectionUsersList},
	"change_password": {},
}

// UserService implements the four administrative operations. Every operation
// authorizes its own credentials through the guard before touching the store.
type UserService struct {
	guard  *auth.Guard
	repo   ports.UserRepository
	cache  ports.ProjectionCache
	logger zerolog.Logger
}

func NewUserService(guard *auth.Guard, repo ports.UserRepository, cache ports.ProjectionCache, logger zerolog.Logger) *UserService {
	return &UserService{guard: guard, repo: repo, cache: cache, logger: logger}
}

// ListUsers returns every user record, password hashes stripped. Requires an
// elevated role; a caller below the threshold gets ErrForbidden, never an
// empty list.
func (s *UserService) ListUsers(ctx context.Context, creds ports.Credentials) ([]domain.User, error) {
	if _, err := s.guard.Authorize(ctx, creds, domain.RoleAdmin); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if users, ok := s.cache.GetUsersList(ctx); ok {
			return users, nil
		}
	}

	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, s.storeErr("list_users", err)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}

	if s.cache != nil {
		s.cache.SetUsersList(ctx, users)
	}
	return users, nil
}

// GetCurrentUser returns the record backing the caller's principal.
func (s *UserService) GetCurrentUser(ctx context.Context, creds ports.Credentials) (*domain.User, error) {
	principal, err := s.guard.Authorize(ctx, creds, domain.RoleNone)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// A live session without a backing record is a defect, not a
			// normal miss; log loudly but answer honestly.
			s.logger.Error().Str("user_id", principal.UserID).Msg("session principal has no backing record")
			return nil, domain.ErrUserNotFound
		}
		return nil, s.storeErr("get_current_user", err)
	}

	user.PasswordHash = ""
	return user, nil
}

// CreateUser validates and persists a new account. The creating principal
// must hold an elevated role. A temporary password is generated, hashed and
// stored; the plaintext is returned exactly once in the result.
func (s *UserService) CreateUser(ctx context.Context, creds ports.Credentials, input ports.CreateUserInput) (*ports.CreateUserResult, error) {
	principal, err := s.guard.Authorize(ctx, creds, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	if name == "" || email == "" || strings.TrimSpace(input.Role) == "" {
		return nil, fmt.Errorf("%w: name, email and role are required", domain.ErrValidation)
	}
	role, err := domain.ParseRole(strings.TrimSpace(input.Role))
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a valid role", domain.ErrValidation, input.Role)
	}

	password := generateTemporaryPassword()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, s.storeErr("create_user", err)
	}

	created, err := s.repo.Insert(ctx, &domain.User{
		Name:         name,
		Email:        email,
		Role:         role,
		IsEnabled:    true,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, domain.ErrEmailTaken
		}
		return nil, s.storeErr("create_user", err)
	}

	s.invalidate(ctx, "create_user")
	s.logger.Info().
		Str("user_id", created.ID).
		Str("role", string(created.Role)).
		Str("created_by", principal.UserID).
		Msg("user created")

	record := *created
	record.PasswordHash = ""
	return &ports.CreateUserResult{User: record, TemporaryPassword: password}, nil
}

// ChangePassword verifies the caller's current password and swaps in a new
// hash. The update is conditional on the hash read at the start of this
// request, so two concurrent changes by the same user resolve
// deterministically: the loser's filter misses and it fails.
func (s *UserService) ChangePassword(ctx context.Context, creds ports.Credentials, input ports.ChangePasswordInput) error {
	principal, err := s.guard.Authorize(ctx, creds, domain.RoleNone)
	if err != nil {
		return err
	}

	current := strings.TrimSpace(input.CurrentPassword)
	next := strings.TrimSpace(input.NewPassword)
	if current == "" || next == "" {
		return fmt.Errorf("%w: current and new password are required", domain.ErrValidation)
	}

	user, err := s.repo.FindByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return s.storeErr("change_password", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return domain.ErrWrongPassword
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return s.storeErr("change_password", err)
	}

	if err := s.repo.UpdatePasswordHash(ctx, principal.UserID, user.PasswordHash, string(newHash)); err != nil {
		if errors.Is(err, domain.ErrWrongPassword) {
			return domain.ErrWrongPassword
		}
		return s.storeErr("change_password", err)
	}

	s.invalidate(ctx, "change_password")
	s.logger.Info().Str("user_id", principal.UserID).Msg("password changed")
	return nil
}

func (s *UserService) invalidate(ctx context.Context, op string) {
	if s.cache == nil {
		return
	}
	for _, p := range writeInvalidations[op] {
		s.cache.Invalidate(ctx, p)
	}
}

// storeErr maps unclassified collaborator failures to ErrStoreUnavailable so
// internal detail never reaches the caller. The cause is logged here.
func (s *UserService) storeErr(op string, err error) error {
	s.logger.Error().Err(err).Str("op", op).Msg("store failure")
	return fmt.Errorf("%w: %s", domain.ErrStoreUnavailable, op)
}

// generateTemporaryPassword returns a random 16-hex-char initial password for
// admin-created accounts.
func generateTemporaryPassword() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	return hex.EncodeToString(b)
}
