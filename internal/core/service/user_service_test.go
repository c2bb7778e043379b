package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/douradolabs/backoffice/internal/core/auth"
	"github.com/douradolabs/backoffice/internal/core/domain"
	"github.com/douradolabs/backoffice/internal/core/ports"
)

// stubUserRepo is an in-memory UserRepository with the same uniqueness and
// conditional-update semantics as the Mongo implementation.
type stubUserRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	nextID int
	calls  int
	fail   error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func (r *stubUserRepo) observe() error {
	r.calls++
	return r.fail
}

func (r *stubUserRepo) FindAll(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.observe(); err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.observe(); err != nil {
		return nil, err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.observe(); err != nil {
		return nil, err
	}
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Insert(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.observe(); err != nil {
		return nil, err
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	r.nextID++
	clone := *user
	clone.ID = fmt.Sprintf("u%d", r.nextID)
	r.users[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubUserRepo) UpdatePasswordHash(_ context.Context, id, expectedHash, newHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.observe(); err != nil {
		return err
	}
	u, ok := r.users[id]
	if !ok || u.PasswordHash != expectedHash {
		return domain.ErrWrongPassword
	}
	u.PasswordHash = newHash
	return nil
}

func (r *stubUserRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

type stubSessions struct {
	principals map[string]*domain.Principal
}

func (s *stubSessions) Resolve(_ context.Context, creds ports.Credentials) (*domain.Principal, error) {
	return s.principals[creds.Token], nil
}

type recordingCache struct {
	users       []domain.User
	filled      bool
	invalidated []ports.Projection
}

func (c *recordingCache) GetUsersList(context.Context) ([]domain.User, bool) {
	if !c.filled {
		return nil, false
	}
	return c.users, true
}

func (c *recordingCache) SetUsersList(_ context.Context, users []domain.User) {
	c.users = users
	c.filled = true
}

func (c *recordingCache) Invalidate(_ context.Context, p ports.Projection) {
	c.filled = false
	c.invalidated = append(c.invalidated, p)
}

func newTestService(repo *stubUserRepo, cache ports.ProjectionCache, principals map[string]*domain.Principal) *UserService {
	guard := auth.NewGuard(&stubSessions{principals: principals}, zerolog.Nop())
	return NewUserService(guard, repo, cache, zerolog.Nop())
}

func seedUser(t *testing.T, repo *stubUserRepo, name, email, password string, role domain.Role) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u, err := repo.Insert(context.Background(), &domain.User{
		Name: name, Email: email, Role: role, IsEnabled: true, PasswordHash: string(hash),
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	repo.calls = 0
	return u
}

func TestListUsers_ForbiddenBelowElevated(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, nil, map[string]*domain.Principal{
		"tok": {UserID: "u1", Role: domain.RoleUser},
	})

	_, err := svc.ListUsers(context.Background(), ports.Credentials{Token: "tok"})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if repo.calls != 0 {
		t.Fatalf("store observed %d calls, want 0", repo.calls)
	}
}

func TestOperations_UnauthenticatedBeforeStore(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, nil, map[string]*domain.Principal{})
	ctx := context.Background()
	creds := ports.Credentials{Token: "nope"}

	if _, err := svc.ListUsers(ctx, creds); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("ListUsers: expected ErrUnauthenticated, got %v", err)
	}
	if _, err := svc.GetCurrentUser(ctx, creds); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("GetCurrentUser: expected ErrUnauthenticated, got %v", err)
	}
	if _, err := svc.CreateUser(ctx, creds, ports.CreateUserInput{Name: "a", Email: "a@x.com", Role: "ADMIN"}); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("CreateUser: expected ErrUnauthenticated, got %v", err)
	}
	if err := svc.ChangePassword(ctx, creds, ports.ChangePasswordInput{CurrentPassword: "a", NewPassword: "b"}); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("ChangePassword: expected ErrUnauthenticated, got %v", err)
	}

	if repo.calls != 0 {
		t.Fatalf("store observed %d calls, want 0", repo.calls)
	}
}

func TestCreateUser_BlankFieldsSkipStore(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, nil, map[string]*domain.Principal{
		"admin": {UserID: "u1", Role: domain.RoleAdmin},
	})
	creds := ports.Credentials{Token: "admin"}

	cases := []ports.CreateUserInput{
		{Name: "", Email: "a@x.com", Role: "ADMIN"},
		{Name: "Ana", Email: "", Role: "ADMIN"},
		{Name: "Ana", Email: "a@x.com", Role: ""},
		{Name: "   ", Email: "a@x.com", Role: "ADMIN"},
		{Name: "Ana", Email: "\t\n", Role: "ADMIN"},
		{Name: "Ana", Email: "a@x.com", Role: "  "},
	}
	for _, input := range cases {
		if _, err := svc.CreateUser(context.Background(), creds, input); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("input %+v: expected ErrValidation, got %v", input, err)
		}
	}
	if repo.calls != 0 {
		t.Fatalf("Insert reached the store %d times, want 0", repo.calls)
	}
}

func TestCreateUser_UnknownRole(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, nil, map[string]*domain.Principal{
		"admin": {UserID: "u1", Role: domain.RoleAdmin},
	})

	_, err := svc.CreateUser(context.Background(), ports.Credentials{Token: "admin"},
		ports.CreateUserInput{Name: "Ana", Email: "ana@x.com", Role: "OVERLORD"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if repo.calls != 0 {
		t.Fatalf("Insert reached the store %d times, want 0", repo.calls)
	}
}

func TestCreateUser_ForbiddenForUserTier(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, nil, map[string]*domain.Principal{
		"tok": {UserID: "u1", Role: domain.RoleUser},
	})

	_, err := svc.CreateUser(context.Background(), ports.Credentials{Token: "tok"},
		ports.CreateUserInput{Name: "Ana", Email: "ana@x.com", Role: "USER"})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCreateUser_ConcurrentDuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, nil, map[string]*domain.Principal{
		"admin": {UserID: "u0", Role: domain.RoleSuperAdmin},
	})
	creds := ports.Credentials{Token: "admin"}
	input := ports.CreateUserInput{Name: "Ana", Email: "ana@x.com", Role: "ADMIN"}

	const n = 8
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateUser(context.Background(), creds, input)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrEmailTaken):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflicts != n-1 {
		t.Fatalf("got %d successes and %d conflicts, want 1 and %d", ok, conflicts, n-1)
	}

	count, _ := repo.Count(context.Background())
	if count != 1 {
		t.Fatalf("store holds %d records for the email, want 1", count)
	}
}

func TestCreateUser_RoundTripThroughList(t *testing.T) {
	repo := newStubUserRepo()
	cache := &recordingCache{}
	svc := newTestService(repo, cache, map[string]*domain.Principal{
		"admin": {UserID: "u0", Role: domain.RoleAdmin},
	})
	creds := ports.Credentials{Token: "admin"}

	result, err := svc.CreateUser(context.Background(), creds,
		ports.CreateUserInput{Name: "Ana", Email: "ana@x.com", Role: "ADMIN"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if result.User.ID == "" {
		t.Fatalf("expected canonical record with ID, got %+v", result.User)
	}
	if result.User.PasswordHash != "" {
		t.Fatalf("result leaked password hash")
	}
	if result.TemporaryPassword == "" {
		t.Fatalf("expected a temporary password")
	}

	users, err := svc.ListUsers(context.Background(), creds)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}
	u := users[0]
	if u.Name != "Ana" || u.Email != "ana@x.com" || u.Role != domain.RoleAdmin || !u.IsEnabled {
		t.Fatalf("round-trip mismatch: %+v", u)
	}
}

func TestCreateUser_InvalidatesUsersListProjection(t *testing.T) {
	repo := newStubUserRepo()
	cache := &recordingCache{}
	svc := newTestService(repo, cache, map[string]*domain.Principal{
		"admin": {UserID: "u0", Role: domain.RoleAdmin},
	})
	creds := ports.Credentials{Token: "admin"}

	if _, err := svc.ListUsers(context.Background(), creds); err != nil {
		t.Fatalf("warm cache: %v", err)
	}
	if !cache.filled {
		t.Fatalf("expected cache to be filled after list")
	}

	if _, err := svc.CreateUser(context.Background(), creds,
		ports.CreateUserInput{Name: "Bea", Email: "bea@x.com", Role: "USER"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if cache.filled {
		t.Fatalf("users list projection not invalidated by create")
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != ports.ProjectionUsersList {
		t.Fatalf("unexpected invalidations: %v", cache.invalidated)
	}

	users, err := svc.ListUsers(context.Background(), creds)
	if err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("refetch returned %d users, want 1", len(users))
	}
}

func TestGetCurrentUser_StripsHashAndMissingRecordIsDefect(t *testing.T) {
	repo := newStubUserRepo()
	u := seedUser(t, repo, "Ana", "ana@x.com", "s3cret", domain.RoleUser)
	svc := newTestService(repo, nil, map[string]*domain.Principal{
		"tok":   {UserID: u.ID, Role: u.Role},
		"ghost": {UserID: "u404", Role: domain.RoleUser},
	})

	got, err := svc.GetCurrentUser(context.Background(), ports.Credentials{Token: "tok"})
	if err != nil {
		t.Fatalf("GetCurrentUser: %v", err)
	}
	if got.Email != "ana@x.com" || got.PasswordHash != "" {
		t.Fatalf("unexpected record: %+v", got)
	}

	if _, err := svc.GetCurrentUser(context.Background(), ports.Credentials{Token: "ghost"}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound for orphan principal, got %v", err)
	}
}

func TestChangePassword_WrongCurrentLeavesHashUntouched(t *testing.T) {
	repo := newStubUserRepo()
	u := seedUser(t, repo, "Ana", "ana@x.com", "oldpass", domain.RoleUser)
	before := repo.users[u.ID].PasswordHash
	svc := newTestService(repo, nil, map[string]*domain.Principal{
		"tok": {UserID: u.ID, Role: u.Role},
	})

	err := svc.ChangePassword(context.Background(), ports.Credentials{Token: "tok"},
		ports.ChangePasswordInput{CurrentPassword: "wrong", NewPassword: "newpass"})
	if !errors.Is(err, domain.ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
	if repo.users[u.ID].PasswordHash != before {
		t.Fatalf("stored hash changed on failed verification")
	}
}

func TestChangePassword_BlankFieldsSkipStore(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, nil, map[string]*domain.Principal{
		"tok": {UserID: "u1", Role: domain.RoleUser},
	})

	for _, input := range []ports.ChangePasswordInput{
		{CurrentPassword: "", NewPassword: "new"},
		{CurrentPassword: "old", NewPassword: "   "},
	} {
		if err := svc.ChangePassword(context.Background(), ports.Credentials{Token: "tok"}, input); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("input %+v: expected ErrValidation, got %v", input, err)
		}
	}
	if repo.calls != 0 {
		t.Fatalf("store observed %d calls, want 0", repo.calls)
	}
}

func TestChangePassword_Success(t *testing.T) {
	repo := newStubUserRepo()
	u := seedUser(t, repo, "Ana", "ana@x.com", "oldpass", domain.RoleUser)
	svc := newTestService(repo, nil, map[string]*domain.Principal{
		"tok": {UserID: u.ID, Role: u.Role},
	})

	if err := svc.ChangePassword(context.Background(), ports.Credentials{Token: "tok"},
		ports.ChangePasswordInput{CurrentPassword: "oldpass", NewPassword: "newpass"}); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	stored := repo.users[u.ID].PasswordHash
	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte("newpass")); err != nil {
		t.Fatalf("new password does not verify: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte("oldpass")); err == nil {
		t.Fatalf("old password still verifies")
	}
}

func TestChangePassword_ConcurrentChangesResolveDeterministically(t *testing.T) {
	repo := newStubUserRepo()
	u := seedUser(t, repo, "Ana", "ana@x.com", "oldpass", domain.RoleUser)
	svc := newTestService(repo, nil, map[string]*domain.Principal{
		"tok": {UserID: u.ID, Role: u.Role},
	})
	creds := ports.Credentials{Token: "tok"}

	const n = 4
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- svc.ChangePassword(context.Background(), creds, ports.ChangePasswordInput{
				CurrentPassword: "oldpass",
				NewPassword:     fmt.Sprintf("newpass%d", i),
			})
		}(i)
	}
	wg.Wait()
	close(errs)

	var ok int
	for err := range errs {
		if err == nil {
			ok++
		} else if !errors.Is(err, domain.ErrWrongPassword) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("%d concurrent changes succeeded, want exactly 1", ok)
	}

	stored := repo.users[u.ID].PasswordHash
	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte("oldpass")); err == nil {
		t.Fatalf("old password still verifies after a successful change")
	}
	if !strings.HasPrefix(stored, "$2") {
		t.Fatalf("stored value is not a bcrypt hash: %q", stored)
	}
}

func TestStoreFailureMapsToStoreUnavailable(t *testing.T) {
	repo := newStubUserRepo()
	repo.fail = errors.New("connection reset")
	svc := newTestService(repo, nil, map[string]*domain.Principal{
		"admin": {UserID: "u0", Role: domain.RoleAdmin},
	})

	_, err := svc.ListUsers(context.Background(), ports.Credentials{Token: "admin"})
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if strings.Contains(err.Error(), "connection reset") {
		t.Fatalf("internal detail leaked: %v", err)
	}
}
