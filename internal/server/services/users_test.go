package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/avolkov/filevault/internal/common"
	"github.com/avolkov/filevault/internal/server/auth"
	"github.com/avolkov/filevault/internal/server/models"
	"github.com/avolkov/filevault/internal/server/repositories/users"
)

// --- helpers ---

func newTestUserService(t *testing.T, repo users.Repository) *UserService {
	t.Helper()
	hasher := auth.NewPBKDF2Hasher(auth.WithIterations(1000))
	issuer := auth.NewTokenIssuer([]byte("test-secret"), 30*time.Minute)
	s, err := NewUserService(repo, hasher, issuer)
	if err != nil {
		t.Fatalf("NewUserService error: %v", err)
	}
	return s
}

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	getOut *models.User
	getErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	u.ID = "id-1"
	return u, nil
}

func (f *fakeUsersRepo) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

// --- Register ---

func TestRegister_Success(t *testing.T) {
	s := newTestUserService(t, users.NewInMemoryRepository())

	u, err := s.Register(context.Background(), "alice", "pw123")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if u.UserName != "alice" {
		t.Fatalf("username mismatch: %q", u.UserName)
	}
	if u.PasswordHash == "" || u.PasswordHash == "pw123" {
		t.Fatalf("password must be stored hashed, got %q", u.PasswordHash)
	}
}

func TestRegister_EmptyInput(t *testing.T) {
	s := newTestUserService(t, users.NewInMemoryRepository())

	for _, tc := range []struct{ username, password string }{
		{"", "pw"},
		{"alice", ""},
		{"", ""},
	} {
		_, err := s.Register(context.Background(), tc.username, tc.password)
		if !errors.Is(err, common.ErrInvalidInput) {
			t.Fatalf("Register(%q, %q): want ErrInvalidInput, got %v", tc.username, tc.password, err)
		}
	}
}

func TestRegister_UsernameTaken(t *testing.T) {
	s := newTestUserService(t, users.NewInMemoryRepository())
	ctx := context.Background()

	if _, err := s.Register(ctx, "alice", "pw1"); err != nil {
		t.Fatalf("first Register error: %v", err)
	}

	_, err := s.Register(ctx, "alice", "completely-different")
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want ErrorAlreadyExists, got %v", err)
	}
}

func TestRegister_ConcurrentSameUsername(t *testing.T) {
	s := newTestUserService(t, users.NewInMemoryRepository())
	ctx := context.Background()

	const n = 16
	var wg sync.WaitGroup
	results := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Register(ctx, "race", "pw123")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, common.ErrorAlreadyExists):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || conflicts != n-1 {
		t.Fatalf("want 1 success and %d conflicts, got %d/%d", n-1, successes, conflicts)
	}
}

// --- Login ---

func TestLogin_SuccessRoundtrip(t *testing.T) {
	repo := users.NewInMemoryRepository()
	s := newTestUserService(t, repo)
	issuer := auth.NewTokenIssuer([]byte("test-secret"), 30*time.Minute)
	ctx := context.Background()

	if _, err := s.Register(ctx, "alice", "pw123"); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	tok, err := s.Login(ctx, "alice", "pw123")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if tok.TokenType != "bearer" {
		t.Fatalf("token type mismatch: %q", tok.TokenType)
	}

	subject, err := issuer.Verify(tok.AccessToken)
	if err != nil {
		t.Fatalf("issued token must verify: %v", err)
	}
	if subject != "alice" {
		t.Fatalf("token subject mismatch: %q", subject)
	}
}

func TestLogin_WrongPasswordAndUnknownUserIndistinguishable(t *testing.T) {
	s := newTestUserService(t, users.NewInMemoryRepository())
	ctx := context.Background()

	if _, err := s.Register(ctx, "alice", "pw123"); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	_, errWrongPassword := s.Login(ctx, "alice", "nope")
	_, errUnknownUser := s.Login(ctx, "charlie", "nope")

	if !errors.Is(errWrongPassword, common.ErrorUnauthorized) {
		t.Fatalf("wrong password: want ErrorUnauthorized, got %v", errWrongPassword)
	}
	if !errors.Is(errUnknownUser, common.ErrorUnauthorized) {
		t.Fatalf("unknown user: want ErrorUnauthorized, got %v", errUnknownUser)
	}
	if errWrongPassword.Error() != errUnknownUser.Error() {
		t.Fatalf("error messages differ: %q vs %q", errWrongPassword, errUnknownUser)
	}
}

func TestLogin_RepoFailureIsInternal(t *testing.T) {
	s := newTestUserService(t, &fakeUsersRepo{getErr: errors.New("connection reset")})

	_, err := s.Login(context.Background(), "alice", "pw")
	if !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("want ErrorInternal, got %v", err)
	}
}

// --- Authenticate ---

func TestAuthenticate_Success(t *testing.T) {
	s := newTestUserService(t, users.NewInMemoryRepository())
	ctx := context.Background()

	if _, err := s.Register(ctx, "alice", "pw123"); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	tok, err := s.Login(ctx, "alice", "pw123")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	user, err := s.Authenticate(ctx, tok.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if user.UserName != "alice" {
		t.Fatalf("identity mismatch: %q", user.UserName)
	}
}

func TestAuthenticate_GarbageToken(t *testing.T) {
	s := newTestUserService(t, users.NewInMemoryRepository())

	_, err := s.Authenticate(context.Background(), "garbage")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("want ErrorUnauthorized, got %v", err)
	}
}

func TestAuthenticate_TokenForMissingUser(t *testing.T) {
	// a structurally valid token whose subject no longer resolves must be
	// rejected: tokens are not a substitute for current account existence
	s := newTestUserService(t, &fakeUsersRepo{getErr: common.ErrorNotFound})
	issuer := auth.NewTokenIssuer([]byte("test-secret"), 30*time.Minute)

	tok, err := issuer.Issue("ghost", 0)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = s.Authenticate(context.Background(), tok)
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("want ErrorUnauthorized, got %v", err)
	}
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	s := newTestUserService(t, users.NewInMemoryRepository())
	issuer := auth.NewTokenIssuer([]byte("test-secret"), 30*time.Minute)
	ctx := context.Background()

	// the account exists, so a rejection can only come from the token itself
	if _, err := s.Register(ctx, "alice", "pw123"); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	tok, err := issuer.Issue("alice", -1*time.Second)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = s.Authenticate(ctx, tok)
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("want ErrorUnauthorized, got %v", err)
	}

	// same subject, non-expired token must still authenticate
	fresh, err := issuer.Issue("alice", time.Minute)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if _, err := s.Authenticate(ctx, fresh); err != nil {
		t.Fatalf("fresh token must authenticate: %v", err)
	}
}
