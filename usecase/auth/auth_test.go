package auth

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhive/backend/domain"
)

type fakeUserRepo struct {
	byEmail    map[string]*domain.User
	byUsername map[string]*domain.User
	nextID     int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail:    make(map[string]*domain.User),
		byUsername: make(map[string]*domain.User),
		nextID:     1,
	}
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	if u, ok := f.byUsername[username]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	user.ID = f.nextID
	f.nextID++
	f.byEmail[user.Email] = user
	f.byUsername[user.Username] = user
	return user, nil
}

type fakeTokenRepo struct {
	tokens map[string]*domain.RefreshToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*domain.RefreshToken)}
}

func (f *fakeTokenRepo) Create(_ context.Context, token *domain.RefreshToken) error {
	f.tokens[token.Token] = token
	return nil
}

func (f *fakeTokenRepo) GetByToken(_ context.Context, token string) (*domain.RefreshToken, error) {
	if t, ok := f.tokens[token]; ok {
		return t, nil
	}
	return nil, domain.ErrTokenNotFound
}

func (f *fakeTokenRepo) Revoke(_ context.Context, token string) error {
	if t, ok := f.tokens[token]; ok {
		t.Revoked = true
	}
	return nil
}

func newTestUseCase() (*UseCase, *fakeUserRepo, *fakeTokenRepo) {
	users := newFakeUserRepo()
	tokens := newFakeTokenRepo()
	uc := New(users, tokens, Config{
		Secret:     "test-secret",
		Issuer:     "test",
		BcryptCost: bcrypt.MinCost,
	}, nil)
	return uc, users, tokens
}

func TestRegisterIssuesTokens(t *testing.T) {
	uc, _, tokens := newTestUseCase()

	result, err := uc.Register(context.Background(), "alice", "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if result.User.Username != "alice" {
		t.Errorf("username = %q, want alice", result.User.Username)
	}
	if result.Tokens.AccessToken == "" || result.Tokens.RefreshToken == "" {
		t.Fatal("expected both tokens to be issued")
	}
	if _, ok := tokens.tokens[result.Tokens.RefreshToken]; !ok {
		t.Error("refresh token was not persisted")
	}

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(result.Tokens.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil {
		t.Fatalf("parsing access token: %v", err)
	}
	if claims.Subject != strconv.FormatInt(result.User.ID, 10) {
		t.Errorf("subject = %q, want user id %d", claims.Subject, result.User.ID)
	}
}

func TestRegisterAggregatesValidation(t *testing.T) {
	uc, _, _ := newTestUseCase()

	_, err := uc.Register(context.Background(), "ab", "not-an-email", "short")
	dErr, ok := domain.AsDomainError(err)
	if !ok || dErr.Code != domain.ErrCodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(dErr.Details) != 3 {
		t.Errorf("details = %d, want 3", len(dErr.Details))
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	uc, _, _ := newTestUseCase()

	if _, err := uc.Register(context.Background(), "alice", "alice@example.com", "secret1"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := uc.Register(context.Background(), "other", "alice@example.com", "secret1")
	if !domain.IsDomainError(err, domain.ErrCodeConflict) {
		t.Fatalf("expected CONFLICT for duplicate email, got %v", err)
	}
}

func TestLoginWrongPasswordUniformError(t *testing.T) {
	uc, _, _ := newTestUseCase()
	if _, err := uc.Register(context.Background(), "alice", "alice@example.com", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, errPassword := uc.Login(context.Background(), "alice@example.com", "wrong99")
	_, errEmail := uc.Login(context.Background(), "nobody@example.com", "secret1")

	for _, err := range []error{errPassword, errEmail} {
		dErr, ok := domain.AsDomainError(err)
		if !ok || dErr.Code != domain.ErrCodeUnauthorized {
			t.Fatalf("expected UNAUTHORIZED, got %v", err)
		}
		if dErr.Message != "Invalid email or password" {
			t.Errorf("message = %q, want the uniform credential error", dErr.Message)
		}
	}
}

func TestLoginSucceeds(t *testing.T) {
	uc, _, _ := newTestUseCase()
	if _, err := uc.Register(context.Background(), "alice", "alice@example.com", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}

	tokens, err := uc.Login(context.Background(), "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Error("expected a full token pair")
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	uc, _, tokenRepo := newTestUseCase()
	result, err := uc.Register(context.Background(), "alice", "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := uc.Logout(context.Background(), result.Tokens.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if !tokenRepo.tokens[result.Tokens.RefreshToken].Revoked {
		t.Error("refresh token not revoked")
	}

	// A missing token is not a logout failure.
	if err := uc.Logout(context.Background(), ""); err != nil {
		t.Errorf("empty token logout: %v", err)
	}
}

func TestLogoutUnknownTokenIsNoOp(t *testing.T) {
	uc, _, _ := newTestUseCase()

	if err := uc.Logout(context.Background(), "never-issued"); err != nil {
		t.Fatalf("Logout: %v", err)
	}
}

func TestLogoutSkipsExpiredToken(t *testing.T) {
	uc, _, tokenRepo := newTestUseCase()
	tokenRepo.tokens["stale"] = &domain.RefreshToken{
		UserID:    1,
		Token:     "stale",
		ExpiresAt: time.Now().Add(-time.Hour),
	}

	if err := uc.Logout(context.Background(), "stale"); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	// Dead tokens are left as they are; only active ones get revoked.
	if tokenRepo.tokens["stale"].Revoked {
		t.Error("expired token should not be flagged revoked")
	}
}
