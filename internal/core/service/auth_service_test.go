package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/miapp/secure-notes/internal/core/domain"
	"github.com/miapp/secure-notes/internal/infrastructure/security"
)

type stubUserRepo struct {
	users     map[string]*domain.User
	nextID    int64
	findErr   error
	findCalls int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.findCalls++
	if r.findErr != nil {
		return nil, r.findErr
	}
	return cloneUser(r.users[email]), nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Email]; exists {
		return nil, domain.ErrUserExists
	}
	r.nextID++
	copy := cloneUser(user)
	copy.ID = r.nextID
	r.users[copy.Email] = copy
	return cloneUser(copy), nil
}

func (r *stubUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

// countingHasher wraps bcrypt and records every Verify call.
type countingHasher struct {
	*security.BcryptHasher
	verifies []string
}

func (h *countingHasher) Verify(plaintext, hash string) bool {
	h.verifies = append(h.verifies, hash)
	return h.BcryptHasher.Verify(plaintext, hash)
}

var authTestNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestAuthService(t *testing.T) (*AuthService, *stubUserRepo, *countingHasher, *security.JWTService) {
	t.Helper()
	repo := newStubUserRepo()
	hasher := &countingHasher{BcryptHasher: security.NewBcryptHasher(bcrypt.MinCost)}
	tokens, err := security.NewJWTService("0123456789abcdef0123456789abcdef", "secure-notes-test")
	if err != nil {
		t.Fatalf("NewJWTService: %v", err)
	}
	svc, err := NewAuthService(repo, hasher, tokens, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	svc.WithClock(func() time.Time { return authTestNow })
	hasher.verifies = nil
	return svc, repo, hasher, tokens
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, repo, _, _ := newTestAuthService(t)

	user, err := svc.Register(context.Background(), "  Alice@Example.COM ", "pw123456", "Alice")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ID == 0 {
		t.Fatalf("expected store-assigned id")
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.PasswordHash == "pw123456" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(repo.users["alice@example.com"].PasswordHash), []byte("pw123456")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if !user.CreatedAt.Equal(authTestNow) || !user.UpdatedAt.Equal(authTestNow) {
		t.Fatalf("unexpected timestamps: %v / %v", user.CreatedAt, user.UpdatedAt)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)

	cases := []struct {
		name, email, password, display, field string
	}{
		{"empty email", "", "pw123456", "A", "email"},
		{"bad email", "not-an-email", "pw123456", "A", "email"},
		{"short password", "a@example.com", "short", "A", "password"},
		{"long password", "a@example.com", strings.Repeat("x", 73), "A", "password"},
		{"empty name", "a@example.com", "pw123456", "   ", "name"},
		{"long name", "a@example.com", "pw123456", strings.Repeat("n", 101), "name"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.email, tc.password, tc.display)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			var ve *domain.ValidationError
			if !errors.As(err, &ve) || ve.Field != tc.field {
				t.Fatalf("expected field %q, got %+v", tc.field, ve)
			}
		})
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)

	if _, err := svc.Register(context.Background(), "u@example.com", "pw123456", "U"); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, err := svc.Register(context.Background(), "U@EXAMPLE.com", "pw123456", "U")
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, _, _, tokens := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "u@example.com", "pw123456", "U")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	res, err := svc.Login(ctx, "U@example.com", "pw123456")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.User.ID != user.ID || res.User.Email != "u@example.com" || res.User.Name != "U" {
		t.Fatalf("unexpected public user: %+v", res.User)
	}
	if !res.ExpiresAt.Equal(authTestNow.Add(domain.SessionTTL)) {
		t.Fatalf("unexpected expiry: %v", res.ExpiresAt)
	}

	claims, err := tokens.Verify(res.Token, authTestNow.Add(domain.SessionTTL-time.Second))
	if err != nil {
		t.Fatalf("token rejected before expiry: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected subject %d, got %d", user.ID, claims.UserID)
	}
	if _, err := tokens.Verify(res.Token, authTestNow.Add(domain.SessionTTL)); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected token to expire at issued_at+24h, got %v", err)
	}
}

func TestAuthService_Login_NonEnumerable(t *testing.T) {
	svc, _, hasher, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "u@example.com", "pw123456", "U"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	hasher.verifies = nil

	_, errUnknown := svc.Login(ctx, "nobody@example.com", "pw123456")
	_, errWrong := svc.Login(ctx, "u@example.com", "wrong-password")

	if !errors.Is(errUnknown, domain.ErrInvalidCredentials) || !errors.Is(errWrong, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v / %v", errUnknown, errWrong)
	}
	if errUnknown.Error() != errWrong.Error() {
		t.Fatalf("messages differ: %q vs %q", errUnknown, errWrong)
	}
	if len(hasher.verifies) != 2 {
		t.Fatalf("expected a hash verification for both attempts, got %d", len(hasher.verifies))
	}
	if hasher.verifies[0] != svc.dummyHash {
		t.Fatalf("unknown email should be verified against the dummy hash")
	}
}

func TestAuthService_Login_Validation(t *testing.T) {
	svc, repo, _, _ := newTestAuthService(t)

	cases := map[string][2]string{
		"empty email":    {"", "pw123456"},
		"empty password": {"u@example.com", ""},
		"bad email":      {"u-at-example", "pw123456"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), in[0], in[1])
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
	if repo.findCalls != 0 {
		t.Fatalf("store must not be consulted for invalid input, got %d lookups", repo.findCalls)
	}
}

func TestAuthService_Login_StorageError(t *testing.T) {
	svc, repo, _, _ := newTestAuthService(t)
	repo.findErr = domain.ErrStorageBusy

	_, err := svc.Login(context.Background(), "u@example.com", "pw123456")
	if !errors.Is(err, domain.ErrStorageBusy) {
		t.Fatalf("expected ErrStorageBusy, got %v", err)
	}
}
