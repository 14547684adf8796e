package ports

import (
	"context"
	"time"

	"github.com/miapp/secure-notes/internal/core/domain"
)

// LoginResult is handed back on a successful login.
type LoginResult struct {
	User      domain.PublicUser
	Token     string
	ExpiresAt time.Time
}

type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

// PasswordHasher hashes with a random salt and verifies in constant time.
// Verify returns false for malformed hashes instead of an error.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// TokenService issues and verifies stateless session tokens. Verify fails
// with an error matching domain.ErrUnauthorized for every rejection cause.
type TokenService interface {
	Issue(userID int64, email string, now time.Time) (string, time.Time, error)
	Verify(token string, now time.Time) (*domain.SessionClaims, error)
}
