package ports

import (
	"context"

	"github.com/miapp/secure-notes/internal/core/domain"
)

// UserRepository is the Credential Store.
type UserRepository interface {
	// FindByEmail returns (nil, nil) when no user has that email.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create fails with domain.ErrUserExists when the email is taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Count(ctx context.Context) (int64, error)
}
