package sqlite

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miapp/secure-notes/internal/core/domain"
)

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	created := newTestUser(t, repo, "Alice@Example.com")
	assert.NotZero(t, created.ID)
	assert.Equal(t, "alice@example.com", created.Email)

	found, err := repo.FindByEmail(ctx, "ALICE@example.COM")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "hash", found.PasswordHash)
	assert.True(t, created.CreatedAt.Equal(found.CreatedAt))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestUserRepository_FindMissingIsNotAnError(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	u, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	newTestUser(t, repo, "u@example.com")

	_, err := repo.Create(context.Background(), &domain.User{
		Email: "U@EXAMPLE.COM", PasswordHash: "h", Name: "dup", CreatedAt: time.Now(), UpdatedAt: time.Now(),
	})
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestUserRepository_ConcurrentDuplicateCreatesOneRow(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	const writers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(ctx, &domain.User{
				Email: "race@example.com", PasswordHash: "h", Name: "r", CreatedAt: time.Now(), UpdatedAt: time.Now(),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrUserExists):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, writers-1, conflicts)
}
