package storage

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miapp/secure-notes/internal/core/domain"
	"github.com/miapp/secure-notes/internal/infrastructure/config"
)

func TestOpen_SQLiteLifecycle(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{StorageDriver: DriverSQLite}
	cfg.SQLite.Path = "file:storage_lifecycle?mode=memory&cache=shared"
	cfg.SQLite.BusyTimeout = time.Second

	store, err := Open(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, store.Driver)
	require.NoError(t, store.Ping(ctx))

	now := time.Now()
	u, err := store.Users.Create(ctx, &domain.User{Email: "s@example.com", PasswordHash: "h", Name: "S", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)
	_, err = store.Notes.Create(ctx, &domain.Note{OwnerID: u.ID, Title: "T", Content: "C", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)

	require.NoError(t, store.Close(ctx))
	assert.Error(t, store.Ping(ctx))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{StorageDriver: "cassandra"}, zerolog.Nop())
	assert.Error(t, err)
}
