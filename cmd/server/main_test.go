package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ConfigErrorIsReturned(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	err := run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestRun_RedisFailureReturnsAfterOpeningStorage(t *testing.T) {
	t.Setenv("JWT_SECRET", "server-test-secret")
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "notes.db"))
	t.Setenv("SEED_ON_START", "false")
	t.Setenv("LOG_LEVEL", "error")
	// Nothing listens on port 1.
	t.Setenv("REDIS_ADDR", "127.0.0.1:1")

	err := run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect redis")
}
