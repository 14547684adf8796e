package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miapp/secure-notes/internal/core/domain"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("JWT_SECRET", "notesctl-test-secret")
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "notes.db"))
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("SEED_PASSWORD", "")
	return dir
}

func writePassword(t *testing.T, dir, password string) string {
	t.Helper()
	path := filepath.Join(dir, "password")
	require.NoError(t, os.WriteFile(path, []byte(password), 0o600))
	return path
}

func TestRun_Usage(t *testing.T) {
	setupEnv(t)

	err := run(context.Background(), nil, &bytes.Buffer{})
	assert.True(t, errors.Is(err, errUsage))

	err = run(context.Background(), []string{"frobnicate"}, &bytes.Buffer{})
	assert.True(t, errors.Is(err, errUsage))
}

func TestRun_MigrateLifecycle(t *testing.T) {
	setupEnv(t)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, run(ctx, []string{"migrate", "status"}, &out))
	assert.Equal(t, "schema version 0\n", out.String())

	out.Reset()
	require.NoError(t, run(ctx, []string{"migrate"}, &out))
	assert.Equal(t, "schema version 1\n", out.String())

	out.Reset()
	require.NoError(t, run(ctx, []string{"migrate", "down"}, &out))
	assert.Equal(t, "schema version 0\n", out.String())

	assert.Error(t, run(ctx, []string{"migrate", "sideways"}, &out))
}

func TestRun_CreateUserThenSeedSkips(t *testing.T) {
	dir := setupEnv(t)
	ctx := context.Background()
	pw := writePassword(t, dir, "pw123456\n")

	var out bytes.Buffer
	require.NoError(t, run(ctx, []string{"create-user", "Ops@Example.com", "--name", "Ops", "--password-file", pw}, &out))
	assert.Contains(t, out.String(), "<ops@example.com>")

	err := run(ctx, []string{"create-user", "ops@example.com", "--name", "Ops", "--password-file", pw}, &out)
	assert.ErrorIs(t, err, domain.ErrUserExists)

	out.Reset()
	require.NoError(t, run(ctx, []string{"seed", "--password-file", pw}, &out))
	assert.Contains(t, out.String(), "nothing seeded")
}

func TestRun_SeedEmptyStore(t *testing.T) {
	setupEnv(t)
	t.Setenv("SEED_PASSWORD", "seed-pass-1")

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"seed", "--email", "first@example.com"}, &out))
	assert.Equal(t, "seeded first@example.com\n", out.String())
}

func TestRun_CreateUserRequiresName(t *testing.T) {
	setupEnv(t)

	err := run(context.Background(), []string{"create-user", "a@example.com"}, &bytes.Buffer{})
	assert.True(t, errors.Is(err, errUsage))
}

func TestReadPasswordFile(t *testing.T) {
	dir := t.TempDir()

	got, err := readPasswordFile(writePassword(t, dir, "s3cret-pass\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "s3cret-pass", got)

	_, err = readPasswordFile(writePassword(t, dir, "\n"))
	assert.Error(t, err)

	_, err = readPasswordFile(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
