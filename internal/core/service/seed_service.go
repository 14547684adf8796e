package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/miapp/secure-notes/internal/core/domain"
	"github.com/miapp/secure-notes/internal/core/ports"
)

// SeedAccount is the first account created on an empty store.
type SeedAccount struct {
	Email    string
	Name     string
	Password string
}

var sampleNotes = []struct{ title, content string }{
	{
		title: "Welcome to Secure Notes",
		content: "This is your first note. Use it for ideas, reminders and anything else worth keeping.\n\n" +
			"The service ships with:\n- Token based authentication\n- SQLite storage\n- Per-user note isolation",
	},
	{
		title:   "To-do list",
		content: "[x] Set up the service\n[ ] Review the security pipeline\n[ ] Document the process\n[ ] Run a penetration test",
	},
	{
		title: "Security notes",
		content: "Reminders:\n\n1. Rotate passwords regularly\n2. Enable two-factor authentication\n" +
			"3. Keep software up to date\n4. Take regular backups",
	},
}

// Seeder populates an empty store with one account and a few sample notes.
type Seeder struct {
	users  ports.UserRepository
	notes  ports.NoteRepository
	hasher ports.PasswordHasher
	logger zerolog.Logger
	now    func() time.Time
}

func NewSeeder(users ports.UserRepository, notes ports.NoteRepository, hasher ports.PasswordHasher, logger zerolog.Logger) *Seeder {
	return &Seeder{users: users, notes: notes, hasher: hasher, logger: logger, now: time.Now}
}

// Seed creates the account and sample notes when no user exists yet. It
// reports false without touching the store otherwise.
func (s *Seeder) Seed(ctx context.Context, account SeedAccount) (bool, error) {
	email := domain.NormalizeEmail(account.Email)
	if email == "" || strings.TrimSpace(account.Name) == "" {
		return false, errors.New("seed: email and name are required")
	}
	if len(account.Password) < 8 {
		return false, domain.NewValidationError("password", "seed password must be at least 8 bytes")
	}

	count, err := s.users.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("seed: count users: %w", err)
	}
	if count > 0 {
		s.logger.Info().Int64("users", count).Msg("store already initialized, skipping seed")
		return false, nil
	}

	hash, err := s.hasher.Hash(account.Password)
	if err != nil {
		return false, fmt.Errorf("seed: %w", err)
	}

	now := s.now().UTC()
	user, err := s.users.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(account.Name),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, domain.ErrUserExists) {
		// Lost a race against a concurrent seed or registration.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("seed: create user: %w", err)
	}

	for _, n := range sampleNotes {
		if _, err := s.notes.Create(ctx, &domain.Note{
			OwnerID:   user.ID,
			Title:     n.title,
			Content:   n.content,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return false, fmt.Errorf("seed: create note: %w", err)
		}
	}

	s.logger.Info().Str("email", email).Int("notes", len(sampleNotes)).Msg("store seeded")
	return true, nil
}
