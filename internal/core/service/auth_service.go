package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/miapp/secure-notes/internal/core/domain"
	"github.com/miapp/secure-notes/internal/core/ports"
)

// AuthService implements registration and login.
type AuthService struct {
	users     ports.UserRepository
	hasher    ports.PasswordHasher
	tokens    ports.TokenService
	validate  *validator.Validate
	log       zerolog.Logger
	now       func() time.Time
	dummyHash string
}

// NewAuthService precomputes a throwaway hash so a login for an unknown
// email costs the same as a wrong password.
func NewAuthService(users ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenService, log zerolog.Logger) (*AuthService, error) {
	seed := make([]byte, 16)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("auth service: dummy seed: %w", err)
	}
	dummy, err := hasher.Hash(hex.EncodeToString(seed))
	if err != nil {
		return nil, fmt.Errorf("auth service: dummy hash: %w", err)
	}

	return &AuthService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		validate:  validator.New(),
		log:       log,
		now:       time.Now,
		dummyHash: dummy,
	}, nil
}

// WithClock replaces the time source. Intended for tests.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

func (s *AuthService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	name = strings.TrimSpace(name)

	if err := s.validateEmail(email); err != nil {
		return nil, err
	}
	if len(password) < 8 || len(password) > 72 {
		return nil, domain.NewValidationError("password", "password must be between 8 and 72 bytes")
	}
	if name == "" || len([]rune(name)) > 100 {
		return nil, domain.NewValidationError("name", "name must be between 1 and 100 characters")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("user_id", created.ID).Msg("user registered")
	return created, nil
}

// Login runs validate → look up → verify → issue. Every credential failure
// surfaces as the same domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = domain.NormalizeEmail(email)

	if password == "" {
		return nil, domain.NewValidationError("password", "password is required")
	}
	if err := s.validateEmail(email); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		s.hasher.Verify(password, s.dummyHash)
		return nil, domain.ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email, s.now())
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("user_id", user.ID).Msg("login succeeded")

	return &ports.LoginResult{
		User:      user.Public(),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *AuthService) validateEmail(email string) error {
	if email == "" {
		return domain.NewValidationError("email", "email is required")
	}
	if err := s.validate.Var(email, "email"); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return domain.NewValidationError("email", "email must be a valid email")
		}
		return err
	}
	return nil
}
