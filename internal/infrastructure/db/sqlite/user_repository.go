package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/miapp/secure-notes/internal/core/domain"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail matches case-insensitively (the column is COLLATE NOCASE).
// It returns (nil, nil) when no user has that email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var (
		u                    domain.User
		createdAt, updatedAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, name, created_at, updated_at FROM users WHERE email = ?`,
		domain.NormalizeEmail(email),
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("find user", err)
	}

	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, mapError("find user", err)
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, mapError("find user", err)
	}
	return &u, nil
}

// Create inserts the user and returns it with its generated id. The UNIQUE
// index on email turns a concurrent duplicate into domain.ErrUserExists.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), opTimeout)
	defer cancel()

	created := *user
	created.Email = domain.NormalizeEmail(user.Email)

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		created.Email, created.PasswordHash, created.Name, formatTime(created.CreatedAt), formatTime(created.UpdatedAt),
	)
	if err != nil {
		return nil, mapError("create user", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, mapError("create user", err)
	}
	created.ID = id
	return &created, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, mapError("count users", err)
	}
	return n, nil
}
