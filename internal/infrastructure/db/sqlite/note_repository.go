package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/miapp/secure-notes/internal/core/domain"
)

const noteColumns = `id, owner_id, title, content, created_at, updated_at`

// NoteRepository stores notes. Every statement is keyed on owner_id, and
// mutations are single statements matched on (id, owner_id).
//
// Mutations detach from the caller's cancellation: once issued they run to
// completion or fail as a whole, bounded only by opTimeout.
type NoteRepository struct {
	db *sql.DB
}

func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*domain.Note, error) {
	var (
		n                    domain.Note
		createdAt, updatedAt string
	)
	if err := row.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Content, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if n.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if n.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NoteRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Note, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE owner_id = ? ORDER BY updated_at DESC, id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, mapError("list notes", err)
	}
	defer rows.Close()

	out := []*domain.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, mapError("list notes", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list notes", err)
	}
	return out, nil
}

// Get returns (nil, nil) when no note has that id and owner.
func (r *NoteRepository) Get(ctx context.Context, ownerID, noteID int64) (*domain.Note, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	n, err := scanNote(r.db.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = ? AND owner_id = ?`,
		noteID, ownerID,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get note", err)
	}
	return n, nil
}

func (r *NoteRepository) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO notes (owner_id, title, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		note.OwnerID, note.Title, note.Content, formatTime(note.CreatedAt), formatTime(note.UpdatedAt),
	)
	if err != nil {
		return nil, mapError("create note", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, mapError("create note", err)
	}

	created := *note
	created.ID = id
	created.CreatedAt = note.CreatedAt.UTC()
	created.UpdatedAt = note.UpdatedAt.UTC()
	return &created, nil
}

// Update returns (nil, nil) when no note has that id and owner.
func (r *NoteRepository) Update(ctx context.Context, ownerID, noteID int64, title, content string, updatedAt time.Time) (*domain.Note, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), opTimeout)
	defer cancel()

	n, err := scanNote(r.db.QueryRowContext(ctx,
		`UPDATE notes SET title = ?, content = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ?
		 RETURNING `+noteColumns,
		title, content, formatTime(updatedAt), noteID, ownerID,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("update note", err)
	}
	return n, nil
}

func (r *NoteRepository) Delete(ctx context.Context, ownerID, noteID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ? AND owner_id = ?`, noteID, ownerID)
	if err != nil {
		return false, mapError("delete note", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, mapError("delete note", err)
	}
	return n > 0, nil
}
