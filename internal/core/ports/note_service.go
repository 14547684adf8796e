package ports

import (
	"context"

	"github.com/miapp/secure-notes/internal/core/domain"
)

// CreateNoteInput carries the fields of a new note. IdempotencyKey is
// optional; when set, a replay by the same owner returns the first note.
type CreateNoteInput struct {
	OwnerID        int64
	Title          string
	Content        string
	IdempotencyKey string
}

// CreateNoteResult wraps the created note.
type CreateNoteResult struct {
	Note *domain.Note
	// Replayed is true when the Idempotency-Key matched an earlier create.
	Replayed bool
}

// NoteService performs ownership-checked CRUD. ownerID is always the
// identity resolved from the caller's session token.
type NoteService interface {
	List(ctx context.Context, ownerID int64) ([]*domain.Note, error)
	Get(ctx context.Context, ownerID, noteID int64) (*domain.Note, error)
	Create(ctx context.Context, input CreateNoteInput) (*CreateNoteResult, error)
	Update(ctx context.Context, ownerID, noteID int64, title, content string) (*domain.Note, error)
	Delete(ctx context.Context, ownerID, noteID int64) error
}

// IdempotencyStore remembers which note an idempotency key produced.
type IdempotencyStore interface {
	// Lookup returns the note id recorded for (ownerID, key), if any.
	Lookup(ctx context.Context, ownerID int64, key string) (int64, bool, error)
	// Remember records noteID for (ownerID, key) unless a value exists.
	Remember(ctx context.Context, ownerID int64, key string, noteID int64) error
}
