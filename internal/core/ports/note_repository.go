package ports

import (
	"context"
	"time"

	"github.com/miapp/secure-notes/internal/core/domain"
)

// NoteRepository is the Note Store. Every method is scoped by owner; a note
// belonging to someone else behaves exactly like a missing one. Absence is
// reported as a nil note (or false), never as an error.
type NoteRepository interface {
	// ListByOwner returns the owner's notes ordered by updated_at descending.
	ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Note, error)
	Get(ctx context.Context, ownerID, noteID int64) (*domain.Note, error)
	Create(ctx context.Context, note *domain.Note) (*domain.Note, error)
	// Update rewrites title, content and updated_at in a single statement
	// matched on (id, owner_id).
	Update(ctx context.Context, ownerID, noteID int64, title, content string, updatedAt time.Time) (*domain.Note, error)
	// Delete removes the (id, owner_id) row and reports whether one existed.
	Delete(ctx context.Context, ownerID, noteID int64) (bool, error)
}
