package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	NoteTitleMaxLen   = 100
	NoteContentMaxLen = 5000
)

// Note is a text note owned by exactly one user.
type Note struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidateNoteFields checks the title and content length bounds, counted in
// characters rather than bytes. NUL characters are rejected: SQLite's
// length() stops at the first one.
func ValidateNoteFields(title, content string) error {
	switch n := utf8.RuneCountInString(title); {
	case n == 0:
		return NewValidationError("title", "title is required")
	case n > NoteTitleMaxLen:
		return NewValidationError("title", "title must be at most 100 characters")
	case strings.ContainsRune(title, 0):
		return NewValidationError("title", "title must not contain NUL characters")
	}
	switch n := utf8.RuneCountInString(content); {
	case n == 0:
		return NewValidationError("content", "content is required")
	case n > NoteContentMaxLen:
		return NewValidationError("content", "content must be at most 5000 characters")
	case strings.ContainsRune(content, 0):
		return NewValidationError("content", "content must not contain NUL characters")
	}
	return nil
}
