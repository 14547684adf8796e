package handler

import (
	"time"

	"github.com/miapp/secure-notes/internal/core/domain"
)

// HeaderIdempotencyKey lets clients retry POST /notes safely.
const HeaderIdempotencyKey = "Idempotency-Key"

// HeaderIdempotentReplayed is set on responses answered from an earlier request.
const HeaderIdempotentReplayed = "Idempotent-Replayed"

const maxIdempotencyKeyLen = 128

type noteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type noteResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type noteEnvelope struct {
	Note noteResponse `json:"note"`
}

type noteListEnvelope struct {
	Notes []noteResponse `json:"notes"`
}

// errorBody documents the error envelope for swag.
type errorBody struct {
	Error string `json:"error"`
}

func toNoteResponse(n *domain.Note) noteResponse {
	return noteResponse{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func toNoteList(notes []*domain.Note) []noteResponse {
	out := make([]noteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, toNoteResponse(n))
	}
	return out
}
