package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/miapp/secure-notes/internal/core/domain"
	"github.com/miapp/secure-notes/internal/core/ports"
)

// NoteService performs note CRUD scoped to the caller. Absence reported by
// the store becomes domain.ErrNoteNotFound here and only here.
type NoteService struct {
	repo        ports.NoteRepository
	idempotency ports.IdempotencyStore
	logger      zerolog.Logger
	now         func() time.Time
}

// NewNoteService builds a NoteService. idempotency may be nil, in which
// case Idempotency-Key is ignored.
func NewNoteService(repo ports.NoteRepository, idempotency ports.IdempotencyStore, logger zerolog.Logger) *NoteService {
	return &NoteService{
		repo:        repo,
		idempotency: idempotency,
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (s *NoteService) WithClock(now func() time.Time) *NoteService {
	s.now = now
	return s
}

func (s *NoteService) List(ctx context.Context, ownerID int64) ([]*domain.Note, error) {
	notes, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []*domain.Note{}
	}
	return notes, nil
}

func (s *NoteService) Get(ctx context.Context, ownerID, noteID int64) (*domain.Note, error) {
	note, err := s.repo.Get(ctx, ownerID, noteID)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, domain.ErrNoteNotFound
	}
	return note, nil
}

// Create validates and stores a new note. When an idempotency key is given
// and was already used by the same owner, the earlier note is returned with
// Replayed set.
func (s *NoteService) Create(ctx context.Context, input ports.CreateNoteInput) (*ports.CreateNoteResult, error) {
	if err := domain.ValidateNoteFields(input.Title, input.Content); err != nil {
		return nil, err
	}

	if existing := s.replay(ctx, input.OwnerID, input.IdempotencyKey); existing != nil {
		return &ports.CreateNoteResult{Note: existing, Replayed: true}, nil
	}

	now := s.now().UTC()
	note, err := s.repo.Create(ctx, &domain.Note{
		OwnerID:   input.OwnerID,
		Title:     input.Title,
		Content:   input.Content,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("owner_id", input.OwnerID).Msg("failed to create note")
		return nil, err
	}

	if input.IdempotencyKey != "" && s.idempotency != nil {
		if err := s.idempotency.Remember(ctx, input.OwnerID, input.IdempotencyKey, note.ID); err != nil {
			s.logger.Warn().Err(err).Int64("note_id", note.ID).Msg("idempotency store unavailable, key not recorded")
		}
	}

	s.logger.Info().Int64("note_id", note.ID).Int64("owner_id", input.OwnerID).Msg("note created")
	return &ports.CreateNoteResult{Note: note}, nil
}

// replay returns the note an earlier request with the same key created, or
// nil. Idempotency store failures are not fatal.
func (s *NoteService) replay(ctx context.Context, ownerID int64, key string) *domain.Note {
	if key == "" || s.idempotency == nil {
		return nil
	}

	noteID, found, err := s.idempotency.Lookup(ctx, ownerID, key)
	if err != nil {
		s.logger.Warn().Err(err).Msg("idempotency lookup failed, proceeding without it")
		return nil
	}
	if !found {
		return nil
	}

	// The original note may have been deleted since; fall through to a fresh create.
	note, err := s.repo.Get(ctx, ownerID, noteID)
	if err != nil || note == nil {
		return nil
	}

	s.logger.Info().Str("idempotency_key", key).Int64("note_id", noteID).Msg("idempotent replay")
	return note
}

func (s *NoteService) Update(ctx context.Context, ownerID, noteID int64, title, content string) (*domain.Note, error) {
	if err := domain.ValidateNoteFields(title, content); err != nil {
		return nil, err
	}

	note, err := s.repo.Update(ctx, ownerID, noteID, title, content, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, domain.ErrNoteNotFound
	}

	s.logger.Info().Int64("note_id", noteID).Int64("owner_id", ownerID).Msg("note updated")
	return note, nil
}

func (s *NoteService) Delete(ctx context.Context, ownerID, noteID int64) error {
	deleted, err := s.repo.Delete(ctx, ownerID, noteID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNoteNotFound
	}

	s.logger.Info().Int64("note_id", noteID).Int64("owner_id", ownerID).Msg("note deleted")
	return nil
}
