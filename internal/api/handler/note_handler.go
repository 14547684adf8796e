package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/miapp/secure-notes/internal/api/metrics"
	"github.com/miapp/secure-notes/internal/core/domain"
	"github.com/miapp/secure-notes/internal/core/ports"
)

// NoteHandler serves the owner-scoped note endpoints. The owner is always
// the identity the Auth middleware resolved, never a request field.
type NoteHandler struct {
	notes ports.NoteService
}

func NewNoteHandler(notes ports.NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

// List returns the caller's notes, most recently updated first.
//
// @Summary      List notes
// @Tags         notes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  noteListEnvelope
// @Failure      401  {object}  errorBody
// @Router       /notes [get]
func (h *NoteHandler) List(c echo.Context) error {
	owner, err := ctxOwner(c)
	if err != nil {
		return err
	}

	notes, err := h.notes.List(c.Request().Context(), owner)
	observe("list", err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, noteListEnvelope{Notes: toNoteList(notes)})
}

// Get returns one of the caller's notes.
//
// @Summary      Get a note
// @Tags         notes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Note id"
// @Success      200  {object}  noteEnvelope
// @Failure      400  {object}  errorBody
// @Failure      401  {object}  errorBody
// @Failure      404  {object}  errorBody
// @Router       /notes/{id} [get]
func (h *NoteHandler) Get(c echo.Context) error {
	owner, err := ctxOwner(c)
	if err != nil {
		return err
	}
	id, err := noteID(c)
	if err != nil {
		return err
	}

	note, err := h.notes.Get(c.Request().Context(), owner, id)
	observe("get", err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, noteEnvelope{Note: toNoteResponse(note)})
}

// Create stores a new note. An Idempotency-Key header makes retries safe.
//
// @Summary      Create a note
// @Tags         notes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string       false  "Client-generated key for safe retries"
// @Param        body             body      noteRequest  true   "Note"
// @Success      201              {object}  noteEnvelope
// @Failure      400              {object}  errorBody
// @Failure      401              {object}  errorBody
// @Router       /notes [post]
func (h *NoteHandler) Create(c echo.Context) error {
	owner, err := ctxOwner(c)
	if err != nil {
		return err
	}

	var req noteRequest
	if err := c.Bind(&req); err != nil {
		return invalidPayload()
	}

	key := c.Request().Header.Get(HeaderIdempotencyKey)
	if len(key) > maxIdempotencyKeyLen {
		return domain.NewValidationError("idempotency_key", "Idempotency-Key must be at most 128 characters")
	}

	res, err := h.notes.Create(c.Request().Context(), ports.CreateNoteInput{
		OwnerID:        owner,
		Title:          req.Title,
		Content:        req.Content,
		IdempotencyKey: key,
	})
	observe("create", err)
	if err != nil {
		return err
	}

	if res.Replayed {
		metrics.IdempotentReplaysTotal.Inc()
		c.Response().Header().Set(HeaderIdempotentReplayed, "true")
	}

	return c.JSON(http.StatusCreated, noteEnvelope{Note: toNoteResponse(res.Note)})
}

// Update replaces a note's title and content.
//
// @Summary      Update a note
// @Tags         notes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    query     int          true  "Note id (or /notes/{id})"
// @Param        body  body      noteRequest  true  "New title and content"
// @Success      200   {object}  noteEnvelope
// @Failure      400   {object}  errorBody
// @Failure      401   {object}  errorBody
// @Failure      404   {object}  errorBody
// @Router       /notes [put]
func (h *NoteHandler) Update(c echo.Context) error {
	owner, err := ctxOwner(c)
	if err != nil {
		return err
	}
	id, err := noteID(c)
	if err != nil {
		return err
	}

	var req noteRequest
	if err := c.Bind(&req); err != nil {
		return invalidPayload()
	}

	note, err := h.notes.Update(c.Request().Context(), owner, id, req.Title, req.Content)
	observe("update", err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, noteEnvelope{Note: toNoteResponse(note)})
}

// Delete removes a note.
//
// @Summary      Delete a note
// @Tags         notes
// @Produce      json
// @Security     BearerAuth
// @Param        id   query     int  true  "Note id (or /notes/{id})"
// @Success      200  {object}  successResponse
// @Failure      400  {object}  errorBody
// @Failure      401  {object}  errorBody
// @Failure      404  {object}  errorBody
// @Router       /notes [delete]
func (h *NoteHandler) Delete(c echo.Context) error {
	owner, err := ctxOwner(c)
	if err != nil {
		return err
	}
	id, err := noteID(c)
	if err != nil {
		return err
	}

	err = h.notes.Delete(c.Request().Context(), owner, id)
	observe("delete", err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, successResponse{Success: true})
}

// noteID reads the id from the path, falling back to ?id=.
func noteID(c echo.Context) (int64, error) {
	raw := c.Param("id")
	if raw == "" {
		raw = c.QueryParam("id")
	}
	if raw == "" {
		return 0, domain.NewValidationError("id", "id is required")
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("id", "id must be a positive integer")
	}
	return id, nil
}

func observe(op string, err error) {
	metrics.NoteOperationsTotal.WithLabelValues(op, operationResult(err)).Inc()
}

func operationResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNoteNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrStorageBusy):
		return "busy"
	default:
		return "error"
	}
}
