package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/miapp/secure-notes/internal/core/domain"
)

func TestHTTPErrorHandler_Mapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"validation", domain.NewValidationError("title", "title is required"), http.StatusBadRequest, "title is required"},
		{"credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"unauthorized wrapped", fmt.Errorf("%w: token expired", domain.ErrUnauthorized), http.StatusUnauthorized, "unauthorized"},
		{"not found", domain.ErrNoteNotFound, http.StatusNotFound, "note not found"},
		{"conflict", fmt.Errorf("create user: %w", domain.ErrUserExists), http.StatusConflict, "user already exists"},
		{"busy", fmt.Errorf("list: %w: database is locked", domain.ErrStorageBusy), http.StatusServiceUnavailable, "service busy, retry later"},
		{"echo 404", echo.ErrNotFound, http.StatusNotFound, "Not Found"},
		{"storage", fmt.Errorf("get: %w: SELECT id FROM notes: disk I/O error", domain.ErrStorage), http.StatusInternalServerError, "internal server error"},
		{"unknown", errors.New("bcrypt: $2a$10$secret"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/notes", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			NewHTTPErrorHandler(zerolog.Nop())(tc.err, c)

			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error != tc.message {
				t.Fatalf("expected message %q, got %q", tc.message, body.Error)
			}
		})
	}
}

func TestHTTPErrorHandler_BusySetsRetryAfter(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/notes", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrStorageBusy, c)

	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}
