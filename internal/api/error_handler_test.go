package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/biblioteca/loan-system/internal/core/domain"
)

func TestHTTPErrorHandler_Mapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"not found", domain.ErrBookNotFound, http.StatusNotFound, "book not found"},
		{"unavailable", domain.ErrBookUnavailable, http.StatusBadRequest, "book not available"},
		{"credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"conflict", domain.ErrLoanAlreadyReturned, http.StatusConflict, "loan already returned"},
		{"invalid", domain.ErrInvalidDueDate, http.StatusBadRequest, "due date must be in the future"},
		{"wrapped conflict", fmt.Errorf("update: %w", domain.ErrDuplicateISBN), http.StatusConflict, "a book with this isbn already exists"},
		{"idempotency key reused", domain.ErrIdempotencyKeyReused, http.StatusConflict, "idempotency key was used for a different request"},
		{"store failure", fmt.Errorf("%w: find book: %w", domain.ErrStoreFailure, fmt.Errorf("socket closed")), http.StatusInternalServerError, "internal server error"},
		{"plain error", fmt.Errorf("boom"), http.StatusInternalServerError, "internal server error"},
		{"echo error", echo.NewHTTPError(http.StatusForbidden, "forbidden"), http.StatusForbidden, "forbidden"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			NewHTTPErrorHandler(zerolog.Nop())(tc.err, c)

			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Success || resp.Message != tc.message {
				t.Fatalf("unexpected envelope: %+v", resp)
			}
		})
	}
}
