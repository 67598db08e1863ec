package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	coacherr "github.com/yungbote/strandcoach/internal/pkg/errors"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", coacherr.Invalid("quality", 9, "must be in [0,5]"), http.StatusBadRequest, "validation_failed"},
		{"invalid argument", fmt.Errorf("bind: %w", coacherr.ErrInvalidArgument), http.StatusBadRequest, "validation_failed"},
		{"not found", fmt.Errorf("session x: %w", coacherr.ErrNotFound), http.StatusNotFound, "not_found"},
		{"session state", fmt.Errorf("end: %w", coacherr.ErrSessionState), http.StatusConflict, "invalid_session_state"},
		{"consistency", coacherr.Inconsistent("card", "a.001", "bad"), http.StatusUnprocessableEntity, "consistency_violation"},
		{"cycle", fmt.Errorf("%w: %w", coacherr.ErrConsistency, coacherr.ErrCyclicGraph), http.StatusUnprocessableEntity, "consistency_violation"},
		{"explicit", fmt.Errorf("wrapped: %w", New(http.StatusTeapot, "teapot", errors.New("short"))), http.StatusTeapot, "teapot"},
		{"unique violation", fmt.Errorf("create card: %w", &pgconn.PgError{Code: "23505"}), http.StatusConflict, "conflict"},
		{"serialization failure", fmt.Errorf("record exercise: %w", &pgconn.PgError{Code: "40001"}), http.StatusServiceUnavailable, "retryable"},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, http.StatusServiceUnavailable, "retryable"},
		{"lock not available", fmt.Errorf("lock session: %w", &pgconn.PgError{Code: "55P03"}), http.StatusServiceUnavailable, "retryable"},
		{"other postgres error", &pgconn.PgError{Code: "42P01"}, http.StatusInternalServerError, "internal"},
		{"unknown", errors.New("disk full"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromError(tt.err)
			if got.Status != tt.status || got.Code != tt.code {
				t.Fatalf("FromError = %d/%s, want %d/%s", got.Status, got.Code, tt.status, tt.code)
			}
		})
	}
}
