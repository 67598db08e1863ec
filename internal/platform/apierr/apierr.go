package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	coacherr "github.com/yungbote/strandcoach/internal/pkg/errors"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// FromError maps a service error onto an HTTP status and stable code. An
// *Error anywhere in the chain wins.
func FromError(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) && ae != nil {
		return ae
	}
	switch {
	case err == nil:
		return New(http.StatusInternalServerError, "internal", nil)
	case errors.Is(err, coacherr.ErrValidation), errors.Is(err, coacherr.ErrInvalidArgument):
		return New(http.StatusBadRequest, "validation_failed", err)
	case errors.Is(err, coacherr.ErrNotFound):
		return New(http.StatusNotFound, "not_found", err)
	case errors.Is(err, coacherr.ErrSessionState):
		return New(http.StatusConflict, "invalid_session_state", err)
	case errors.Is(err, coacherr.ErrConsistency):
		return New(http.StatusUnprocessableEntity, "consistency_violation", err)
	}
	if ae := fromPgError(err); ae != nil {
		return ae
	}
	return New(http.StatusInternalServerError, "internal", err)
}

// fromPgError classifies postgres failures surfaced through gorm.
func fromPgError(err error) *Error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	switch strings.TrimSpace(pgErr.Code) {
	case "23505":
		return New(http.StatusConflict, "conflict", err) // unique_violation
	case "40001", "40P01", "55P03":
		return New(http.StatusServiceUnavailable, "retryable", err) // serialization/deadlock/lock_not_available
	}
	return nil
}
