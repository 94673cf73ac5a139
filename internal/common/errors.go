package common

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound     = errors.New("requested resource not found")
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("forbidden access")
	ErrBadRequest   = errors.New("bad request")
	ErrConflict     = errors.New("resource conflict") // e.g., username already exists
	ErrValidation   = errors.New("validation failed") // input the store cannot hold

	// Credential errors. Callers only ever see "unauthorized"; the split is
	// kept for logs and metrics.
	ErrInvalidCredentials    = errors.New("username or password is invalid")
	ErrInvalidOrExpiredToken = errors.New("authorization token is invalid or expired")
	ErrUnauthenticated       = errors.New("unauthenticated")
)

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrInvalidOrExpiredToken) ||
		errors.Is(err, ErrUnauthenticated) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	// A taken username is reported as a plain bad request, as clients of
	// the v1 API expect.
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrValidation) || errors.Is(err, ErrConflict) {
		return http.StatusBadRequest
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" { // Unique violation
			return http.StatusBadRequest
		}
	}

	return http.StatusInternalServerError
}

// PublicMessage is the text safe to return to a client for err. Internal
// failures never leak their cause.
func PublicMessage(err error) string {
	if HTTPStatusFromError(err) == http.StatusInternalServerError {
		return "Internal server error."
	}
	var m *messageError
	if errors.As(err, &m) {
		return m.msg
	}
	return err.Error()
}

// messageError attaches a client-facing message to a sentinel.
type messageError struct {
	msg string
	err error
}

func (e *messageError) Error() string { return e.msg }
func (e *messageError) Unwrap() error { return e.err }

// WithMessage wraps sentinel so errors.Is still matches it while clients see msg.
func WithMessage(sentinel error, msg string) error {
	return &messageError{msg: msg, err: sentinel}
}
