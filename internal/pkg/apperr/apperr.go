package apperr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrAuthentication means the session is missing or expired at the time of a write.
	ErrAuthentication = errors.New("authentication required")
	ErrValidation     = errors.New("validation failed")
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("conflict: resource already exists")
)

// ValidationError carries per-field failures. It matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for f, tag := range e.Fields {
		parts = append(parts, f+"="+tag)
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, ", "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid builds a ValidationError for a single field.
func Invalid(field, reason string) error {
	return &ValidationError{Fields: map[string]string{field: reason}}
}

// RemoteError wraps a rejection from the data store. Its message is the
// store's message, passed through verbatim.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string { return e.Err.Error() }

func (e *RemoteError) Unwrap() error { return e.Err }

// Remote classifies a store error. Record-not-found and unique violations
// become ErrNotFound and ErrConflict; everything else is a RemoteError.
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %s", ErrConflict, err.Error())
	}
	var remote *RemoteError
	if errors.As(err, &remote) || classified(err) {
		return err
	}
	return &RemoteError{Op: op, Err: err}
}

func classified(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrValidation) || errors.Is(err, ErrAuthentication)
}

// Message returns err.Error() or a fallback message if err is nil.
func Message(err error, fallback string) string {
	if err != nil {
		return err.Error()
	}
	return fallback
}
