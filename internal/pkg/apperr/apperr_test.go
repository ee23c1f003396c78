package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestRemote_Classification(t *testing.T) {
	assert.Nil(t, Remote("noop", nil))
	assert.ErrorIs(t, Remote("get", gorm.ErrRecordNotFound), ErrNotFound)
	assert.ErrorIs(t, Remote("get", fmt.Errorf("wrapped: %w", gorm.ErrRecordNotFound)), ErrNotFound)

	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	err := Remote("insert", pgErr)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "users_email_key")

	err = Remote("insert", errors.New("UNIQUE constraint failed: users.email"))
	assert.ErrorIs(t, err, ErrConflict)

	err = Remote("insert", errors.New("permission denied for table leads"))
	var remote *RemoteError
	assert.True(t, errors.As(err, &remote))
	assert.Equal(t, "insert", remote.Op)
	assert.Equal(t, "permission denied for table leads", err.Error())
}

func TestRemote_KeepsClassifiedErrors(t *testing.T) {
	assert.Same(t, ErrNotFound, Remote("get", ErrNotFound))

	v := Invalid("name", "required")
	assert.Equal(t, v, Remote("create", v))

	inner := &RemoteError{Op: "update", Err: errors.New("boom")}
	assert.Equal(t, error(inner), Remote("outer", inner))
}

func TestValidationError(t *testing.T) {
	err := Invalid("status", "oneof")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "validation failed: status=oneof", err.Error())
	assert.Equal(t, "validation failed", (&ValidationError{}).Error())
}
