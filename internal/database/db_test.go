package database

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/chalyati/rental-api/internal/models"
)

func TestMapPostgresError(t *testing.T) {
	t.Run("nil passes through", func(t *testing.T) {
		assert.NoError(t, MapPostgresError(nil))
	})

	t.Run("no rows becomes not found", func(t *testing.T) {
		assert.ErrorIs(t, MapPostgresError(pgx.ErrNoRows), models.ErrNotFound)
	})

	t.Run("username unique violation names the column", func(t *testing.T) {
		err := MapPostgresError(&pgconn.PgError{Code: "23505", ConstraintName: "admins_username_key"})
		assert.ErrorIs(t, err, models.ErrConflict)
		assert.Contains(t, err.Error(), "username")
	})

	t.Run("email unique violation names the column", func(t *testing.T) {
		err := MapPostgresError(&pgconn.PgError{Code: "23505", ConstraintName: "admins_email_key"})
		assert.ErrorIs(t, err, models.ErrConflict)
		assert.Contains(t, err.Error(), "email")
	})

	t.Run("other unique violations stay generic", func(t *testing.T) {
		err := MapPostgresError(&pgconn.PgError{Code: "23505", ConstraintName: "cars_pkey"})
		assert.Equal(t, models.ErrConflict, err)
	})

	t.Run("check violation becomes bad request", func(t *testing.T) {
		err := MapPostgresError(&pgconn.PgError{Code: "23514", ConstraintName: "cars_status_check"})
		assert.ErrorIs(t, err, models.ErrBadRequest)
	})

	t.Run("unknown errors pass through", func(t *testing.T) {
		sentinel := errors.New("connection reset")
		assert.Equal(t, sentinel, MapPostgresError(sentinel))
	})
}
