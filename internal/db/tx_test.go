package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err, "Failed to connect to in-memory DB")
	database.SetMaxOpenConns(1)

	require.NoError(t, RunMigrations(database.DB, "file://../../migrations"))
	return database
}

func TestRunMigrations(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	var tables []string
	err := database.Select(&tables, "SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name")
	require.NoError(t, err)
	assert.Subset(t, tables, []string{"users", "tournaments", "participants", "matches", "sessions"})

	// Second run is a no-op
	require.NoError(t, RunMigrations(database.DB, "file://../../migrations"))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(sqlite3.Error{Code: sqlite3.ErrBusy}))
	assert.True(t, IsTransient(fmt.Errorf("update: %w", sqlite3.Error{Code: sqlite3.ErrLocked})))
	assert.False(t, IsTransient(sqlite3.Error{Code: sqlite3.ErrConstraint}))
	assert.False(t, IsTransient(errors.New("boom")))
	assert.False(t, IsTransient(nil))
}

func TestWithTx(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		err := WithTx(ctx, database, func(tx *sqlx.Tx) error {
			_, err := tx.ExecContext(ctx, "INSERT INTO users (id, email, username) VALUES ('u1', 'a@b.c', 'a')")
			return err
		})
		require.NoError(t, err)

		var count int
		require.NoError(t, database.Get(&count, "SELECT COUNT(*) FROM users WHERE id = 'u1'"))
		assert.Equal(t, 1, count)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		sentinel := errors.New("stop")
		err := WithTx(ctx, database, func(tx *sqlx.Tx) error {
			if _, err := tx.ExecContext(ctx, "INSERT INTO users (id, email, username) VALUES ('u2', 'a@b.c', 'a')"); err != nil {
				return err
			}
			return sentinel
		})
		assert.ErrorIs(t, err, sentinel)

		var count int
		require.NoError(t, database.Get(&count, "SELECT COUNT(*) FROM users WHERE id = 'u2'"))
		assert.Equal(t, 0, count)
	})

	t.Run("retries transient errors", func(t *testing.T) {
		attempts := 0
		err := WithTx(ctx, database, func(tx *sqlx.Tx) error {
			attempts++
			if attempts < 3 {
				return sqlite3.Error{Code: sqlite3.ErrBusy}
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		attempts := 0
		err := WithTx(ctx, database, func(tx *sqlx.Tx) error {
			attempts++
			return sqlite3.Error{Code: sqlite3.ErrLocked}
		})
		assert.True(t, IsTransient(err))
		assert.Equal(t, maxTxAttempts, attempts)
	})
}
