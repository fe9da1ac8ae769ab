package testutil

import (
	"testing"

	"github.com/AdamBeresnev/tourny-app/internal/db"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// MigrationsURL is relative to a package two levels below the module root.
const MigrationsURL = "file://../../migrations"

// SetupTestDB creates an in-memory SQLite database and applies migrations.
// A single connection is kept so every query sees the same in-memory database.
func SetupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:?_foreign_keys=on&_txlock=immediate")
	require.NoError(t, err, "Failed to connect to in-memory DB")
	database.SetMaxOpenConns(1)

	require.NoError(t, db.RunMigrations(database.DB, MigrationsURL), "Failed to apply migrations")

	t.Cleanup(func() { database.Close() })
	return database
}
