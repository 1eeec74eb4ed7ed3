// Package dbtest opens migrated SQLite databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/templui/drive/internal/db"
)

// New returns a freshly migrated database in the test's temp dir.
func New(t *testing.T) *sqlx.DB {
	t.Helper()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "drive.db")

	database, err := db.Init(ctx, "sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, db.RunMigrations(ctx, database.DB, "sqlite"))
	return database
}
