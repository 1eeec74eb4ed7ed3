package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "drive.db")

	database, err := Init(ctx, "sqlite", path+"?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, RunMigrations(ctx, database.DB, "sqlite"))

	version, err := Version(ctx, database.DB, "sqlite")
	require.NoError(t, err)
	assert.Equal(t, int64(3), version)

	for _, table := range []string{"users", "folders", "files", "shares", "link_shares", "stars"} {
		var count int
		err := database.GetContext(ctx, &count, `SELECT COUNT(*) FROM `+table)
		assert.NoError(t, err, table)
	}

	require.NoError(t, MigrateDown(ctx, database.DB, "sqlite"))
	version, err = Version(ctx, database.DB, "sqlite")
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	var count int
	err = database.GetContext(ctx, &count, `SELECT COUNT(*) FROM shares`)
	assert.Error(t, err)
}

func TestSiblingNameIndexIgnoresDeleted(t *testing.T) {
	ctx := context.Background()
	database, err := Init(ctx, "sqlite", filepath.Join(t.TempDir(), "drive.db"))
	require.NoError(t, err)
	defer database.Close()
	require.NoError(t, RunMigrations(ctx, database.DB, "sqlite"))

	_, err = database.ExecContext(ctx, `INSERT INTO users (id, email, created_at) VALUES ('u1', 'u1@example.com', CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	insert := `INSERT INTO folders (id, name, owner_id, parent_id, is_deleted, created_at, updated_at)
	           VALUES ($1, 'Docs', 'u1', NULL, $2, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`

	_, err = database.ExecContext(ctx, insert, "a", false)
	require.NoError(t, err)

	_, err = database.ExecContext(ctx, insert, "b", false)
	assert.Error(t, err, "two live root folders with the same name")

	_, err = database.ExecContext(ctx, insert, "c", true)
	assert.NoError(t, err, "deleted rows do not take part in the index")
}

func TestDialect(t *testing.T) {
	assert.Equal(t, "sqlite3", Dialect("sqlite"))
	assert.Equal(t, "postgres", Dialect("pgx"))
	assert.Equal(t, "mysql", Dialect("mysql"))
}
