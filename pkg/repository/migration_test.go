package repository

import (
	"context"
	"io/fs"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate(t *testing.T) {
	db, err := sqlx.Open("sqlite", sqliteDSN(":memory:"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, migrate(ctx, db))
	require.NoError(t, migrate(ctx, db), "migrations should be idempotent")

	var tables []string
	err = db.SelectContext(ctx, &tables,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND name != 'goose_db_version' ORDER BY name`)
	require.NoError(t, err)
	assert.Equal(t, []string{"entries", "feeds", "read_markers", "subscriptions", "users"}, tables)

	var indexCount int
	err = db.GetContext(ctx, &indexCount, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name LIKE 'idx_%'`)
	require.NoError(t, err)
	assert.Equal(t, 3, indexCount)

	var version int64
	require.NoError(t, db.GetContext(ctx, &version, "SELECT MAX(version_id) FROM goose_db_version"))
	assert.Equal(t, int64(1), version)
}

func TestMigrationsEmbedded(t *testing.T) {
	for _, dir := range []string{"migrations/sqlite", "migrations/postgres"} {
		files, err := fs.Glob(migrationsFS, dir+"/*.sql")
		require.NoError(t, err)
		assert.NotEmpty(t, files, dir)

		body, err := fs.ReadFile(migrationsFS, dir+"/00001_init.sql")
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up")
		assert.Contains(t, string(body), "ON DELETE RESTRICT")
		assert.Contains(t, string(body), "UNIQUE (feed_id, guid)")
	}
}
