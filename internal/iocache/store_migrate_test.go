package iocache

import (
	"bytes"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/huangsam/mlscore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateStore_NoneBackend(t *testing.T) {
	err := MigrateStore(&bytes.Buffer{}, schema.NoneBackend, "", -1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
}

func TestMigrateStore_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")
	var out bytes.Buffer

	require.NoError(t, MigrateStore(&out, schema.SQLiteBackend, dbPath, -1))
	assert.Contains(t, out.String(), "to version 2")

	out.Reset()
	require.NoError(t, MigrateStore(&out, schema.SQLiteBackend, dbPath, -1))
	assert.Contains(t, out.String(), "No migration needed")

	out.Reset()
	require.NoError(t, MigrateStore(&out, schema.SQLiteBackend, dbPath, 1))
	assert.Contains(t, out.String(), "from version 2 to version 1")

	require.NoError(t, MigrateStore(&out, schema.SQLiteBackend, dbPath, 0))
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, artifactsTable).Scan(&count))
	assert.Equal(t, 0, count)

	require.NoError(t, MigrateStore(&out, schema.SQLiteBackend, dbPath, 2))
}

func TestMigrateStore_AfterStoreCreation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "store.db")
	store, err := NewArtifactStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Tables created by the store are compatible with the first migration
	require.NoError(t, MigrateStore(&bytes.Buffer{}, schema.SQLiteBackend, dbPath, -1))
}

func TestMigrationScriptsEmbedded(t *testing.T) {
	for _, backend := range []string{"sqlite", "mysql", "postgresql"} {
		entries, err := migrationsFS.ReadDir("migrations/" + backend)
		require.NoError(t, err, backend)
		assert.Len(t, entries, 4, backend)
	}
}

func TestLatestStoreVersion(t *testing.T) {
	for _, backend := range []schema.DatabaseBackend{schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend} {
		version, err := LatestStoreVersion(backend)
		require.NoError(t, err, backend)
		assert.Equal(t, uint(2), version, backend)
	}

	_, err := LatestStoreVersion(schema.RedisBackend)
	assert.Error(t, err)
}
