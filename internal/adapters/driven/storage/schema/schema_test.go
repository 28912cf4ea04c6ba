package schema

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "schema.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoad_OrdersAndFilters(t *testing.T) {
	fsys := fstest.MapFS{
		"010_later.up.sql":    {Data: []byte("SELECT 10;")},
		"002_second.up.sql":   {Data: []byte("SELECT 2;")},
		"002_second.down.sql": {Data: []byte("SELECT 0;")},
		"README.md":           {Data: []byte("notes")},
		"draft.up.sql":        {Data: []byte("SELECT 0;")},
	}

	got, err := Load(fsys)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].Version)
	assert.Equal(t, "002_second.up.sql", got[0].Name)
	assert.Equal(t, 10, got[1].Version)
	assert.Equal(t, "SELECT 10;", got[1].SQL)
}

func TestLoad_DuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"001_a.up.sql": {Data: []byte("SELECT 1;")},
		"01_b.up.sql":  {Data: []byte("SELECT 1;")},
	}

	_, err := Load(fsys)
	assert.ErrorContains(t, err, "share version 1")
}

func TestApply_RunsPendingOnce(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	fsys := fstest.MapFS{
		"001_items.up.sql": {Data: []byte("CREATE TABLE items (id TEXT PRIMARY KEY);")},
	}

	version, err := Apply(ctx, db, SQLite, fsys)
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	// A second run finds nothing to do.
	version, err = Apply(ctx, db, SQLite, fsys)
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	fsys["002_names.up.sql"] = &fstest.MapFile{Data: []byte("ALTER TABLE items ADD COLUMN name TEXT;")}
	version, err = Apply(ctx, db, SQLite, fsys)
	require.NoError(t, err)
	assert.Equal(t, 2, version)

	got, err := Version(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestApply_FailedMigrationIsNotRecorded(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	fsys := fstest.MapFS{
		"001_items.up.sql":  {Data: []byte("CREATE TABLE items (id TEXT PRIMARY KEY);")},
		"002_broken.up.sql": {Data: []byte("ALTER TABLE missing ADD COLUMN x TEXT;")},
	}

	version, err := Apply(ctx, db, SQLite, fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "002_broken.up.sql")
	assert.Equal(t, 1, version)

	recorded, err := Version(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 1, recorded)
}
