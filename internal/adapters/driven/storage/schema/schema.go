// Package schema applies the numbered SQL migrations shared by the SQL
// document stores.
//
// Migration files are named "<version>_<name>.up.sql". Applied versions are
// recorded in schema_migrations and each file runs in its own transaction
// together with its version row.
package schema

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
)

// Migration is one up-migration file.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Dialect holds the statements that differ between databases.
type Dialect struct {
	// CreateTable creates schema_migrations if it does not exist.
	CreateTable string
	// Record inserts one version row; it takes the version as its only argument.
	Record string
}

// SQLite is the Dialect for modernc.org/sqlite.
var SQLite = Dialect{
	CreateTable: `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	Record: "INSERT INTO schema_migrations (version) VALUES (?)",
}

// Postgres is the Dialect for pgx.
var Postgres = Dialect{
	CreateTable: `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	Record: "INSERT INTO schema_migrations (version) VALUES ($1)",
}

const currentVersionQuery = "SELECT COALESCE(MAX(version), 0) FROM schema_migrations"

// Load reads the up-migrations in fsys ordered by version. Files that do
// not start with a version number are ignored; two files with the same
// version are an error.
func Load(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	var out []Migration
	seen := make(map[int]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		prefix, _, _ := strings.Cut(name, "_")
		version, err := strconv.Atoi(prefix)
		if err != nil || version <= 0 {
			continue
		}
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("migrations %s and %s share version %d", prev, name, version)
		}
		seen[version] = name

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("reading migration %s: %w", name, err)
		}
		out = append(out, Migration{Version: version, Name: name, SQL: string(content)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Apply runs every migration in fsys newer than the recorded version.
// It returns the version the database is at afterwards.
func Apply(ctx context.Context, db *sql.DB, d Dialect, fsys fs.FS) (int, error) {
	if _, err := db.ExecContext(ctx, d.CreateTable); err != nil {
		return 0, fmt.Errorf("creating schema_migrations table: %w", err)
	}

	current, err := Version(ctx, db)
	if err != nil {
		return 0, err
	}

	migrations, err := Load(fsys)
	if err != nil {
		return 0, err
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := applyOne(ctx, db, d, m); err != nil {
			return current, err
		}
		current = m.Version
	}
	return current, nil
}

// Version returns the highest recorded migration version, or 0.
func Version(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRowContext(ctx, currentVersionQuery).Scan(&version); err != nil {
		return 0, fmt.Errorf("getting schema version: %w", err)
	}
	return version, nil
}

func applyOne(ctx context.Context, db *sql.DB, d Dialect, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning migration %s: %w", m.Name, err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("executing migration %s: %w", m.Name, err)
	}
	if _, err := tx.ExecContext(ctx, d.Record, m.Version); err != nil {
		return fmt.Errorf("recording migration %s: %w", m.Name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing migration %s: %w", m.Name, err)
	}
	return nil
}
