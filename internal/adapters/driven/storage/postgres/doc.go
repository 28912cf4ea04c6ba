// Package postgres provides a PostgreSQL-backed DocumentStore using sqlx over
// the pgx stdlib driver. The schema mirrors the SQLite store, including the
// partial unique index on (owner_id, content_fingerprint).
package postgres
