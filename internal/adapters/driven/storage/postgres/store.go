package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"github.com/jmoiron/sqlx"

	"github.com/custodia-labs/intake/internal/adapters/driven/storage/postgres/migrations"
	"github.com/custodia-labs/intake/internal/adapters/driven/storage/schema"
	"github.com/custodia-labs/intake/internal/core/domain"
	"github.com/custodia-labs/intake/internal/core/ports/driven"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Store is a PostgreSQL-backed metadata store.
type Store struct {
	db *sqlx.DB
}

// NewStore connects to databaseURL, verifies the connection and applies
// pending migrations.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("%w: postgres url is required", domain.ErrInvalidInput)
	}

	db, err := sqlx.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	s := &Store{db: db}
	if _, err := schema.Apply(ctx, db.DB, schema.Postgres, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{db: s.db}
}

// documentStore implements driven.DocumentStore.
type documentStore struct {
	db *sqlx.DB
}

var _ driven.DocumentStore = (*documentStore)(nil)

// documentRow maps the documents table.
type documentRow struct {
	ID                 string         `db:"id"`
	OwnerID            string         `db:"owner_id"`
	Name               string         `db:"name"`
	OriginalName       string         `db:"original_name"`
	MIMEType           string         `db:"mime_type"`
	Size               int64          `db:"size"`
	Path               string         `db:"path"`
	ContentFingerprint sql.NullString `db:"content_fingerprint"`
	NameFingerprint    string         `db:"name_fingerprint"`
	FolderID           sql.NullString `db:"folder_id"`
	CreatedAt          time.Time      `db:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at"`
}

func (r documentRow) toDomain() domain.Document {
	doc := domain.Document{
		ID:              r.ID,
		OwnerID:         r.OwnerID,
		Name:            r.Name,
		OriginalName:    r.OriginalName,
		MIMEType:        r.MIMEType,
		Size:            r.Size,
		Path:            r.Path,
		NameFingerprint: r.NameFingerprint,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.ContentFingerprint.Valid {
		fp := r.ContentFingerprint.String
		doc.ContentFingerprint = &fp
	}
	if r.FolderID.Valid {
		folder := r.FolderID.String
		doc.FolderID = &folder
	}
	return doc
}

func fromDomain(doc *domain.Document) documentRow {
	return documentRow{
		ID:                 doc.ID,
		OwnerID:            doc.OwnerID,
		Name:               doc.Name,
		OriginalName:       doc.OriginalName,
		MIMEType:           doc.MIMEType,
		Size:               doc.Size,
		Path:               doc.Path,
		ContentFingerprint: nullString(doc.ContentFingerprint),
		NameFingerprint:    doc.NameFingerprint,
		FolderID:           nullString(doc.FolderID),
		CreatedAt:          doc.CreatedAt.UTC(),
		UpdatedAt:          doc.UpdatedAt.UTC(),
	}
}

// chunkRow maps the chunks table.
type chunkRow struct {
	ID          string `db:"id"`
	DocumentID  string `db:"document_id"`
	Position    int    `db:"position"`
	Content     string `db:"content"`
	WordCount   int    `db:"word_count"`
	StartOffset int    `db:"start_offset"`
	EndOffset   int    `db:"end_offset"`
	Metadata    string `db:"metadata"`
}

const selectDocument = `SELECT id, owner_id, name, original_name, mime_type, size, path,
	content_fingerprint, name_fingerprint, folder_id, created_at, updated_at FROM documents`

// FindByContentFingerprint returns the owner's document holding fingerprint.
func (s *documentStore) FindByContentFingerprint(ctx context.Context, ownerID, fingerprint string) (*domain.Document, error) {
	var row documentRow
	err := s.db.GetContext(ctx, &row, selectDocument+` WHERE owner_id = $1 AND content_fingerprint = $2`, ownerID, fingerprint)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding document by fingerprint: %w", err)
	}
	doc := row.toDomain()
	return &doc, nil
}

// ListByOwner returns all documents of an owner, oldest first.
func (s *documentStore) ListByOwner(ctx context.Context, ownerID string) ([]domain.Document, error) {
	var rows []documentRow
	if err := s.db.SelectContext(ctx, &rows, selectDocument+` WHERE owner_id = $1 ORDER BY created_at, id`, ownerID); err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	docs := make([]domain.Document, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, r.toDomain())
	}
	return docs, nil
}

// Insert stores a new document.
func (s *documentStore) Insert(ctx context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" || doc.OwnerID == "" {
		return fmt.Errorf("%w: document id and owner are required", domain.ErrInvalidInput)
	}

	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = doc.CreatedAt
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO documents (id, owner_id, name, original_name, mime_type, size, path,
			content_fingerprint, name_fingerprint, folder_id, created_at, updated_at)
		VALUES (:id, :owner_id, :name, :original_name, :mime_type, :size, :path,
			:content_fingerprint, :name_fingerprint, :folder_id, :created_at, :updated_at)
	`, fromDomain(doc))

	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %w", domain.ErrAlreadyExists, err)
	}
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}
	return nil
}

// UpdateFingerprint sets the content fingerprint of an existing document.
func (s *documentStore) UpdateFingerprint(ctx context.Context, documentID, fingerprint string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE documents SET content_fingerprint = $1, updated_at = NOW()
		WHERE id = $2 AND content_fingerprint IS DISTINCT FROM $1
	`, fingerprint, documentID)

	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %w", domain.ErrAlreadyExists, err)
	}
	if err != nil {
		return fmt.Errorf("updating fingerprint: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}

	var exists bool
	if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM documents WHERE id = $1)`, documentID); err != nil {
		return fmt.Errorf("checking document: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	var row documentRow
	err := s.db.GetContext(ctx, &row, selectDocument+` WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}
	doc := row.toDomain()
	return &doc, nil
}

// DeleteDocument removes a document; chunks go with it through ON DELETE CASCADE.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ReplaceChunks deletes the document's existing chunks and stores the new set
// in a single transaction.
func (s *documentStore) ReplaceChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// Lock the parent row so concurrent replacements serialise
	var locked string
	err = tx.GetContext(ctx, &locked, `SELECT id FROM documents WHERE id = $1 FOR UPDATE`, documentID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("locking document: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}

	for _, chunk := range chunks {
		metadataJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling chunk metadata: %w", err)
		}
		if chunk.Metadata == nil {
			metadataJSON = []byte("{}")
		}

		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO chunks (id, document_id, position, content, word_count, start_offset, end_offset, metadata)
			VALUES (:id, :document_id, :position, :content, :word_count, :start_offset, :end_offset, :metadata)
		`, chunkRow{
			ID:          chunk.ID,
			DocumentID:  documentID,
			Position:    chunk.Position,
			Content:     chunk.Content,
			WordCount:   chunk.WordCount,
			StartOffset: chunk.StartOffset,
			EndOffset:   chunk.EndOffset,
			Metadata:    string(metadataJSON),
		}); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetChunks retrieves all chunks for a document ordered by position.
func (s *documentStore) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	var rows []chunkRow
	if err := s.db.SelectContext(ctx, &rows, `
		SELECT id, document_id, position, content, word_count, start_offset, end_offset, metadata
		FROM chunks WHERE document_id = $1 ORDER BY position
	`, documentID); err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}

	chunks := make([]domain.Chunk, 0, len(rows))
	for _, r := range rows {
		chunk := domain.Chunk{
			ID:          r.ID,
			DocumentID:  r.DocumentID,
			Position:    r.Position,
			Content:     r.Content,
			WordCount:   r.WordCount,
			StartOffset: r.StartOffset,
			EndOffset:   r.EndOffset,
		}
		if len(r.Metadata) > 0 {
			if err := json.Unmarshal([]byte(r.Metadata), &chunk.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshaling chunk metadata: %w", err)
			}
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
