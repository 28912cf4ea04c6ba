package driven

import (
	"context"

	"github.com/custodia-labs/intake/internal/core/domain"
)

// DocumentStore persists documents and their chunks.
// Every implementation enforces that an owner never holds two documents
// with the same non-nil content fingerprint.
type DocumentStore interface {
	// FindByContentFingerprint returns the owner's document with the given
	// content fingerprint, or nil when there is none.
	FindByContentFingerprint(ctx context.Context, ownerID, fingerprint string) (*domain.Document, error)

	// ListByOwner returns all documents of an owner, oldest first.
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Document, error)

	// Insert stores a new document.
	// Returns domain.ErrAlreadyExists if the owner already has a document
	// with the same content fingerprint.
	Insert(ctx context.Context, doc *domain.Document) error

	// UpdateFingerprint sets the content fingerprint of an existing document.
	// Setting the value it already holds is a no-op.
	// Returns domain.ErrNotFound for an unknown id and domain.ErrAlreadyExists
	// when another document of the same owner holds the fingerprint.
	UpdateFingerprint(ctx context.Context, documentID, fingerprint string) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// ReplaceChunks deletes the document's existing chunks and stores the new set.
	ReplaceChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error

	// GetChunks retrieves all chunks for a document ordered by position.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)
}
