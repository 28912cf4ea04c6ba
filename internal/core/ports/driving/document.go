package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/intake/internal/core/domain"
)

// DocumentService manages stored documents.
type DocumentService interface {
	// ListByOwner returns all documents for an owner.
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// GetContent returns the concatenated content of all chunks.
	GetContent(ctx context.Context, documentID string) (string, error)

	// GetDetails returns document metadata for display.
	GetDetails(ctx context.Context, documentID string) (*DocumentDetails, error)

	// Delete removes a document, its chunks and its stored file.
	Delete(ctx context.Context, documentID string) error
}

// DocumentDetails provides a standardised view of document metadata.
type DocumentDetails struct {
	// ID is the unique document identifier.
	ID string

	// OwnerID is the owning user.
	OwnerID string

	// Name is the display name.
	Name string

	// OriginalName is the uploaded filename.
	OriginalName string

	// MIMEType is the content type.
	MIMEType string

	// Size is the byte size.
	Size int64

	// ContentFingerprint is empty when not yet computed.
	ContentFingerprint string

	// NameFingerprint is the normalised filename digest.
	NameFingerprint string

	// ChunkCount is the number of chunks.
	ChunkCount int

	// CreatedAt is when the document was stored.
	CreatedAt time.Time

	// UpdatedAt is when the document was last updated.
	UpdatedAt time.Time
}
