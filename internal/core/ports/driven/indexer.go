package driven

import (
	"context"

	"github.com/custodia-labs/intake/internal/core/domain"
)

// VectorIndexer hands chunks to the semantic search index.
// The embedding and storage of vectors happen behind this port.
// Failures are logged by the caller, never propagated to the upload.
type VectorIndexer interface {
	// Index submits the chunks of one document.
	Index(ctx context.Context, documentID, documentName string, chunks []domain.Chunk, metadata map[string]any) error
}
