package driving

import (
	"context"

	"github.com/custodia-labs/intake/internal/core/domain"
)

// IngestService runs uploads through duplicate detection, storage,
// extraction, chunking and indexing.
type IngestService interface {
	// Ingest processes one upload. A byte-identical upload fails with
	// *domain.DuplicateRejectedError and is not stored.
	Ingest(ctx context.Context, upload domain.Upload, ownerID string, folderID *string) (*IngestResult, error)

	// IngestBatch processes uploads independently; one file failing never
	// fails its siblings.
	IngestBatch(ctx context.Context, uploads []domain.Upload, ownerID string, folderID *string) *BatchResult

	// Reingest re-extracts, re-chunks and re-indexes a stored document.
	Reingest(ctx context.Context, documentID string) (*IngestResult, error)
}

// IngestResult describes an accepted upload.
type IngestResult struct {
	// Document is the stored document.
	Document domain.Document

	// Warnings lists existing documents with similar names. Advisory only.
	Warnings []domain.SimilarDocument

	// ChunkCount is the number of chunks produced from the extracted text.
	ChunkCount int

	// Indexed reports whether the chunks reached the vector indexer.
	Indexed bool
}

// BatchResult collects per-file outcomes of a batch ingestion.
type BatchResult struct {
	// Results holds accepted uploads in input order.
	Results []IngestResult

	// Errors holds rejected or failed uploads in input order.
	Errors []FileError
}

// FileError ties a failure to the file that caused it.
type FileError struct {
	// Name is the original filename or document id.
	Name string

	// Err is the failure.
	Err error
}

// Error implements error.
func (e FileError) Error() string {
	return e.Name + ": " + e.Err.Error()
}

// Unwrap returns the underlying failure.
func (e FileError) Unwrap() error {
	return e.Err
}
