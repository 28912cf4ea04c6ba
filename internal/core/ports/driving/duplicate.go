package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/intake/internal/core/domain"
)

// DuplicateDetector decides whether an upload duplicates an existing document.
// All check operations are read-only.
type DuplicateDetector interface {
	// CheckForDuplicates hashes the stream and compares it, and the filename,
	// to the owner's documents.
	CheckForDuplicates(ctx context.Context, r io.Reader, originalName, ownerID string) (*domain.DuplicateCheck, error)

	// CheckWithDocuments is CheckForDuplicates scoring names against an
	// already fetched document list instead of querying the store.
	CheckWithDocuments(
		ctx context.Context,
		r io.Reader,
		originalName, ownerID string,
		existing []domain.Document,
	) (*domain.DuplicateCheck, error)

	// GenerateReport renders a one-line, human-readable classification.
	GenerateReport(result *domain.DuplicateCheck, originalName string) string

	// UpdateContentFingerprint persists a fingerprint onto an existing document.
	UpdateContentFingerprint(ctx context.Context, documentID, fingerprint string) error

	// BackfillFingerprints computes fingerprints for the owner's documents
	// that were stored without one.
	BackfillFingerprints(ctx context.Context, ownerID string) (*BackfillResult, error)
}

// BackfillResult summarises a fingerprint backfill.
type BackfillResult struct {
	// Scanned is the number of documents lacking a fingerprint.
	Scanned int

	// Updated is the number of documents that received one.
	Updated int

	// Errors lists per-document failures.
	Errors []FileError
}
