package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/intake/internal/core/domain"
	"github.com/custodia-labs/intake/internal/core/ports/driven"
	"github.com/custodia-labs/intake/internal/core/ports/driving"
	"github.com/custodia-labs/intake/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages stored documents.
type DocumentService struct {
	docStore driven.DocumentStore
	files    driven.FileStorage
}

// NewDocumentService creates a new document service.
// files may be nil, in which case Delete leaves stored files in place.
func NewDocumentService(docStore driven.DocumentStore, files driven.FileStorage) *DocumentService {
	return &DocumentService{
		docStore: docStore,
		files:    files,
	}
}

// ListByOwner returns all documents for an owner.
func (s *DocumentService) ListByOwner(ctx context.Context, ownerID string) ([]domain.Document, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", domain.ErrInvalidInput)
	}
	docs, err := s.docStore.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, storageError("list documents", err)
	}
	return docs, nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return nil, storageError("get document", err)
	}
	return doc, nil
}

// GetContent returns the concatenated content of all chunks.
func (s *DocumentService) GetContent(ctx context.Context, documentID string) (string, error) {
	// Verify document exists
	if _, err := s.Get(ctx, documentID); err != nil {
		return "", err
	}

	chunks, err := s.docStore.GetChunks(ctx, documentID)
	if err != nil {
		return "", storageError("get chunks", err)
	}

	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].Position < chunks[j].Position
	})

	var builder strings.Builder
	for i, chunk := range chunks {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(chunk.Content)
	}

	return builder.String(), nil
}

// GetDetails returns document metadata for display.
func (s *DocumentService) GetDetails(ctx context.Context, documentID string) (*driving.DocumentDetails, error) {
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}

	chunkCount := 0
	if chunks, err := s.docStore.GetChunks(ctx, documentID); err == nil {
		chunkCount = len(chunks)
	}

	return &driving.DocumentDetails{
		ID:                 doc.ID,
		OwnerID:            doc.OwnerID,
		Name:               doc.Name,
		OriginalName:       doc.OriginalName,
		MIMEType:           doc.MIMEType,
		Size:               doc.Size,
		ContentFingerprint: doc.Fingerprint(),
		NameFingerprint:    doc.NameFingerprint,
		ChunkCount:         chunkCount,
		CreatedAt:          doc.CreatedAt,
		UpdatedAt:          doc.UpdatedAt,
	}, nil
}

// Delete removes a document and its chunks, then its stored file.
// A failure to remove the file is logged; the document is already gone.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return err
	}

	if err := s.docStore.DeleteDocument(ctx, documentID); err != nil {
		return storageError("delete document", err)
	}

	if s.files != nil && doc.Path != "" {
		if err := s.files.Remove(ctx, doc.Path); err != nil {
			logger.Warn("remove stored file %s: %v", doc.Path, err)
		}
	}
	return nil
}
