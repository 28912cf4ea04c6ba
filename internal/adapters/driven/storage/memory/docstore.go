package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/intake/internal/core/domain"
	"github.com/custodia-labs/intake/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// The (owner, content fingerprint) index is checked and updated under the
// same lock as the document map, so concurrent inserts of the same bytes
// cannot both succeed.
type DocumentStore struct {
	mu           sync.RWMutex
	documents    map[string]domain.Document
	chunks       map[string][]domain.Chunk
	fingerprints map[fingerprintKey]string // -> document ID
}

type fingerprintKey struct {
	owner       string
	fingerprint string
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents:    make(map[string]domain.Document),
		chunks:       make(map[string][]domain.Chunk),
		fingerprints: make(map[fingerprintKey]string),
	}
}

// FindByContentFingerprint returns the owner's document holding fingerprint.
func (s *DocumentStore) FindByContentFingerprint(_ context.Context, ownerID, fingerprint string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.fingerprints[fingerprintKey{ownerID, fingerprint}]
	if !ok {
		return nil, nil
	}
	doc := cloneDocument(s.documents[id])
	return &doc, nil
}

// ListByOwner returns all documents of an owner, oldest first.
func (s *DocumentStore) ListByOwner(_ context.Context, ownerID string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []domain.Document
	for _, doc := range s.documents {
		if doc.OwnerID == ownerID {
			docs = append(docs, cloneDocument(doc))
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.Before(docs[j].CreatedAt)
		}
		return docs[i].ID < docs[j].ID
	})
	return docs, nil
}

// Insert stores a new document.
func (s *DocumentStore) Insert(_ context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" || doc.OwnerID == "" {
		return fmt.Errorf("%w: document id and owner are required", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.documents[doc.ID]; exists {
		return fmt.Errorf("%w: document %s", domain.ErrAlreadyExists, doc.ID)
	}
	if fp := doc.Fingerprint(); fp != "" {
		key := fingerprintKey{doc.OwnerID, fp}
		if _, taken := s.fingerprints[key]; taken {
			return fmt.Errorf("%w: content fingerprint %s", domain.ErrAlreadyExists, fp)
		}
		s.fingerprints[key] = doc.ID
	}

	s.documents[doc.ID] = cloneDocument(*doc)
	return nil
}

// UpdateFingerprint sets the content fingerprint of an existing document.
func (s *DocumentStore) UpdateFingerprint(_ context.Context, documentID, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[documentID]
	if !ok {
		return domain.ErrNotFound
	}
	if doc.Fingerprint() == fingerprint {
		return nil
	}

	key := fingerprintKey{doc.OwnerID, fingerprint}
	if holder, taken := s.fingerprints[key]; taken && holder != documentID {
		return fmt.Errorf("%w: content fingerprint %s", domain.ErrAlreadyExists, fingerprint)
	}

	if old := doc.Fingerprint(); old != "" {
		delete(s.fingerprints, fingerprintKey{doc.OwnerID, old})
	}
	s.fingerprints[key] = documentID

	fp := fingerprint
	doc.ContentFingerprint = &fp
	doc.UpdatedAt = time.Now()
	s.documents[documentID] = doc
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	doc = cloneDocument(doc)
	return &doc, nil
}

// DeleteDocument removes a document and its chunks.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[id]
	if !ok {
		return domain.ErrNotFound
	}
	if fp := doc.Fingerprint(); fp != "" {
		delete(s.fingerprints, fingerprintKey{doc.OwnerID, fp})
	}
	delete(s.documents, id)
	delete(s.chunks, id)
	return nil
}

// ReplaceChunks deletes the document's existing chunks and stores the new set.
func (s *DocumentStore) ReplaceChunks(_ context.Context, documentID string, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[documentID]; !ok {
		return domain.ErrNotFound
	}
	if len(chunks) == 0 {
		delete(s.chunks, documentID)
		return nil
	}

	stored := make([]domain.Chunk, len(chunks))
	copy(stored, chunks)
	sort.Slice(stored, func(i, j int) bool { return stored[i].Position < stored[j].Position })
	s.chunks[documentID] = stored
	return nil
}

// GetChunks retrieves all chunks for a document ordered by position.
func (s *DocumentStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunks, ok := s.chunks[documentID]
	if !ok {
		return nil, nil
	}
	out := make([]domain.Chunk, len(chunks))
	copy(out, chunks)
	return out, nil
}

// cloneDocument copies a document so callers never share pointer fields
// with the store.
func cloneDocument(doc domain.Document) domain.Document {
	if doc.ContentFingerprint != nil {
		fp := *doc.ContentFingerprint
		doc.ContentFingerprint = &fp
	}
	if doc.FolderID != nil {
		folder := *doc.FolderID
		doc.FolderID = &folder
	}
	return doc
}
