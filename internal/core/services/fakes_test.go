package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/custodia-labs/intake/internal/core/domain"
	"github.com/custodia-labs/intake/internal/core/ports/driven"
)

var _ driven.FileStorage = (*memFiles)(nil)

// memFiles is an in-memory FileStorage keyed by path.
type memFiles struct {
	mu      sync.Mutex
	data    map[string][]byte
	removed []string
	openErr error
}

func newMemFiles() *memFiles {
	return &memFiles{data: make(map[string][]byte)}
}

func (m *memFiles) put(path, content string) domain.Upload {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[path] = []byte(content)
	return domain.Upload{Path: path, OriginalName: path, MIMEType: "text/plain"}
}

func (m *memFiles) Open(_ context.Context, path string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.openErr != nil {
		return nil, m.openErr
	}
	data, ok := m.data[path]
	if !ok {
		return nil, fmt.Errorf("%w: open %s: %w", domain.ErrIO, path, os.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memFiles) Remove(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, path)
	m.removed = append(m.removed, path)
	return nil
}

func (m *memFiles) exists(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[path]
	return ok
}

func (m *memFiles) removedPaths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.removed...)
}

// failingStore wraps a DocumentStore and fails selected operations.
type failingStore struct {
	driven.DocumentStore
	listErr    error
	findErr    error
	insertErr  error
	replaceErr error
}

func (f *failingStore) ListByOwner(ctx context.Context, ownerID string) ([]domain.Document, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.DocumentStore.ListByOwner(ctx, ownerID)
}

func (f *failingStore) FindByContentFingerprint(ctx context.Context, ownerID, fp string) (*domain.Document, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.DocumentStore.FindByContentFingerprint(ctx, ownerID, fp)
}

func (f *failingStore) Insert(ctx context.Context, doc *domain.Document) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	return f.DocumentStore.Insert(ctx, doc)
}

func (f *failingStore) ReplaceChunks(ctx context.Context, id string, chunks []domain.Chunk) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	return f.DocumentStore.ReplaceChunks(ctx, id, chunks)
}

// failingExtractor always fails extraction.
type failingExtractor struct{}

func (failingExtractor) Extract(context.Context, string, string) (string, error) {
	return "", fmt.Errorf("%w: corrupt file", domain.ErrExtraction)
}

var errBoom = errors.New("boom")

func seedDoc(id, owner, name, fp string, createdAt time.Time) *domain.Document {
	doc := &domain.Document{
		ID:           id,
		OwnerID:      owner,
		Name:         name,
		OriginalName: name,
		MIMEType:     "text/plain",
		Path:         id + ".txt",
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	if fp != "" {
		doc.ContentFingerprint = &fp
	}
	return doc
}
