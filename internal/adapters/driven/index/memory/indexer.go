// Package memory provides an in-memory VectorIndexer that records what it
// was asked to index.
package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/intake/internal/core/domain"
	"github.com/custodia-labs/intake/internal/core/ports/driven"
)

// Ensure Indexer implements the interface.
var _ driven.VectorIndexer = (*Indexer)(nil)

// Submission is one recorded Index call.
type Submission struct {
	DocumentID   string
	DocumentName string
	Chunks       []domain.Chunk
	Metadata     map[string]any
}

// Indexer records submissions and can be told to fail.
type Indexer struct {
	mu          sync.RWMutex
	submissions []Submission
	err         error
}

// New creates an empty recording indexer.
func New() *Indexer {
	return &Indexer{}
}

// FailWith makes subsequent Index calls return err. Pass nil to recover.
func (i *Indexer) FailWith(err error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.err = err
}

// Index records the submission.
func (i *Indexer) Index(_ context.Context, documentID, documentName string, chunks []domain.Chunk, metadata map[string]any) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.err != nil {
		return i.err
	}

	copied := make([]domain.Chunk, len(chunks))
	copy(copied, chunks)
	i.submissions = append(i.submissions, Submission{
		DocumentID:   documentID,
		DocumentName: documentName,
		Chunks:       copied,
		Metadata:     metadata,
	})
	return nil
}

// Submissions returns a copy of everything indexed so far.
func (i *Indexer) Submissions() []Submission {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make([]Submission, len(i.submissions))
	copy(out, i.submissions)
	return out
}

// ForDocument returns the latest submission for a document.
func (i *Indexer) ForDocument(documentID string) (Submission, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	for j := len(i.submissions) - 1; j >= 0; j-- {
		if i.submissions[j].DocumentID == documentID {
			return i.submissions[j], true
		}
	}
	return Submission{}, false
}
