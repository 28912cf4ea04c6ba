// Package storetest holds the behavioural tests every DocumentStore
// implementation must pass.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/intake/internal/core/domain"
	"github.com/custodia-labs/intake/internal/core/ports/driven"
)

// Factory returns an empty store for one subtest.
type Factory func(t *testing.T) driven.DocumentStore

// NewDocument builds a document with the given identity and fingerprint.
// An empty fingerprint leaves ContentFingerprint nil.
func NewDocument(id, owner, name, fingerprint string, createdAt time.Time) *domain.Document {
	doc := &domain.Document{
		ID:              id,
		OwnerID:         owner,
		Name:            name,
		OriginalName:    name,
		MIMEType:        "text/plain",
		Size:            42,
		Path:            "/uploads/" + id,
		NameFingerprint: "nf-" + name,
		CreatedAt:       createdAt.UTC().Truncate(time.Millisecond),
		UpdatedAt:       createdAt.UTC().Truncate(time.Millisecond),
	}
	if fingerprint != "" {
		fp := fingerprint
		doc.ContentFingerprint = &fp
	}
	return doc
}

// Fingerprint returns a valid-looking 64 character hex fingerprint.
func Fingerprint(n int) string {
	return fmt.Sprintf("%064x", n)
}

// RunDocumentStoreSuite exercises the DocumentStore contract.
func RunDocumentStoreSuite(t *testing.T, newStore Factory) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("insert and get", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		folder := "folder-1"
		doc := NewDocument("doc-1", "owner-1", "a.txt", Fingerprint(1), base)
		doc.FolderID = &folder

		require.NoError(t, store.Insert(ctx, doc))

		got, err := store.GetDocument(ctx, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, doc.ID, got.ID)
		assert.Equal(t, doc.OwnerID, got.OwnerID)
		assert.Equal(t, doc.Name, got.Name)
		assert.Equal(t, doc.OriginalName, got.OriginalName)
		assert.Equal(t, doc.MIMEType, got.MIMEType)
		assert.Equal(t, doc.Size, got.Size)
		assert.Equal(t, doc.Path, got.Path)
		assert.Equal(t, doc.NameFingerprint, got.NameFingerprint)
		assert.Equal(t, Fingerprint(1), got.Fingerprint())
		require.NotNil(t, got.FolderID)
		assert.Equal(t, folder, *got.FolderID)
		assert.True(t, doc.CreatedAt.Equal(got.CreatedAt), "created at %v != %v", doc.CreatedAt, got.CreatedAt)
	})

	t.Run("get missing", func(t *testing.T) {
		store := newStore(t)
		_, err := store.GetDocument(context.Background(), "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("duplicate fingerprint same owner rejected", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.Insert(ctx, NewDocument("doc-1", "owner-1", "a.txt", Fingerprint(1), base)))
		err := store.Insert(ctx, NewDocument("doc-2", "owner-1", "b.txt", Fingerprint(1), base))
		assert.ErrorIs(t, err, domain.ErrAlreadyExists)

		docs, err := store.ListByOwner(ctx, "owner-1")
		require.NoError(t, err)
		assert.Len(t, docs, 1)
	})

	t.Run("same fingerprint different owners allowed", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.Insert(ctx, NewDocument("doc-1", "owner-1", "a.txt", Fingerprint(1), base)))
		require.NoError(t, store.Insert(ctx, NewDocument("doc-2", "owner-2", "a.txt", Fingerprint(1), base)))
	})

	t.Run("nil fingerprints never collide", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.Insert(ctx, NewDocument("doc-1", "owner-1", "a.txt", "", base)))
		require.NoError(t, store.Insert(ctx, NewDocument("doc-2", "owner-1", "b.txt", "", base)))

		got, err := store.GetDocument(ctx, "doc-1")
		require.NoError(t, err)
		assert.Nil(t, got.ContentFingerprint)
	})

	t.Run("find by fingerprint", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		require.NoError(t, store.Insert(ctx, NewDocument("doc-1", "owner-1", "a.txt", Fingerprint(1), base)))

		found, err := store.FindByContentFingerprint(ctx, "owner-1", Fingerprint(1))
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "doc-1", found.ID)

		found, err = store.FindByContentFingerprint(ctx, "owner-2", Fingerprint(1))
		require.NoError(t, err)
		assert.Nil(t, found)

		found, err = store.FindByContentFingerprint(ctx, "owner-1", Fingerprint(2))
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("list by owner oldest first", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.Insert(ctx, NewDocument("doc-c", "owner-1", "c.txt", Fingerprint(3), base.Add(2*time.Hour))))
		require.NoError(t, store.Insert(ctx, NewDocument("doc-a", "owner-1", "a.txt", Fingerprint(1), base)))
		require.NoError(t, store.Insert(ctx, NewDocument("doc-b", "owner-1", "b.txt", Fingerprint(2), base.Add(time.Hour))))
		require.NoError(t, store.Insert(ctx, NewDocument("doc-x", "owner-2", "x.txt", Fingerprint(4), base)))

		docs, err := store.ListByOwner(ctx, "owner-1")
		require.NoError(t, err)
		require.Len(t, docs, 3)
		assert.Equal(t, "doc-a", docs[0].ID)
		assert.Equal(t, "doc-b", docs[1].ID)
		assert.Equal(t, "doc-c", docs[2].ID)

		docs, err = store.ListByOwner(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("update fingerprint", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		require.NoError(t, store.Insert(ctx, NewDocument("doc-1", "owner-1", "a.txt", "", base)))
		require.NoError(t, store.Insert(ctx, NewDocument("doc-2", "owner-1", "b.txt", Fingerprint(2), base)))

		require.NoError(t, store.UpdateFingerprint(ctx, "doc-1", Fingerprint(1)))
		// Same value again is a no-op
		require.NoError(t, store.UpdateFingerprint(ctx, "doc-1", Fingerprint(1)))

		got, err := store.GetDocument(ctx, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, Fingerprint(1), got.Fingerprint())

		err = store.UpdateFingerprint(ctx, "doc-1", Fingerprint(2))
		assert.ErrorIs(t, err, domain.ErrAlreadyExists)

		err = store.UpdateFingerprint(ctx, "missing", Fingerprint(9))
		assert.ErrorIs(t, err, domain.ErrNotFound)

		found, err := store.FindByContentFingerprint(ctx, "owner-1", Fingerprint(1))
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "doc-1", found.ID)
	})

	t.Run("chunks replace and order", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		require.NoError(t, store.Insert(ctx, NewDocument("doc-1", "owner-1", "a.txt", Fingerprint(1), base)))

		first := []domain.Chunk{
			newChunk("doc-1", 1, "Second."),
			newChunk("doc-1", 0, "First."),
		}
		require.NoError(t, store.ReplaceChunks(ctx, "doc-1", first))

		chunks, err := store.GetChunks(ctx, "doc-1")
		require.NoError(t, err)
		require.Len(t, chunks, 2)
		assert.Equal(t, "First.", chunks[0].Content)
		assert.Equal(t, "Second.", chunks[1].Content)
		assert.Equal(t, 6, chunks[0].EndOffset)
		assert.Equal(t, "a.txt", chunks[0].Metadata["document_name"])

		require.NoError(t, store.ReplaceChunks(ctx, "doc-1", []domain.Chunk{newChunk("doc-1", 0, "Only.")}))
		chunks, err = store.GetChunks(ctx, "doc-1")
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "Only.", chunks[0].Content)

		require.NoError(t, store.ReplaceChunks(ctx, "doc-1", nil))
		chunks, err = store.GetChunks(ctx, "doc-1")
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("chunks for missing document", func(t *testing.T) {
		store := newStore(t)
		chunks, err := store.GetChunks(context.Background(), "missing")
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("delete removes document chunks and fingerprint", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		require.NoError(t, store.Insert(ctx, NewDocument("doc-1", "owner-1", "a.txt", Fingerprint(1), base)))
		require.NoError(t, store.ReplaceChunks(ctx, "doc-1", []domain.Chunk{newChunk("doc-1", 0, "Text.")}))

		require.NoError(t, store.DeleteDocument(ctx, "doc-1"))

		_, err := store.GetDocument(ctx, "doc-1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		chunks, err := store.GetChunks(ctx, "doc-1")
		require.NoError(t, err)
		assert.Empty(t, chunks)

		// The fingerprint is free again
		require.NoError(t, store.Insert(ctx, NewDocument("doc-2", "owner-1", "a.txt", Fingerprint(1), base)))

		assert.ErrorIs(t, store.DeleteDocument(ctx, "doc-1"), domain.ErrNotFound)
	})

	t.Run("concurrent inserts of same content", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		const n = 8
		var wg sync.WaitGroup
		errs := make([]error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				doc := NewDocument(fmt.Sprintf("doc-%d", i), "owner-1", "same.txt", Fingerprint(7), base)
				errs[i] = store.Insert(ctx, doc)
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.ErrorIs(t, err, domain.ErrAlreadyExists)
		}
		assert.Equal(t, 1, succeeded)
	})
}

func newChunk(docID string, position int, content string) domain.Chunk {
	return domain.Chunk{
		ID:          fmt.Sprintf("%s-chunk-%d", docID, position),
		DocumentID:  docID,
		Position:    position,
		Content:     content,
		WordCount:   1,
		StartOffset: 0,
		EndOffset:   len(content),
		Metadata:    map[string]any{"document_name": "a.txt"},
	}
}
