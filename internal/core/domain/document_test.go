package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDocument_Fields tests Document structure fields
func TestDocument_Fields(t *testing.T) {
	now := time.Now()
	folderID := "folder-1"
	fp := "abc123"

	doc := Document{
		ID:                 "doc-123",
		OwnerID:            "user-1",
		Name:               "Q3 Rates",
		OriginalName:       "q3-rates.pdf",
		MIMEType:           "application/pdf",
		Size:               2048,
		Path:               "/uploads/tmp/abc",
		ContentFingerprint: &fp,
		NameFingerprint:    "0011223344556677",
		FolderID:           &folderID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	assert.Equal(t, "doc-123", doc.ID)
	assert.Equal(t, "user-1", doc.OwnerID)
	assert.Equal(t, "q3-rates.pdf", doc.OriginalName)
	assert.Equal(t, int64(2048), doc.Size)
	require.NotNil(t, doc.FolderID)
	assert.Equal(t, "folder-1", *doc.FolderID)
	assert.Equal(t, "abc123", doc.Fingerprint())
}

func TestDocument_FingerprintUnset(t *testing.T) {
	doc := Document{ID: "doc-1"}
	assert.Equal(t, "", doc.Fingerprint())

	var nilDoc *Document
	assert.Equal(t, "", nilDoc.Fingerprint())
}

// TestChunk_Fields tests Chunk structure fields
func TestChunk_Fields(t *testing.T) {
	chunk := Chunk{
		ID:          "doc-1-chunk-0",
		DocumentID:  "doc-1",
		Position:    0,
		Content:     "This is one.",
		WordCount:   3,
		StartOffset: 0,
		EndOffset:   12,
		Metadata:    map[string]any{"mime_type": "text/plain"},
	}

	assert.Equal(t, "doc-1-chunk-0", chunk.ID)
	assert.Equal(t, 12, chunk.EndOffset-chunk.StartOffset)
	assert.Equal(t, len(chunk.Content), chunk.EndOffset-chunk.StartOffset)
	assert.Equal(t, "text/plain", chunk.Metadata["mime_type"])
}
