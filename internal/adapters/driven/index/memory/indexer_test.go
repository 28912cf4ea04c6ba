package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/intake/internal/core/domain"
)

func TestIndexer_Records(t *testing.T) {
	idx := New()
	chunks := []domain.Chunk{{ID: "d-chunk-0", Content: "One."}}

	require.NoError(t, idx.Index(context.Background(), "d", "doc.txt", chunks, map[string]any{"owner_id": "u"}))
	require.NoError(t, idx.Index(context.Background(), "d", "doc.txt", nil, nil))

	assert.Len(t, idx.Submissions(), 2)

	latest, ok := idx.ForDocument("d")
	require.True(t, ok)
	assert.Empty(t, latest.Chunks)

	_, ok = idx.ForDocument("other")
	assert.False(t, ok)
}

func TestIndexer_FailWith(t *testing.T) {
	idx := New()
	boom := errors.New("index down")
	idx.FailWith(boom)

	err := idx.Index(context.Background(), "d", "doc.txt", nil, nil)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, idx.Submissions())

	idx.FailWith(nil)
	assert.NoError(t, idx.Index(context.Background(), "d", "doc.txt", nil, nil))
}
