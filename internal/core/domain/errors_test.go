package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_Distinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrAlreadyExists, ErrInvalidInput, ErrUnsupportedType,
		ErrDuplicate, ErrIO, ErrStorage, ErrExtraction, ErrIndexing,
	}

	seen := make(map[string]bool)
	for i, err := range sentinels {
		require.NotEmpty(t, err.Error())
		assert.False(t, seen[err.Error()], "message %q reused", err.Error())
		seen[err.Error()] = true
		for j, other := range sentinels {
			if i != j {
				assert.NotErrorIs(t, err, other)
			}
		}
	}
}

func TestErrors_WrappedStillMatch(t *testing.T) {
	wrapped := fmt.Errorf("hash upload: %w", ErrIO)
	assert.True(t, errors.Is(wrapped, ErrIO))
	assert.False(t, errors.Is(wrapped, ErrStorage))
}

func TestDuplicateRejectedError_Message(t *testing.T) {
	err := &DuplicateRejectedError{Match: Document{
		ID:           "doc-1",
		OriginalName: "statement.pdf",
		CreatedAt:    time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC),
	}}

	assert.Equal(t, `duplicate document: "statement.pdf" already uploaded on 2024-03-09`, err.Error())
}

func TestDuplicateRejectedError_IsAndAs(t *testing.T) {
	var err error = fmt.Errorf("ingest: %w", &DuplicateRejectedError{Match: Document{ID: "doc-9"}})

	assert.True(t, errors.Is(err, ErrDuplicate))

	var rejected *DuplicateRejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, "doc-9", rejected.Match.ID)
}
