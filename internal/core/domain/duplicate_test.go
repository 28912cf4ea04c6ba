package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDuplicate(t *testing.T) {
	match := Document{ID: "doc-1", OriginalName: "report.pdf"}

	check := NewDuplicate(match, "content-fp", "name-fp")

	assert.True(t, check.IsDuplicate())
	assert.Equal(t, VerdictDuplicate, check.Verdict())
	require.NotNil(t, check.Match())
	assert.Equal(t, "doc-1", check.Match().ID)
	assert.Empty(t, check.Candidates())
	assert.Equal(t, "content-fp", check.ContentFingerprint)
	assert.Equal(t, "name-fp", check.NameFingerprint)
}

func TestNewDuplicate_CopiesMatch(t *testing.T) {
	match := Document{ID: "doc-1"}
	check := NewDuplicate(match, "fp", "nfp")

	match.ID = "changed"
	assert.Equal(t, "doc-1", check.Match().ID)
}

func TestNewClean(t *testing.T) {
	candidates := []SimilarDocument{
		{Document: Document{ID: "doc-2"}, Score: 0.91},
		{Document: Document{ID: "doc-3"}, Score: 0.85},
	}

	check := NewClean(candidates, "content-fp", "name-fp")

	assert.False(t, check.IsDuplicate())
	assert.Equal(t, VerdictClean, check.Verdict())
	assert.Nil(t, check.Match())
	require.Len(t, check.Candidates(), 2)
	assert.Equal(t, "doc-2", check.Candidates()[0].Document.ID)
}

func TestNewClean_NoCandidates(t *testing.T) {
	check := NewClean(nil, "fp", "nfp")
	assert.False(t, check.IsDuplicate())
	assert.Empty(t, check.Candidates())
}

func TestVerdict_String(t *testing.T) {
	assert.Equal(t, "duplicate", VerdictDuplicate.String())
	assert.Equal(t, "clean", VerdictClean.String())
	assert.Equal(t, "unknown", Verdict(42).String())
}

func TestSimilarDocument_PercentRoundsHalfUp(t *testing.T) {
	tests := []struct {
		score float64
		want  int
	}{
		{0, 0},
		{0.125, 13},
		{0.625, 63},
		{0.849, 85},
		{1, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SimilarDocument{Score: tt.score}.Percent(), "score %v", tt.score)
	}
}
