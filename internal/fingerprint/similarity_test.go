package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"report", "report", 0},
		{"report", "report v2", 3},
		{"café", "cafe", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b))
			assert.Equal(t, tt.want, Levenshtein(tt.b, tt.a))
		})
	}
}

func TestSimilarity_Reflexive(t *testing.T) {
	names := []string{"", "report.pdf", "Q3 Rates.xlsx", "___", "a"}
	for _, name := range names {
		assert.Equal(t, 1.0, Similarity(name, name), name)
	}
}

func TestSimilarity_SymmetricAndBounded(t *testing.T) {
	names := []string{"report.pdf", "report_v2.pdf", "invoice.docx", "", "x", "Merchant Statement 2024.pdf"}
	for _, a := range names {
		for _, b := range names {
			ab := Similarity(a, b)
			assert.Equal(t, ab, Similarity(b, a), "%q vs %q", a, b)
			assert.GreaterOrEqual(t, ab, 0.0)
			assert.LessOrEqual(t, ab, 1.0)
		}
	}
}

func TestSimilarity_Values(t *testing.T) {
	// "report" vs "report v2": distance 3 over 9 runes.
	assert.InDelta(t, 1.0-3.0/9.0, Similarity("report.pdf", "report_v2.pdf"), 1e-9)

	// Extension and case are ignored.
	assert.Equal(t, 1.0, Similarity("Report.PDF", "report.docx"))

	// Completely different names.
	assert.Equal(t, 0.0, Similarity("abc.txt", "xyz.txt"))

	// One empty key against a non-empty key.
	assert.Equal(t, 0.0, Similarity("___.txt", "abc.txt"))
}

func TestSimilarity_NearDuplicateAboveThreshold(t *testing.T) {
	score := Similarity("merchant statement 2024.pdf", "merchant statement 2023.pdf")
	assert.Greater(t, score, DefaultThreshold)
}

func TestUpperBound(t *testing.T) {
	assert.Equal(t, 1.0, UpperBound(0, 0))
	assert.Equal(t, 1.0, UpperBound(5, 5))
	assert.InDelta(t, 0.5, UpperBound(5, 10), 1e-9)
	assert.Equal(t, UpperBound(3, 9), UpperBound(9, 3))

	// The bound never undercuts the real score.
	a, b := SimilarityKey("report.pdf"), SimilarityKey("report_v2.pdf")
	assert.GreaterOrEqual(t, UpperBound(len(a), len(b)), KeySimilarity(a, b))
}
