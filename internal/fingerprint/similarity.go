package fingerprint

import "unicode/utf8"

// DefaultThreshold is the similarity above which names count as near-duplicates.
const DefaultThreshold = 0.8

// Similarity scores two filenames in [0, 1] using their similarity keys.
// It is symmetric and Similarity(a, a) == 1.
func Similarity(a, b string) float64 {
	return KeySimilarity(SimilarityKey(a), SimilarityKey(b))
}

// KeySimilarity scores two already-normalised keys as
// 1 - distance/max(len(a), len(b)). Two empty keys score 1.
func KeySimilarity(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1.0
	}
	return 1.0 - float64(Levenshtein(a, b))/float64(longest)
}

// UpperBound returns the best score two keys of the given rune lengths can
// reach. Distance is at least the length difference, so candidates whose
// bound does not exceed the threshold can be skipped without scoring.
func UpperBound(lenA, lenB int) float64 {
	longest := max(lenA, lenB)
	if longest == 0 {
		return 1.0
	}
	diff := lenA - lenB
	if diff < 0 {
		diff = -diff
	}
	return 1.0 - float64(diff)/float64(longest)
}

// Levenshtein returns the minimum number of single-rune insertions,
// deletions and substitutions turning a into b.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Two rows of the DP table: prev is row i-1, curr is row i.
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}
