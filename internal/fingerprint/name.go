package fingerprint

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/minio/highwayhash"
)

// nameKey is the fixed HighwayHash key; changing it invalidates every
// stored name fingerprint.
var nameKey = []byte("intake-name-fingerprint-key-0001")

// Key returns the alphanumeric-only comparison key for a filename:
// lower-cased, extension removed, every non letter/digit dropped.
func Key(name string) string {
	base := stripExtension(strings.ToLower(name))

	var b strings.Builder
	b.Grow(len(base))
	for _, r := range base {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SimilarityKey returns the display-normalised form used for edit distance:
// lower-cased, extension removed, each run of non-alphanumerics collapsed
// to a single space, trimmed.
func SimilarityKey(name string) string {
	base := stripExtension(strings.ToLower(name))

	var b strings.Builder
	b.Grow(len(base))
	pendingSpace := false
	for _, r := range base {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

// NameFingerprint returns a 16 character hex digest of Key(name).
// Equal keys always produce equal fingerprints, so it works as a cheap
// equality pre-filter before edit-distance scoring.
func NameFingerprint(name string) string {
	h, err := highwayhash.New64(nameKey)
	if err != nil {
		// Only returned for a key that is not 32 bytes.
		panic(fmt.Sprintf("fingerprint: invalid highwayhash key: %v", err))
	}
	_, _ = h.Write([]byte(Key(name)))
	return fmt.Sprintf("%016x", h.Sum64())
}

// stripExtension removes the text after the last dot. A name whose only
// dot is the leading one (".env") is returned unchanged.
func stripExtension(name string) string {
	if idx := strings.LastIndex(name, "."); idx > 0 {
		return name[:idx]
	}
	return name
}
