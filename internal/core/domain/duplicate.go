package domain

// Verdict classifies an upload against the owner's existing documents.
type Verdict int

const (
	// VerdictClean means no existing document has identical content.
	VerdictClean Verdict = iota

	// VerdictDuplicate means an existing document has identical content.
	VerdictDuplicate
)

// String returns the verdict name.
func (v Verdict) String() string {
	switch v {
	case VerdictDuplicate:
		return "duplicate"
	case VerdictClean:
		return "clean"
	default:
		return "unknown"
	}
}

// SimilarDocument is an existing document whose filename is close to the
// upload's filename.
type SimilarDocument struct {
	Document Document

	// Score is the normalised name similarity in [0, 1].
	Score float64
}

// Percent is Score as a whole percentage, rounded half up.
func (s SimilarDocument) Percent() int {
	return int(s.Score*100 + 0.5)
}

// DuplicateCheck is the outcome of a duplicate check for one upload attempt.
// It is never persisted. Build it with NewDuplicate or NewClean so the
// verdict and its payload always agree.
type DuplicateCheck struct {
	verdict    Verdict
	match      *Document
	candidates []SimilarDocument

	// ContentFingerprint is the SHA-256 of the upload bytes.
	ContentFingerprint string

	// NameFingerprint is the digest of the normalised upload filename.
	NameFingerprint string
}

// NewDuplicate builds a duplicate verdict pointing at the matching document.
func NewDuplicate(match Document, contentFP, nameFP string) *DuplicateCheck {
	return &DuplicateCheck{
		verdict:            VerdictDuplicate,
		match:              &match,
		ContentFingerprint: contentFP,
		NameFingerprint:    nameFP,
	}
}

// NewClean builds a clean verdict with optional name-similar candidates,
// which must already be ordered by descending score.
func NewClean(candidates []SimilarDocument, contentFP, nameFP string) *DuplicateCheck {
	return &DuplicateCheck{
		verdict:            VerdictClean,
		candidates:         candidates,
		ContentFingerprint: contentFP,
		NameFingerprint:    nameFP,
	}
}

// Verdict returns the classification.
func (c *DuplicateCheck) Verdict() Verdict {
	return c.verdict
}

// IsDuplicate reports whether the upload is byte-identical to an existing document.
func (c *DuplicateCheck) IsDuplicate() bool {
	return c.verdict == VerdictDuplicate
}

// Match returns the identical document, or nil for a clean verdict.
func (c *DuplicateCheck) Match() *Document {
	return c.match
}

// Candidates returns documents with similar names. Always empty for duplicates.
func (c *DuplicateCheck) Candidates() []SimilarDocument {
	return c.candidates
}
