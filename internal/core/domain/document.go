package domain

import "time"

// Document is a persisted upload owned by a single user.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// OwnerID is the user the document belongs to.
	OwnerID string

	// Name is the display name.
	Name string

	// OriginalName is the filename as uploaded.
	OriginalName string

	// MIMEType is the content type of the upload (e.g., "application/pdf").
	MIMEType string

	// Size is the byte size of the upload.
	Size int64

	// Path is where the upload bytes are stored.
	Path string

	// ContentFingerprint is the SHA-256 of the file bytes.
	// Nil until computed; documents ingested before fingerprinting
	// existed are backfilled later.
	ContentFingerprint *string

	// NameFingerprint is a short digest of the normalised filename.
	NameFingerprint string

	// FolderID optionally places the document in a folder.
	FolderID *string

	// CreatedAt is when the document was first stored.
	CreatedAt time.Time

	// UpdatedAt is when the document row was last modified.
	UpdatedAt time.Time
}

// Fingerprint returns the content fingerprint or "" when it has not been computed.
func (d *Document) Fingerprint() string {
	if d == nil || d.ContentFingerprint == nil {
		return ""
	}
	return *d.ContentFingerprint
}

// Chunk is a sentence-aligned slice of a document's extracted text.
// Chunks are the unit handed to the vector indexer.
type Chunk struct {
	// ID is "<document id>-chunk-<position>".
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Position is the 0-based sequence index within the document.
	Position int

	// Content is the chunk text.
	Content string

	// WordCount is the number of whitespace-separated words in Content.
	WordCount int

	// StartOffset is the byte offset of the chunk's first sentence in the source text.
	StartOffset int

	// EndOffset is the byte offset just past the chunk's last sentence.
	EndOffset int

	// Metadata carries document-level context for the indexer.
	Metadata map[string]any
}

// Upload describes a file that has already been saved to temporary storage
// and is waiting to be ingested.
type Upload struct {
	// Path locates the temporary file (local path or storage URL).
	Path string

	// OriginalName is the filename supplied by the client.
	OriginalName string

	// MIMEType is the declared content type.
	MIMEType string

	// Size is the byte size, if known. Zero means unknown.
	Size int64
}
