package driven

import (
	"context"
)

// Normaliser turns the bytes of one file type into plain text.
// Each normaliser handles specific MIME types (e.g., PDF, DOCX).
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise extracts plain text from the file content.
	Normalise(ctx context.Context, content []byte) (string, error)
}

// NormaliserRegistry selects the appropriate normaliser for a MIME type.
type NormaliserRegistry interface {
	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// Normalise extracts text using the best matching normaliser.
	// Returns domain.ErrUnsupportedType when no normaliser handles the type.
	Normalise(ctx context.Context, mimeType string, content []byte) (string, error)

	// SupportedMIMETypes returns all MIME types that can be normalised.
	SupportedMIMETypes() []string
}

// ContentExtractor obtains plain text for a stored file.
type ContentExtractor interface {
	// Extract reads the file at path and returns its text for the MIME type.
	Extract(ctx context.Context, path, mimeType string) (string, error)
}
