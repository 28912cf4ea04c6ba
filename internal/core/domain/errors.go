package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	// Stores return it when an insert would give an owner two documents
	// with the same content fingerprint.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates no normaliser handles a MIME type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Ingestion Errors.

	// ErrDuplicate indicates the upload is byte-identical to an existing document.
	ErrDuplicate = errors.New("duplicate document")

	// ErrIO indicates the upload stream could not be fully read.
	ErrIO = errors.New("i/o failure")

	// ErrStorage indicates a document store read or write failed.
	ErrStorage = errors.New("storage failure")

	// ErrExtraction indicates text could not be extracted from the upload.
	// Non-fatal: ingestion continues with empty content.
	ErrExtraction = errors.New("extraction failure")

	// ErrIndexing indicates the vector indexer rejected the chunks.
	// Non-fatal: the document stays stored but is not searchable.
	ErrIndexing = errors.New("indexing failure")
)

// DuplicateRejectedError is returned when an upload is refused because the
// owner already has a document with identical content.
type DuplicateRejectedError struct {
	// Match is the pre-existing document that blocked the upload.
	Match Document
}

// Error names the blocking file and its upload date.
func (e *DuplicateRejectedError) Error() string {
	return fmt.Sprintf("duplicate document: %q already uploaded on %s",
		e.Match.OriginalName, e.Match.CreatedAt.Format("2006-01-02"))
}

// Unwrap lets errors.Is match ErrDuplicate.
func (e *DuplicateRejectedError) Unwrap() error {
	return ErrDuplicate
}
