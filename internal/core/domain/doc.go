// Package domain defines the core business entities for intake.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A stored upload with its fingerprints
//   - Chunk: A sentence-aligned unit of extracted text
//   - DuplicateCheck: The verdict of a duplicate check
//   - Upload: A temporary file awaiting ingestion
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
