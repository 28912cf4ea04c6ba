// Package normalisers provides implementations of the Normaliser interface
// for various document formats. Each normaliser knows how to extract text
// content from a specific MIME type.
//
// Normalisers are registered with the Registry at startup. The Registry also
// serves as the ContentExtractor used by ingestion: it reads stored uploads
// through FileStorage and hands the bytes to the best normaliser.
package normalisers
