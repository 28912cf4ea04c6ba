// Package fingerprint computes the identities used for duplicate detection.
//
// Three independent signals are provided:
//
//   - Content fingerprint: SHA-256 over the streamed file bytes
//   - Name fingerprint: a short HighwayHash of the normalised filename
//   - Name similarity: Levenshtein-based score between similarity keys
//
// All functions are pure; none touch storage.
package fingerprint
