// Package html provides a Normaliser implementation for HTML documents.
// It strips tags, scripts and styles and decodes entities.
package html
