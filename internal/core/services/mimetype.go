package services

import (
	"mime"
	"path/filepath"
	"strings"
)

// DefaultMIMEType is used when a filename's extension is unknown.
const DefaultMIMEType = "application/octet-stream"

// knownTypes covers extensions that minimal systems often lack in their
// MIME tables.
var knownTypes = map[string]string{
	".txt":  "text/plain",
	".md":   "text/markdown",
	".html": "text/html",
	".htm":  "text/html",
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// DetectMIMEType returns the media type for a filename from its extension,
// without parameters such as charset.
func DetectMIMEType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := knownTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		if mediaType, _, err := mime.ParseMediaType(t); err == nil {
			return mediaType
		}
	}
	return DefaultMIMEType
}
