package storage

import (
	"context"
	"io"
	"mime"
	"path/filepath"
)

// Object describes a stored file.
type Object struct {
	// Path is the backend-relative path (object key for S3).
	Path string

	// AbsolutePath is the absolute filesystem path; empty for object stores.
	AbsolutePath string

	// Size is the number of bytes written.
	Size int64

	// ContentType is the MIME type the object was stored with.
	ContentType string
}

// Storage is a destination backend for uploaded files.
type Storage interface {
	// Save streams r into the backend at path and returns object metadata.
	Save(ctx context.Context, r io.Reader, path string) (*Object, error)
	// Delete removes a single file.
	Delete(ctx context.Context, path string) error
	// Exists checks whether a file exists.
	Exists(ctx context.Context, path string) bool
	// URL returns the public URL for a file.
	URL(path string) string
}

// contentTypeFor guesses a MIME type from the path's extension, falling
// back to application/octet-stream.
func contentTypeFor(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
