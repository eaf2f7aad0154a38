package upload

import (
	"path/filepath"
	"strings"
)

// File describes one uploaded file captured from a multipart body.
type File struct {
	// FieldName is the raw form field name, bracket notation included
	// (e.g. "upfiles[]").
	FieldName string

	// Filename is the filename declared by the client. It may be empty:
	// an empty selected file is still a valid upload.
	Filename string

	// ContentType is the Content-Type declared for the part, if any.
	ContentType string

	// Size is the number of body bytes received for the file.
	Size int64

	// Path is the file's current storage location: a temp file until the
	// file is moved, the destination afterwards.
	Path string

	// Index is the zero-based arrival position among the files sharing the
	// same field name.
	Index int

	moved bool
}

// Moved reports whether the file has been relocated out of temp storage.
func (f *File) Moved() bool {
	return f.moved
}

// SanitizeFilename strips path components and dangerous characters from a
// client-supplied filename so it cannot traverse outside the destination
// directory. Empty and special names become "unnamed".
//
//	upload.SanitizeFilename("../../../etc/passwd") // "passwd"
//	upload.SanitizeFilename("C:\\Windows\\file.txt") // "file.txt"
func SanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "\\", "/")
	filename = filepath.Base(filename)
	filename = strings.ReplaceAll(filename, "\x00", "")

	if filename == "." || filename == ".." || filename == "" || filename == "/" {
		filename = "unnamed"
	}

	return filename
}
