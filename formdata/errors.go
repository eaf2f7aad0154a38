package formdata

import "errors"

var (
	// ErrMalformed is returned for structurally broken input: a boundary
	// that never appears, truncated part headers, an unparseable
	// Content-Disposition, or a body that ends mid-part.
	ErrMalformed = errors.New("malformed multipart body")

	// ErrTooManyFiles is returned when a new file part would exceed
	// Limits.MaxFiles. Raised before the part's content is read.
	ErrTooManyFiles = errors.New("too many uploaded files")

	// ErrFileTooLarge is returned the moment a file's streamed size crosses
	// Limits.MaxFileSize, without reading the remainder of the part.
	ErrFileTooLarge = errors.New("uploaded file exceeds size limit")

	// ErrBodyTooLarge is returned when the cumulative body size crosses
	// Limits.MaxContentLength.
	ErrBodyTooLarge = errors.New("request body exceeds size limit")
)
