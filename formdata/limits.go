package formdata

import (
	"fmt"
	"io"
)

// Limits caps resource usage for one body parse. A zero field means that
// dimension is unbounded. Limits itself is immutable; the running counters
// live in a per-parse LimitTracker, so a Limits value may be shared freely
// between concurrent requests.
type Limits struct {
	// MaxFiles caps the number of uploaded files per request.
	MaxFiles int64

	// MaxFileSize caps the byte size of a single uploaded file.
	MaxFileSize int64

	// MaxContentLength caps the total number of body bytes read, fields,
	// files and framing included.
	MaxContentLength int64
}

// LimitTracker enforces Limits incrementally over one parse. Each counter
// is checked at the moment it advances, never after the fact. Not safe for
// concurrent use; a parse is a single sequential flow.
type LimitTracker struct {
	limits    Limits
	files     int64
	fileBytes int64
	bodyBytes int64
}

// NewLimitTracker creates a tracker with all counters at zero.
func NewLimitTracker(limits Limits) *LimitTracker {
	return &LimitTracker{limits: limits}
}

// BeginFile counts a new file part and resets the per-file byte counter.
// It fails with ErrTooManyFiles before any of the file's content is read.
func (t *LimitTracker) BeginFile() error {
	t.files++
	t.fileBytes = 0
	if t.limits.MaxFiles > 0 && t.files > t.limits.MaxFiles {
		return fmt.Errorf("%w: limit is %d", ErrTooManyFiles, t.limits.MaxFiles)
	}
	return nil
}

// AddFileBytes counts n streamed bytes of the current file, failing with
// ErrFileTooLarge as soon as the threshold is crossed.
func (t *LimitTracker) AddFileBytes(n int64) error {
	t.fileBytes += n
	if t.limits.MaxFileSize > 0 && t.fileBytes > t.limits.MaxFileSize {
		return fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, t.limits.MaxFileSize)
	}
	return nil
}

// AddBodyBytes counts n bytes read from the body stream, failing with
// ErrBodyTooLarge as soon as the threshold is crossed.
func (t *LimitTracker) AddBodyBytes(n int64) error {
	t.bodyBytes += n
	if t.limits.MaxContentLength > 0 && t.bodyBytes > t.limits.MaxContentLength {
		return fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, t.limits.MaxContentLength)
	}
	return nil
}

// Reader wraps a body stream so that every read feeds AddBodyBytes. Once
// the body limit trips, the reader keeps returning the same error.
func (t *LimitTracker) Reader(r io.Reader) io.Reader {
	return &limitReader{r: r, tracker: t}
}

type limitReader struct {
	r       io.Reader
	tracker *LimitTracker
	err     error
}

func (lr *limitReader) Read(b []byte) (int, error) {
	if lr.err != nil {
		return 0, lr.err
	}
	n, err := lr.r.Read(b)
	if n > 0 {
		if lerr := lr.tracker.AddBodyBytes(int64(n)); lerr != nil {
			lr.err = lerr
			return 0, lerr
		}
	}
	return n, err
}
