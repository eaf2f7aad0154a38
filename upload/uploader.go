package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Mikhus/wsgikit/storage"
)

// Uploader owns the ordered set of files captured during one multipart
// parse. It is not safe for concurrent use; a parse is a single sequential
// flow and the uploader belongs to it.
type Uploader struct {
	files []*File
}

// NewUploader wraps an ordered file list produced by the multipart parser.
func NewUploader(files []*File) *Uploader {
	return &Uploader{files: files}
}

// HasFiles reports whether at least one file part was present in the body,
// zero-byte uploads included.
func (u *Uploader) HasFiles() bool {
	return len(u.files) > 0
}

// Files returns the held files in arrival order.
func (u *Uploader) Files() []*File {
	return u.files
}

// ByField groups the held files by form field name, preserving arrival
// order within each group. The grouping key is the base field name with
// bracket notation stripped, so "upfiles[]" parts group under "upfiles".
func (u *Uploader) ByField() map[string][]*File {
	out := make(map[string][]*File)
	for _, f := range u.files {
		name := baseFieldName(f.FieldName)
		out[name] = append(out[name], f)
	}
	return out
}

// Move relocates one file to destDir under its sanitized declared filename.
// With overwrite false an existing destination fails with
// ErrDestinationExists; otherwise the destination is replaced. On success
// the file's Path points at the new location and the temp file is gone.
func (u *Uploader) Move(f *File, destDir string, overwrite bool) error {
	dest := filepath.Join(destDir, SanitizeFilename(f.Filename))

	if !overwrite {
		if _, err := os.Lstat(dest); err == nil {
			return fmt.Errorf("%w: %s", ErrDestinationExists, dest)
		}
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if err := rename(f.Path, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	f.Path = dest
	f.moved = true
	return nil
}

// MoveAll applies Move to every held file in arrival order. The first
// failure stops the walk; already-moved files remain moved, there is no
// rollback. Callers that care about partial success inspect each file's
// Path and Moved state.
func (u *Uploader) MoveAll(destDir string, overwrite bool) error {
	for _, f := range u.files {
		if err := u.Move(f, destDir, overwrite); err != nil {
			return err
		}
	}
	return nil
}

// StoreAll streams every held file into a storage backend under
// dir/<sanitized filename>, removing each temp file after a successful
// save. Same best-effort contract as MoveAll: the first failure stops the
// walk and already-stored files stay stored.
func (u *Uploader) StoreAll(ctx context.Context, st storage.Storage, dir string) error {
	for _, f := range u.files {
		if err := u.store(ctx, st, f, dir); err != nil {
			return err
		}
	}
	return nil
}

func (u *Uploader) store(ctx context.Context, st storage.Storage, f *File, dir string) error {
	src, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer func() { _ = src.Close() }()

	obj, err := st.Save(ctx, src, path.Join(dir, SanitizeFilename(f.Filename)))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	_ = os.Remove(f.Path)
	f.Path = obj.Path
	f.moved = true
	return nil
}

// Cleanup removes the temp storage of every file that was never moved.
// It is idempotent and safe to defer unconditionally at end of request.
func (u *Uploader) Cleanup() {
	for _, f := range u.files {
		if f.moved || f.Path == "" {
			continue
		}
		_ = os.Remove(f.Path)
		f.Path = ""
	}
}

// rename moves a file, falling back to copy-and-delete when source and
// destination live on different filesystems.
func rename(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dest)
		return err
	}

	return os.Remove(src)
}

func baseFieldName(name string) string {
	if i := strings.IndexByte(name, '['); i >= 0 {
		return name[:i]
	}
	return name
}
