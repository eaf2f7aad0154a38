package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage implements Storage for the local filesystem. All operations
// are confined to the base directory to prevent path traversal. It is safe
// for concurrent use.
type LocalStorage struct {
	baseDir string
	baseURL string
}

// NewLocalStorage creates a local filesystem storage rooted at baseDir.
// baseURL is used for generating public URLs (e.g. "/files/") and may be
// empty when URLs are not needed. The base directory is created if absent.
func NewLocalStorage(baseDir, baseURL string) (*LocalStorage, error) {
	if baseDir == "" {
		return nil, ErrInvalidConfig
	}

	absBaseDir, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToGetAbsolutePath, err)
	}

	if err := os.MkdirAll(absBaseDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateDirectory, err)
	}

	if baseURL != "" && !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	return &LocalStorage{
		baseDir: absBaseDir,
		baseURL: baseURL,
	}, nil
}

// Save streams r into a file under the base directory.
func (s *LocalStorage) Save(ctx context.Context, r io.Reader, path string) (*Object, error) {
	absPath, err := s.resolvePath(path)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateDirectory, err)
	}

	dst, err := os.OpenFile(absPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateFile, err)
	}
	defer func() { _ = dst.Close() }()

	// Copy in chunks so cancellation is honored mid-stream.
	written := int64(0)
	buf := make([]byte, 32*1024)
	for {
		select {
		case <-ctx.Done():
			_ = dst.Close()
			_ = os.Remove(absPath)
			return nil, ctx.Err()
		default:
		}

		n, readErr := r.Read(buf)
		if n > 0 {
			nw, writeErr := dst.Write(buf[:n])
			if writeErr != nil {
				_ = dst.Close()
				_ = os.Remove(absPath)
				return nil, fmt.Errorf("%w: %v", ErrFailedToWriteFile, writeErr)
			}
			written += int64(nw)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			_ = dst.Close()
			_ = os.Remove(absPath)
			return nil, fmt.Errorf("%w: %v", ErrFailedToReadFile, readErr)
		}
	}

	relPath, err := filepath.Rel(s.baseDir, absPath)
	if err != nil {
		relPath = path
	}

	return &Object{
		Path:         relPath,
		AbsolutePath: absPath,
		Size:         written,
		ContentType:  contentTypeFor(absPath),
	}, nil
}

// Delete removes a single file.
func (s *LocalStorage) Delete(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	absPath, err := s.resolvePath(path)
	if err != nil {
		return err
	}

	if _, err := os.Stat(absPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("%w: %v", ErrFailedToDeleteFile, err)
	}

	if err := os.Remove(absPath); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToDeleteFile, err)
	}

	return nil
}

// Exists checks whether a file exists under the base directory.
func (s *LocalStorage) Exists(ctx context.Context, path string) bool {
	select {
	case <-ctx.Done():
		return false
	default:
	}

	absPath, err := s.resolvePath(path)
	if err != nil {
		return false
	}

	_, err = os.Stat(absPath)
	return err == nil
}

// URL returns the public URL for a file.
func (s *LocalStorage) URL(path string) string {
	return s.baseURL + strings.TrimPrefix(filepath.ToSlash(path), "/")
}

// resolvePath validates a path and resolves it to an absolute path inside
// the base directory.
func (s *LocalStorage) resolvePath(path string) (string, error) {
	if strings.Contains(path, "\x00") {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}

	absPath := filepath.Join(s.baseDir, filepath.Clean("/"+path))
	if absPath != s.baseDir && !strings.HasPrefix(absPath, s.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}

	return absPath, nil
}
