package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStorage keeps uploaded assignment files on disk under a base directory.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage creates the upload directory if needed.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory failed: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// Path is where a stored name lives on disk.
func (s *LocalStorage) Path(name string) string {
	return filepath.Join(s.baseDir, filepath.Base(name))
}

// SaveStream copies r into name and returns the on-disk path and bytes written.
// Writes past limit bytes are rejected and the partial file is removed.
func (s *LocalStorage) SaveStream(name string, r io.Reader, limit int64) (string, int64, error) {
	path := s.Path(name)
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("create upload file failed: %w", err)
	}

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	written, copyErr := io.Copy(file, src)
	closeErr := file.Close()
	if copyErr == nil && limit > 0 && written > limit {
		copyErr = ErrTooLarge
	}
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		_ = os.Remove(path)
		if copyErr == ErrTooLarge {
			return "", written, ErrTooLarge
		}
		return "", written, fmt.Errorf("write upload file failed: %w", copyErr)
	}
	return path, written, nil
}

// Delete removes a stored file if present.
func (s *LocalStorage) Delete(name string) error {
	if err := os.Remove(s.Path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload file failed: %w", err)
	}
	return nil
}
