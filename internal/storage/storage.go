// Package storage persists uploaded attachment files on disk.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store writes uploads into a single directory. Stored names are
// uuid-derived so client-supplied filenames never touch the filesystem.
type Store struct {
	dir     string
	maxSize int64
}

// New creates the upload directory if needed and returns a Store.
func New(dir string, maxSize int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Store{dir: dir, maxSize: maxSize}, nil
}

// SavedFile describes a persisted upload.
type SavedFile struct {
	Filename string // original client filename
	Path     string // path on disk
	Size     int64
	MimeType string
}

// ErrTooLarge is returned when an upload exceeds the configured limit.
var ErrTooLarge = fmt.Errorf("file exceeds maximum upload size")

// Save persists the uploaded file and returns its stored metadata.
func (s *Store) Save(header *multipart.FileHeader) (*SavedFile, error) {
	if s.maxSize > 0 && header.Size > s.maxSize {
		return nil, ErrTooLarge
	}

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	name := uuid.NewString() + filepath.Ext(header.Filename)
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	size, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &SavedFile{
		Filename: filepath.Base(header.Filename),
		Path:     path,
		Size:     size,
		MimeType: header.Header.Get("Content-Type"),
	}, nil
}
