package local

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"poster-backend/internal/shared/storage/object"
)

// Store reads objects from a directory on the local filesystem.
type Store struct {
	baseDir string
}

// New creates a new local object store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Open opens a stored object for reading. Keys are relative to the base directory.
func (s *Store) Open(ctx context.Context, storageKey string) (object.Object, error) {
	if err := ctx.Err(); err != nil {
		return object.Object{}, err
	}

	clean := filepath.Clean(strings.TrimPrefix(storageKey, "/"))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return object.Object{}, object.ErrInvalidKey
	}

	fullPath := filepath.Join(s.baseDir, clean)
	f, err := os.Open(fullPath)
	if err != nil {
		return object.Object{}, fmt.Errorf("open file: %w", err)
	}
	return object.Object{
		Body:        f,
		ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(clean))),
	}, nil
}

var _ object.Opener = (*Store)(nil)
