package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/harbourstay/harbourstay/backend/cms-api/internal/content"
)

// FileRepo keeps the document in a single JSON file.
//
// Save writes a temp file in the same directory, fsyncs it and renames it
// over the target, so readers observe either the old or the new document.
// Writers within the process are serialized; across processes the last
// rename wins.
type FileRepo struct {
	mu   sync.Mutex
	path string
}

func NewFileRepo(path string) *FileRepo {
	return &FileRepo{path: path}
}

func (r *FileRepo) Name() string { return "file" }


func (r *FileRepo) Load(ctx context.Context) ([]byte, error) {
	b, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, content.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *FileRepo) Save(ctx context.Context, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating content directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".content-*.json")
	if err != nil {
		return fmt.Errorf("creating temp content file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("writing temp content file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("syncing temp content file: %w", err)
	}
	if err := tmpFile.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod temp content file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp content file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, r.path); err != nil {
		return fmt.Errorf("renaming content file to %s: %w", r.path, err)
	}

	success = true
	return nil
}
