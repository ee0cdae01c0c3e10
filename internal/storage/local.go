package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalUploader writes files into a directory served by the API under URLPrefix.
type LocalUploader struct {
	Dir       string
	URLPrefix string
}

func NewLocalUploader(dir, urlPrefix string) *LocalUploader {
	if urlPrefix == "" {
		urlPrefix = "/uploads"
	}
	return &LocalUploader{Dir: dir, URLPrefix: urlPrefix}
}

// Put copies r into a new file and returns "<URLPrefix>/<name>". Partial
// files are removed on failure.
func (u *LocalUploader) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	if err := os.MkdirAll(u.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating upload directory: %w", err)
	}
	obj := ObjectName(name)
	dst := filepath.Join(u.Dir, obj)
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("writing upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("closing upload file: %w", err)
	}
	return u.URLPrefix + "/" + obj, nil
}
