// Package storage keeps files uploaded from the CMS (room photos, hero
// images) and hands back the path the site should reference.
package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Uploader stores one file and returns its public path.
type Uploader interface {
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
}

// ObjectName derives a collision-free object name from the client's file
// name, keeping only a sanitized extension.
func ObjectName(filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, "\\", "/"))))
	clean := strings.Builder{}
	for _, r := range ext {
		if r == '.' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			clean.WriteRune(r)
		}
	}
	ext = clean.String()
	if len(ext) > 10 || ext == "." {
		ext = ""
	}
	return uuid.NewString() + ext
}
