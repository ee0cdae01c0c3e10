package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harbourstay/harbourstay/backend/cms-api/internal/config"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	cases := map[string]string{
		"photo.JPG":                 ".jpg",
		"../../etc/passwd":          "",
		`C:\Users\me\room.png`:      ".png",
		"weird.p<n>g":               ".png",
		"noext":                     "",
		"archive.verylongextension": "",
	}
	for in, ext := range cases {
		got := ObjectName(in)
		require.True(t, strings.HasSuffix(got, ext), "ObjectName(%q) = %q", in, got)
		require.NotContains(t, got, "/")
		require.Len(t, got, 36+len(ext), "ObjectName(%q) = %q", in, got)
	}
	require.NotEqual(t, ObjectName("a.png"), ObjectName("a.png"))
}

func TestLocalUploader_Put(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	u := NewLocalUploader(dir, "")

	p, err := u.Put(context.Background(), "hero.webp", strings.NewReader("image-bytes"), 11, "image/webp")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(p, "/uploads/"))
	require.True(t, strings.HasSuffix(p, ".webp"))

	b, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(p, "/uploads/")))
	require.NoError(t, err)
	require.Equal(t, "image-bytes", string(b))
}

func TestMinIOUploader_PublicPath(t *testing.T) {
	u := &MinIOUploader{bucket: "cms-uploads"}
	require.Equal(t, "/cms-uploads/uploads/a.png", u.publicPath("uploads/a.png"))

	u.baseURL = "https://cdn.example.com"
	require.Equal(t, "https://cdn.example.com/uploads/a.png", u.publicPath("uploads/a.png"))
}

func TestNewMinIOUploader_RequiresEndpoint(t *testing.T) {
	_, err := NewMinIOUploader(config.MinIOConfig{})
	require.Error(t, err)
}
