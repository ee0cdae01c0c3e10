package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/harbourstay/harbourstay/backend/cms-api/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOUploader stores uploads as objects in a MinIO/S3 bucket.
type MinIOUploader struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinIOUploader creates the client and ensures the bucket exists.
func NewMinIOUploader(cfg config.MinIOConfig) (*MinIOUploader, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	u := &MinIOUploader{client: mc, bucket: cfg.Bucket, baseURL: strings.TrimRight(cfg.PublicBaseURL, "/")}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, u.bucket, minio.MakeBucketOptions{}); err != nil {
		// ignore "already exists" style errors
		exist, xerr := mc.BucketExists(ctx, u.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return u, nil
}

// Put uploads r under a generated key and returns its public path.
func (u *MinIOUploader) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	key := "uploads/" + ObjectName(name)
	if _, err := u.client.PutObject(ctx, u.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return "", fmt.Errorf("minio put %s: %w", key, err)
	}
	return u.publicPath(key), nil
}

func (u *MinIOUploader) publicPath(key string) string {
	if u.baseURL != "" {
		return u.baseURL + "/" + key
	}
	return "/" + u.bucket + "/" + key
}
