// Package blobstore stores uploaded files (publisher logos, newsletter
// PDFs, advertisement images) in a MinIO-compatible object store. The
// application persists only the resulting URL and metadata; raw bytes
// pass through memory during the upload only.
package blobstore

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/saabal/saabal-api/internal/config"
)

// Store uploads and removes URL-addressed blobs.
type Store interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	DeleteByURL(ctx context.Context, url string) error
}

// MinioStore implements Store on MinIO/S3 compatible storage.
type MinioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// New connects to the object store and ensures the bucket exists.
func New(cfg config.ObjectStore) (*MinioStore, error) {
	const op = "blobstore.New"
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: check bucket: %w", op, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("%s: create bucket: %w", op, err)
		}
	}
	return &MinioStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
	}, nil
}

// Upload stores the object under key and returns its public URL.
func (m *MinioStore) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	const op = "blobstore.Upload"
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return m.publicURL + "/" + m.bucket + "/" + key, nil
}

// DeleteByURL removes the object a previously returned URL points at.
// URLs from other origins are ignored.
func (m *MinioStore) DeleteByURL(ctx context.Context, url string) error {
	const op = "blobstore.DeleteByURL"
	prefix := m.publicURL + "/" + m.bucket + "/"
	if !strings.HasPrefix(url, prefix) {
		return nil
	}
	key := strings.TrimPrefix(url, prefix)
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
