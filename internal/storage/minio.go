package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hacks11/inventory-health/backend-go/internal/config"
)

type minioStorage struct {
	client *minio.Client
	bucket string
}

// NewMinioStorage connects to the configured S3-compatible endpoint. The
// bucket must already exist; the service never creates it.
func NewMinioStorage(cfg config.StorageConfig) (ObjectStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect object storage: %w", err)
	}

	return &minioStorage{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

func (s *minioStorage) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var infos []ObjectInfo

	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects under %q: %w", prefix, obj.Err)
		}
		infos = append(infos, ObjectInfo{
			Key:  obj.Key,
			Size: obj.Size,
		})
	}

	return infos, nil
}

func (s *minioStorage) DownloadObject(ctx context.Context, key string, destPath string) error {
	if err := s.client.FGetObject(ctx, s.bucket, key, destPath, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("download object %q: %w", key, err)
	}
	return nil
}

func (s *minioStorage) UploadObject(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("upload object %q: %w", key, err)
	}
	return nil
}
