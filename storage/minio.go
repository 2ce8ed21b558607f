package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOStorage MinIO object storage via the native client
type MinIOStorage struct {
	client *minio.Client
	bucket string
}

// NewMinIOStorage create MinIO storage instance
func NewMinIOStorage(endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*MinIOStorage, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" || bucketName == "" {
		return nil, ErrInvalid
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  miniocreds.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinIOStorage{
		client: client,
		bucket: bucketName,
	}, nil
}

// Save stream payload to MinIO
func (s *MinIOStorage) Save(key string, r io.Reader) (int64, error) {
	info, err := s.client.PutObject(context.Background(), s.bucket, key, r, -1,
		minio.PutObjectOptions{})
	if err != nil {
		return 0, fmt.Errorf("failed to upload to minio: %w", err)
	}
	return info.Size, nil
}

// Open open payload from MinIO
func (s *MinIOStorage) Open(key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(context.Background(), s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get from minio: %w", err)
	}
	// GetObject is lazy; surface missing keys now.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to stat minio object: %w", err)
	}
	return obj, nil
}

// Delete delete file from MinIO
func (s *MinIOStorage) Delete(key string) error {
	err := s.client.RemoveObject(context.Background(), s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete from minio: %w", err)
	}
	return nil
}

// Exists check if file exists in MinIO
func (s *MinIOStorage) Exists(key string) bool {
	_, err := s.client.StatObject(context.Background(), s.bucket, key, minio.StatObjectOptions{})
	return err == nil
}

// Size stored payload size in MinIO
func (s *MinIOStorage) Size(key string) (int64, error) {
	info, err := s.client.StatObject(context.Background(), s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return 0, ErrNotFound
	}
	return info.Size, nil
}
