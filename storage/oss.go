package storage

import (
	"fmt"
	"io"
	"strconv"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// OSSStorage Alibaba Cloud OSS storage
type OSSStorage struct {
	bucket *oss.Bucket
}

// NewOSSStorage create OSS storage instance
func NewOSSStorage(endpoint, accessKey, secretKey, bucketName string) (*OSSStorage, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" || bucketName == "" {
		return nil, ErrInvalid
	}

	// Create OSS client instance
	client, err := oss.New(endpoint, accessKey, secretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create oss client: %w", err)
	}

	// Get storage bucket
	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}

	return &OSSStorage{
		bucket: bucket,
	}, nil
}

// Save stream payload to OSS
func (s *OSSStorage) Save(key string, r io.Reader) (int64, error) {
	counted := &countingReader{r: r}
	if err := s.bucket.PutObject(key, counted); err != nil {
		return 0, fmt.Errorf("failed to upload to oss: %w", err)
	}
	return counted.n, nil
}

// Open open payload from OSS
func (s *OSSStorage) Open(key string) (io.ReadCloser, error) {
	body, err := s.bucket.GetObject(key)
	if err != nil {
		if ossErr, ok := err.(oss.ServiceError); ok && ossErr.StatusCode == 404 {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get from oss: %w", err)
	}
	return body, nil
}

// Delete delete file from OSS
func (s *OSSStorage) Delete(key string) error {
	if err := s.bucket.DeleteObject(key); err != nil {
		return fmt.Errorf("failed to delete from oss: %w", err)
	}
	return nil
}

// Exists check if file exists in OSS
func (s *OSSStorage) Exists(key string) bool {
	exists, err := s.bucket.IsObjectExist(key)
	if err != nil {
		return false
	}
	return exists
}

// Size stored payload size in OSS
func (s *OSSStorage) Size(key string) (int64, error) {
	meta, err := s.bucket.GetObjectMeta(key)
	if err != nil {
		return 0, ErrNotFound
	}
	size, err := strconv.ParseInt(meta.Get("Content-Length"), 10, 64)
	if err != nil {
		return 0, nil
	}
	return size, nil
}
