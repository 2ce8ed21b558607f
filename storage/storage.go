// Package storage persists file payloads behind a backend-agnostic interface.
package storage

import (
	"errors"
	"io"

	"tele-drive/conf"
)

// Storage unified payload storage interface. Payloads stream in and out as a
// whole; keys are opaque relative paths.
type Storage interface {
	// Save streams r into the object at key, returning the byte count.
	Save(key string, r io.Reader) (int64, error)

	// Open returns a reader over the object at key. The caller closes it.
	Open(key string) (io.ReadCloser, error)

	Delete(key string) error
	Exists(key string) bool

	// Size returns the stored object size, or ErrNotFound.
	Size(key string) (int64, error)
}

var (
	ErrNotFound = errors.New("file not found")
	ErrInvalid  = errors.New("invalid storage configuration")
)

// NewStorage create storage instance by configuration
func NewStorage() (Storage, error) {
	storageType := conf.Cfg.Storage.Type

	switch storageType {
	case "local":
		return NewLocalStorage(conf.Cfg.Storage.Local.BasePath)
	case "oss":
		return NewOSSStorage(conf.Cfg.Storage.OSS.Endpoint, conf.Cfg.Storage.OSS.AccessKey,
			conf.Cfg.Storage.OSS.SecretKey, conf.Cfg.Storage.OSS.Bucket)
	case "s3":
		return NewS3Storage(conf.Cfg.Storage.S3.Region, conf.Cfg.Storage.S3.Endpoint,
			conf.Cfg.Storage.S3.AccessKey, conf.Cfg.Storage.S3.SecretKey, conf.Cfg.Storage.S3.Bucket)
	case "minio":
		return NewMinIOStorage(conf.Cfg.Storage.MinIO.Endpoint, conf.Cfg.Storage.MinIO.AccessKey,
			conf.Cfg.Storage.MinIO.SecretKey, conf.Cfg.Storage.MinIO.Bucket, conf.Cfg.Storage.MinIO.UseSSL)
	default:
		// Default to local storage
		return NewLocalStorage(conf.Cfg.Storage.Local.BasePath)
	}
}
