// Package filestore abstracts the object storage that holds CSV datasets
// awaiting ingestion. Callers depend only on this package, never on a
// specific provider package.
package filestore

import (
	"context"
	"io"
	"time"
)

// Store is the interface every dataset storage provider implements.
// It is scoped to reading: datasets are uploaded out of band.
type Store interface {
	// Ping verifies the storage backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any held resources.
	Close() error

	// ListDataFiles returns the CSV files under prefix in bucket. Keys that
	// do not look like CSV data are filtered out.
	ListDataFiles(ctx context.Context, bucket, prefix string) ([]FileInfo, error)

	// Open returns a streaming handle to the file at key inside bucket.
	// The caller must close it after reading.
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// FileInfo describes one stored dataset file.
type FileInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Config holds the settings needed to connect to a storage backend.
type Config struct {
	// Endpoint is the host:port of the storage server.
	Endpoint string

	// AccessKey is the access key ID (MinIO / S3 style).
	AccessKey string

	// SecretKey is the secret access key.
	SecretKey string

	// UseSSL controls whether TLS is used for the connection.
	UseSSL bool

	// Region is used by region-aware backends. Leave empty for MinIO.
	Region string

	// Bucket is the bucket holding the dataset files.
	Bucket string
}

// DefaultConfig returns a local-dev config for MinIO.
func DefaultConfig(endpoint, accessKey, secretKey string) *Config {
	return &Config{
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
		UseSSL:    false,
	}
}
