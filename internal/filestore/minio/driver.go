// Package minio provides a MinIO implementation of filestore.Store.
package minio

import (
	"context"
	"io"
	"strings"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/koustreak/querytalk/internal/errs"
	"github.com/koustreak/querytalk/internal/filestore"
)

// Driver is a MinIO implementation of filestore.Store. It is safe for
// concurrent use by multiple goroutines.
type Driver struct {
	client *miniogo.Client
}

// New connects to MinIO using the provided Config and returns a Driver.
// It calls Ping to validate the connection before returning.
func New(ctx context.Context, cfg *filestore.Config) (*Driver, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "failed to create minio client", err)
	}

	d := &Driver{client: client}
	if err := d.Ping(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// Ping verifies the MinIO server is reachable by listing buckets.
func (d *Driver) Ping(ctx context.Context) error {
	if _, err := d.client.ListBuckets(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

// Close is a no-op for MinIO, the SDK client holds no persistent connections.
func (d *Driver) Close() error {
	return nil
}

// ListDataFiles returns the CSV objects under prefix, skipping virtual
// directory entries and non-CSV keys.
func (d *Driver) ListDataFiles(ctx context.Context, bucket, prefix string) ([]filestore.FileInfo, error) {
	opts := miniogo.ListObjectsOptions{Prefix: prefix, Recursive: true}

	var files []filestore.FileInfo
	for obj := range d.client.ListObjects(ctx, bucket, opts) {
		if obj.Err != nil {
			return nil, mapError(obj.Err, "failed to list data files")
		}
		if strings.HasSuffix(obj.Key, "/") || !strings.HasSuffix(strings.ToLower(obj.Key), ".csv") {
			continue
		}
		files = append(files, filestore.FileInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	return files, nil
}

// Open returns a streaming handle to the object at key inside bucket.
func (d *Driver) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	obj, err := d.client.GetObject(ctx, bucket, key, miniogo.GetObjectOptions{})
	if err != nil {
		return nil, mapError(err, "failed to open data file")
	}

	// GetObject is lazy; Stat forces the first request so missing keys fail
	// here instead of on the first Read.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, mapError(err, "failed to open data file")
	}
	return obj, nil
}
