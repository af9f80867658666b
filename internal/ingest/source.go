// Package ingest loads CSV datasets into the connected database: one table
// per file, with column types inferred from the data and key relationships
// inferred from column naming.
package ingest

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/koustreak/querytalk/internal/errs"
	"github.com/koustreak/querytalk/internal/filestore"
)

// Source yields named CSV datasets. The name doubles as the target table
// name, so implementations must strip file extensions and path prefixes.
type Source interface {
	// List returns the available dataset names in a stable order.
	List(ctx context.Context) ([]string, error)

	// Open returns a reader over the named dataset's CSV content.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// DirSource reads datasets from a local directory of .csv files.
type DirSource struct {
	Dir string
}

func (s DirSource) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindNotFound, "failed to read dataset directory", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		names = append(names, tableName(e.Name()))
	}
	sort.Strings(names)
	return names, nil
}

func (s DirSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.Dir, name+".csv"))
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindNotFound, "failed to open dataset", err)
	}
	return f, nil
}

// ObjectSource reads datasets from object storage.
type ObjectSource struct {
	Store  filestore.Store
	Bucket string
	Prefix string
}

func (s ObjectSource) List(ctx context.Context) ([]string, error) {
	files, err := s.Store.ListDataFiles(ctx, s.Bucket, s.Prefix)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, tableName(f.Key))
	}
	sort.Strings(names)
	return names, nil
}

func (s ObjectSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key := name + ".csv"
	if s.Prefix != "" {
		key = strings.TrimSuffix(s.Prefix, "/") + "/" + key
	}
	return s.Store.Open(ctx, s.Bucket, key)
}

// tableName derives a table name from a file key: path and extension are
// dropped and the rest lower-cased.
func tableName(key string) string {
	base := filepath.Base(key)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ToLower(base)
}
