// Package objectstore stores evidence blobs by path. Implementations are
// an S3 compatible bucket, the local filesystem and an in-memory map.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPath is returned for keys that could escape the bucket root.
var ErrInvalidPath = errors.New("objectstore: invalid path")

// Store is the object store collaborator used by the upload saga.
type Store interface {
	Put(ctx context.Context, path string, data []byte, contentType string) error
	Delete(ctx context.Context, path string) error
}

// New builds the store selected by cfg.Driver.
func New(cfg *Config) (Store, error) {
	switch cfg.Driver {
	case DriverS3:
		return NewS3Store(cfg)
	case DriverLocal:
		return NewLocalStore(cfg.LocalRoot)
	case DriverMemory:
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("objectstore: unknown driver %q", cfg.Driver)
}

func checkPath(path string) error {
	if path == "" || strings.HasPrefix(path, "/") || strings.Contains(path, "..") || strings.Contains(path, "//") {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	return nil
}
