// Package storage defines the interface for object storage operations.
// Swap implementations by changing the concrete type injected at startup —
// the MinIO implementation works with any S3-compatible provider (MinIO, Wasabi, AWS S3).
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Get when no object exists under the requested key.
// Transport and auth failures are reported as distinct, wrapped errors.
var ErrNotFound = errors.New("object not found")

// Object is a stored blob handed back to the caller. Body must be closed.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// Storage is the interface for uploading and retrieving objects.
type Storage interface {
	// Upload streams data to the store under the given key, tagging it with
	// the supplied audit metadata. A failed write is reported as an error;
	// callers must never treat an Upload as durable unless it returns nil.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string, metadata map[string]string) error
	// Get retrieves the object stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (*Object, error)
	// Healthy reports whether the backing bucket is reachable. Used by readiness checks.
	Healthy(ctx context.Context) error
	// PublicURL constructs the browser-accessible URL for a given key.
	PublicURL(key string) string
}
