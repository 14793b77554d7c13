// Package storage defines the blob-storage collaborator of the file
// namespace: a flat keyed store of byte objects. Keys use forward slashes
// ("owner/name"); the namespace layer is responsible for deriving and
// validating them.
package storage

import (
	"context"
	"io"
)

// Object describes one stored blob.
type Object struct {
	Key  string
	Size int64
}

// BlobStore stores and enumerates byte objects. Implementations must honor
// context cancellation so callers can bound operations with a timeout.
type BlobStore interface {
	// Put writes the object at key, overwriting any existing content, and
	// returns the number of bytes written.
	Put(ctx context.Context, key string, r io.Reader) (int64, error)

	// List returns all objects whose key starts with prefix, sorted by key.
	List(ctx context.Context, prefix string) ([]Object, error)
}
