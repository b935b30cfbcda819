// Package storage contains the object storage client for receipt
// attachments and the canonicalization rules for attachment references.
// Implementations must avoid using local disk and rely on streaming I/O only.
package storage

import (
	"context"
	"io"
	"time"
)

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and the implementation
// will buffer/chunk as supported by the backend.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a reusable, S3-compatible object storage client interface.
type Storage interface {
	// Put uploads an object under the given key with overwrite semantics.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Delete removes an object by key. Deleting an absent object is not
	// an error.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited, read-only URL for the object.
	// The URL is never persisted; callers regenerate it on every read.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
