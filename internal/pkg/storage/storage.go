// Package storage keeps small binary artifacts (QR code images) in object
// storage. Each adapter is bound to one bucket.
package storage

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrObjectNotFound is returned by Get when the key does not exist.
	ErrObjectNotFound = errors.New("storage: object not found")
	// ErrBucketRequired is returned when an adapter is built without a bucket.
	ErrBucketRequired = errors.New("storage: bucket is required")
	// ErrInvalidKey is returned for empty keys or keys escaping the root.
	ErrInvalidKey = errors.New("storage: invalid object key")
)

// Storage defines the object operations used by the service.
type Storage interface {
	io.Closer

	// Put stores data under key, replacing any previous object.
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Get returns the object bytes or ErrObjectNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
