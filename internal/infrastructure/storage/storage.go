// Package storage abstracts the object store that holds release files.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned when no object exists under the key.
var ErrObjectNotFound = errors.New("object not found")

// Object is a fetched release file. The reader streams straight from the
// backing store; callers must close it, and cancelling the request context
// aborts the underlying read.
type Object struct {
	Reader io.ReadCloser
	Size   int64
}

// ObjectStorage fetches release file bytes by (bucket, key).
type ObjectStorage interface {
	Get(ctx context.Context, bucket, key string) (*Object, error)
}
