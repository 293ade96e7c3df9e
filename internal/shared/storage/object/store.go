package object

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a storage key does not exist.
var ErrNotFound = errors.New("object not found")

// Object describes a stored upload.
type Object struct {
	Key       string
	SizeBytes int64
	Checksum  string
}

// ObjectStore defines the contract for saving, reading and removing uploaded files.
type ObjectStore interface {
	Save(ctx context.Context, fileName string, r io.Reader) (Object, error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
}
