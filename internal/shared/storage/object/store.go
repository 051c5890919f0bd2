package object

import (
	"context"
	"errors"
	"io"
)

// ErrInvalidKey is returned for keys that are empty or escape the store root.
var ErrInvalidKey = errors.New("invalid storage key")

// Object is an opened stored object. ContentType may be empty when the backend
// does not record one.
type Object struct {
	Body        io.ReadCloser
	ContentType string
}

// Opener reads stored objects by key.
type Opener interface {
	Open(ctx context.Context, storageKey string) (Object, error)
}
