package domain

import (
	"context"
	"errors"
)

// Blob store errors.
var (
	ErrBlobTooLarge   = errors.New("file exceeds maximum size")
	ErrBlobNotAnImage = errors.New("only images are allowed")
)

// MaxBlobSize is the upload size ceiling (5 MB).
const MaxBlobSize = 5 << 20

// BlobStore persists uploaded binary content and returns a public URL.
// Implementations reject non-image content and payloads over MaxBlobSize.
type BlobStore interface {
	Store(ctx context.Context, filename string, data []byte) (url string, err error)
}
