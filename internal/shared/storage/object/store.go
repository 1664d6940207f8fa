package object

import (
	"context"
	"io"
	"time"
)

// ObjectStore defines the contract for saving and retrieving uploaded files.
type ObjectStore interface {
	// Save stores r under namespace (typically a workspace ID) and returns its key.
	Save(ctx context.Context, namespace string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	// SignedURL returns a time-limited URL from which the object can be downloaded.
	SignedURL(ctx context.Context, storageKey string, ttl time.Duration) (string, error)
	Provider() string
}
