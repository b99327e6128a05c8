package storage

import (
	"context"
	"time"
)

// FileStorage keeps generated documents. Keys are object names inside the bucket.
type FileStorage interface {
	UploadFile(ctx context.Context, data []byte, objectName, contentType string) (string, error)

	GetPresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}
