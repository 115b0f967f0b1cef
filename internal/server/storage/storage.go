// Package storage provides blob storage for capsule image attachments.
package storage

import (
	"context"
	"io"
)

// BlobStore stores attachment bytes and returns a stable retrieval URL.
type BlobStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}
