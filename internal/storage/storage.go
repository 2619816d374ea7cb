// Package storage provides the blob store backing templates and committed
// documents. Callers hold only opaque blob IDs; the bytes live in an
// S3-compatible object store.
package storage

import "context"

// Blob is a stored payload with its content type
type Blob struct {
	Data        []byte
	ContentType string
}

// BlobStore is the contract the services depend on. Put returns an opaque
// blob ID; Get retrieves the payload for one. A missing blob surfaces as
// models.ErrBlobNotFound.
type BlobStore interface {
	Put(ctx context.Context, data []byte, contentType string) (string, error)
	Get(ctx context.Context, blobID string) (*Blob, error)
}
