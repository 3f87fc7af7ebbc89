package service

import "context"

// BlobStore is the only I/O boundary to attachment storage. Every Put writes a new
// object under key and returns its retrieval URL.
type BlobStore interface {
	Put(ctx context.Context, data []byte, key string, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}
