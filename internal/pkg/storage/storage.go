package storage

import (
	"context"
	"io"
)

// Storage defines the minimal interface for file storage backends.
// Intentionally simple: put a file, delete a file, get its URL.
type Storage interface {
	// Put stores a file at the given key and returns an error on failure.
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Delete removes a file by its key. Returns nil if file doesn't exist.
	Delete(ctx context.Context, key string) error

	// GetURL returns the public URL for a file given its key.
	GetURL(key string) string
}

// Config holds S3-compatible storage configuration
type Config struct {
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	PublicURL   string
}
