package storage

import (
	"context"
	"time"
)

// FileMetadata represents metadata about a stored file
type FileMetadata struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type"`
	LastModified time.Time `json:"last_modified"`
}

// StoreOptions provides options for storing files
type StoreOptions struct {
	ContentType string `json:"content_type,omitempty"`
}

// FileStorage provides an abstraction for product image operations.
// Implementations exist for the local filesystem and S3.
type FileStorage interface {
	// Store saves a file under the given key
	Store(ctx context.Context, key string, data []byte, opts *StoreOptions) error

	// Retrieve gets a file by its storage key
	Retrieve(ctx context.Context, key string) ([]byte, error)

	// Delete removes a file by its storage key
	Delete(ctx context.Context, key string) error

	// Exists checks if a file exists at the given key
	Exists(ctx context.Context, key string) (bool, error)

	// List returns the keys under a prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// URL returns the public URL for a stored key
	URL(key string) string

	// Close cleans up any resources used by the storage implementation
	Close() error
}

// Config represents configuration for storage providers
type Config struct {
	Type      string // "local" or "s3"
	BasePath  string // for local storage
	Bucket    string // for S3
	Region    string // for S3
	PublicURL string // base URL for public links
}
