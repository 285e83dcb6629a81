package storage

import (
	"context"
	"fmt"
	"strings"
)

// Create creates a FileStorage instance based on the provided configuration
func Create(ctx context.Context, cfg *Config) (FileStorage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("storage config is required")
	}

	switch strings.ToLower(cfg.Type) {
	case "local", "":
		basePath := cfg.BasePath
		if basePath == "" {
			basePath = "./data/files"
		}
		return NewLocalFileStorage(basePath, cfg.PublicURL)
	case "s3":
		return NewS3FileStorage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
