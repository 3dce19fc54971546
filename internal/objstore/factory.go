package objstore

import (
	"context"
	"fmt"

	"appdird/internal/config"
	"appdird/internal/directory"
)

// NewStoreFromConfig creates an ObjectStore implementation based on the
// store config type. A nil store (type "none") disables remote
// persistence entirely.
func NewStoreFromConfig(ctx context.Context, cfg config.StoreConfig) (directory.ObjectStore, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "memory":
		return NewMemoryStore(), nil
	case "s3":
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("s3 store requires bucket to be set")
		}
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}
