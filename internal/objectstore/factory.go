package objectstore

import (
	"context"
	"fmt"

	"h3routeserv/pkg/config"
)

// New builds the Store configured by cfg.Type ("fs" or "s3").
func New(ctx context.Context, cfg config.ObjectStoreConfig) (Store, error) {
	switch cfg.Type {
	case "s3":
		return NewS3Store(ctx, cfg)
	case "fs", "":
		return NewFSStore(cfg.Root)
	default:
		return nil, fmt.Errorf("objectstore: unknown type %q", cfg.Type)
	}
}
