// Package main is the entry point for h3routeserv: a gRPC service that
// answers many-to-many shortest-path, differential, and within-threshold
// routing queries over graphs built on the H3 hexagonal hierarchical
// spatial index (spec.md §1-2).
//
// # Configuration
//
// Configuration is loaded with the following priority (highest to lowest):
//  1. Environment variables (prefix: H3ROUTE_)
//  2. Config files (config.yaml, config/config.yaml, /etc/h3routeserv/config.yaml)
//  3. Default values (pkg/config/loader.go)
//
// # Architecture
//
//	gRPC transport (pkg/server, pkg/interceptors)
//	  -> internal/rpc (request validation, cache orchestration, dispatch)
//	    -> internal/routing/{shortestpath,differential,threshold}
//	    -> internal/graph, internal/graph/snap, internal/dataset
//	    -> internal/encode/{arrowbatch,routeencode}
//	  -> internal/objectstore (graph snapshots, dataset partitions, persisted results)
package main

import (
	"context"
	"log"
	"time"

	h3routingv1 "h3routeserv/gen/go/h3routing/v1"
	"h3routeserv/internal/objectstore"
	"h3routeserv/internal/rpc"
	"h3routeserv/pkg/cache"
	"h3routeserv/pkg/config"
	"h3routeserv/pkg/logger"
	"h3routeserv/pkg/metrics"
	"h3routeserv/pkg/server"
)

// buildCommit is overridden at build time via -ldflags.
var buildCommit = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	ctx := context.Background()

	metrics.InitMetrics(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)

	store, err := objectstore.New(ctx, cfg.ObjectStore)
	if err != nil {
		logger.Fatal("failed to initialize object store", "error", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Log.Warn("failed to close object store", "error", err)
		}
	}()

	// blobCache sits in front of the object store for raw dataset partition
	// bytes, shared across replicas when backed by Redis so a partition
	// fetched by one instance warms its peers.
	var blobCache cache.Cache
	if cfg.DatasetCache.Enabled {
		blobCache, err = cache.New(cache.FromConfig(&cfg.DatasetCache))
		if err != nil {
			logger.Log.Warn("failed to create dataset cache, continuing without it", "error", err)
			blobCache = nil
		} else {
			defer func() {
				if err := blobCache.Close(); err != nil {
					logger.Log.Warn("failed to close dataset cache", "error", err)
				}
			}()
		}
	}

	rpcServer := rpc.New(cfg, store, blobCache, buildCommit)

	srv := server.New(cfg)
	h3routingv1.RegisterH3RoutingServiceServer(srv.GetEngine(), rpcServer)

	logger.Info("starting h3routeserv",
		"bind_to", cfg.BindTo,
		"environment", cfg.App.Environment,
		"version", cfg.App.Version,
		"build_commit", buildCommit,
		"dataset_cache_enabled", blobCache != nil,
	)

	startedAt := time.Now()
	if err := srv.Run(); err != nil {
		logger.Fatal("server failed", "error", err, "uptime", time.Since(startedAt))
	}
}
