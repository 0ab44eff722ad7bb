package main

import (
	"context"
	"fmt"
	"os"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campuseats/dining-reviews/api/internal/config"
	"github.com/campuseats/dining-reviews/api/internal/logging"
	"github.com/campuseats/dining-reviews/api/internal/observability/metrics"
	"github.com/campuseats/dining-reviews/api/internal/server"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.MongoURI).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		logger.Fatalw("failed to connect to MongoDB", "error", err)
	}

	m, err := metrics.New()
	if err != nil {
		logger.Fatalw("failed to register metrics", "error", err)
	}

	logger.Infow("configuration loaded",
		"env", cfg.Env,
		"database", cfg.MongoDatabase,
		"uploadsEnabled", cfg.CloudinaryURL != "",
		"bufferCapacity", cfg.Ingest.Capacity,
		"batchSize", cfg.Ingest.BatchSize,
	)

	app := server.New(cfg, client, logger, m)
	if err := app.Run(context.Background()); err != nil {
		logger.Fatalw("server stopped with error", "error", err)
	}
}
