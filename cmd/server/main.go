// Package main is the entry point for the catalog-api service.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nucleus/catalog-api/internal/blob"
	"github.com/nucleus/catalog-api/internal/catalog"
	"github.com/nucleus/catalog-api/internal/config"
	"github.com/nucleus/catalog-api/internal/connector"
	"github.com/nucleus/catalog-api/internal/connector/httpclient"
	"github.com/nucleus/catalog-api/internal/export"
	"github.com/nucleus/catalog-api/internal/httpapi"
	"github.com/nucleus/catalog-api/internal/source"
	"github.com/nucleus/catalog-api/internal/store"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	db, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(cfg.MigrationsPath); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Object storage: MinIO/S3 when configured, local disk otherwise.
	objectStore, err := newObjectStore(cfg)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	// Wire the transformation pipeline.
	contentStore := source.NewBlobContentStore(objectStore, cfg.BlobBucket)
	apiClient := httpclient.NewClient(&httpclient.Config{
		RateLimit: cfg.APIRateLimit,
		RateBurst: cfg.APIRateBurst,
	})
	generic := connector.NewTransformer(contentStore, apiClient)
	transformer := catalog.NewTransformer(contentStore, generic)
	catalogs := catalog.NewService(db, transformer)
	exporter := export.NewExporter(objectStore, cfg.BlobBucket, "exports")

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: httpapi.New(db, catalogs, exporter, httpapi.Options{
			ExposeErrorDetails: !cfg.IsProduction(),
		}).Routes(),
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("shutting down...")
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			log.Printf("error shutting down server: %v", err)
		}
	}()

	log.Printf("Catalog API listening on :%s", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// newObjectStore selects the object-store backend from config.
func newObjectStore(cfg *config.Config) (blob.ObjectStore, error) {
	if cfg.BlobEndpointURL != "" {
		return blob.NewS3Client(&blob.S3Config{
			EndpointURL:     cfg.BlobEndpointURL,
			AccessKeyID:     cfg.BlobAccessKeyID,
			SecretAccessKey: cfg.BlobSecretAccessKey,
			Region:          cfg.BlobRegion,
		})
	}
	return blob.NewLocalStore(cfg.BlobLocalRoot), nil
}
