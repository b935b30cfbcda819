// Command migrate provisions the backing infrastructure: it applies the
// records schema to PostgreSQL and ensures the receipt bucket exists.
package main

import (
	"context"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"farmledger/internal/config"
	"farmledger/internal/database"
	"farmledger/internal/database/migration"
	"farmledger/internal/otel"
	"farmledger/internal/storage"
	"farmledger/pkg/logger"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	log := logger.Must(logger.New())
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	shutdown, err := otel.Init(ctx, log)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer shutdown(context.Background())

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	// NewMinIO creates the bucket when it is missing.
	if _, err := storage.NewMinIO(cfg.MinIO); err != nil {
		log.Fatal("failed to provision object storage", zap.Error(err))
	}

	log.Info("infrastructure ready",
		zap.String("db_host", cfg.Database.Host),
		zap.String("bucket", cfg.MinIO.Bucket))
}
