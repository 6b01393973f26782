package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	adoptionpostgres "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/persistence/postgres"
	platformpostgres "github.com/Apurer/pet-adoption-api/internal/platform/postgres"
)

const defaultRetention = 24 * time.Hour

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot purge idempotency keys")
	}

	store := adoptionpostgres.NewIdempotencyStore(db)
	removed, err := store.PurgeExpired(ctx, time.Now().UTC().Add(-retentionFromEnv()))
	if err != nil {
		log.Fatalf("failed to purge idempotency keys: %v", err)
	}
	logger.Info("idempotency key purge completed", slog.Int64("removed", removed))
}

func retentionFromEnv() time.Duration {
	raw := strings.TrimSpace(os.Getenv("IDEMPOTENCY_RETENTION_HOURS"))
	if raw == "" {
		return defaultRetention
	}
	hours, err := strconv.Atoi(raw)
	if err != nil || hours <= 0 {
		return defaultRetention
	}
	return time.Duration(hours) * time.Hour
}
