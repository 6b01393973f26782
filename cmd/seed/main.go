package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/Apurer/pet-adoption-api/internal/app/api"
	"github.com/Apurer/pet-adoption-api/internal/app/seed"
	platformobservability "github.com/Apurer/pet-adoption-api/internal/platform/observability"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if cfg.Backend() == api.BackendMemory {
		log.Fatal("seeding the in-memory backend has no effect; set POSTGRES_DSN or STORAGE_BACKEND=dynamodb")
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	instruments := &platformobservability.Instruments{Logger: logger}

	stores, cleanupStores, err := api.BuildStores(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to open repositories: %v", err)
	}
	defer cleanupStores()
	services, cleanupServices, err := api.BuildServices(ctx, cfg, instruments, stores)
	if err != nil {
		log.Fatalf("failed to build services: %v", err)
	}
	defer cleanupServices()

	result, err := seed.Run(ctx, services.Users, services.Animals, logger)
	if err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	logger.Info("seeding completed",
		slog.Int("accounts", result.Accounts),
		slog.Int("animals", result.Animals),
		slog.String("backend", stores.Backend),
	)
}
