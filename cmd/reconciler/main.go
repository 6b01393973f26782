package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Apurer/pet-adoption-api/internal/app/api"
	platformobservability "github.com/Apurer/pet-adoption-api/internal/platform/observability"
)

func main() {
	once := flag.Bool("once", false, "run a single reconciliation pass and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	const serviceName = "pet-adoption-reconciler"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, cfg.Telemetry(serviceName))
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	stores, cleanupStores, err := api.BuildStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open repositories", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanupStores()
	services, cleanupServices, err := api.BuildServices(ctx, cfg, instruments, stores)
	if err != nil {
		logger.Error("failed to build services", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanupServices()

	if *once {
		if err := api.ReconcileOnce(ctx, services.Adoptions, logger); err != nil {
			os.Exit(1)
		}
		return
	}

	scheduler, err := api.ScheduleReconcile(ctx, cfg.ReconcileSchedule, services.Adoptions, logger)
	if err != nil {
		logger.Error("failed to schedule reconciliation", slog.String("error", err.Error()))
		os.Exit(1)
	}
	scheduler.Start()
	logger.Info("reconciler scheduled", slog.String("schedule", cfg.ReconcileSchedule), slog.String("backend", stores.Backend))
	<-ctx.Done()
	<-scheduler.Stop().Done()
	logger.Info("reconciler stopped")
}
