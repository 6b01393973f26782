package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/pet-adoption-api/internal/app/api"
	platformobservability "github.com/Apurer/pet-adoption-api/internal/platform/observability"
	adoptionactivities "github.com/Apurer/pet-adoption-api/internal/platform/temporal/activities/adoptions"
	adoptionworkflows "github.com/Apurer/pet-adoption-api/internal/platform/temporal/workflows/adoptions"
)

func main() {
	ctx := context.Background()
	const serviceName = "pet-adoption-worker"
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
	activities := adoptionactivities.NewActivities(services.Adoptions)

	temporalClient, err := api.ConnectTemporalClient(cfg, instruments, "temporal-worker")
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, adoptionworkflows.AdoptionDecisionTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(adoptionworkflows.AdoptionDecisionWorkflow, workflow.RegisterOptions{Name: adoptionworkflows.AdoptionDecisionWorkflowName})
	w.RegisterActivityWithOptions(activities.DecideRequest, activity.RegisterOptions{Name: adoptionactivities.DecideRequestActivityName})
	w.RegisterActivityWithOptions(activities.Reconcile, activity.RegisterOptions{Name: adoptionactivities.ReconcileActivityName})

	logger.Info("worker listening",
		slog.String("taskQueue", adoptionworkflows.AdoptionDecisionTaskQueue),
		slog.String("namespace", cfg.TemporalNamespace),
		slog.String("backend", stores.Backend),
	)
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
