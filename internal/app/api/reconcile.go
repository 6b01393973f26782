package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	adoptionports "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
)

const reconcileTimeout = time.Minute

// ReconcileOnce runs a single reconciliation pass and logs what it repaired.
func ReconcileOnce(ctx context.Context, service adoptionports.Service, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, reconcileTimeout)
	defer cancel()
	report, err := service.Reconcile(ctx)
	if err != nil {
		logger.Error("reconciliation failed", slog.String("error", err.Error()))
		return err
	}
	logger.Info("reconciliation completed",
		slog.Int("released", len(report.Released)),
		slog.Int("held", len(report.Held)),
		slog.Int("adopted", len(report.Adopted)),
		slog.Int("skipped", report.Skipped),
	)
	return nil
}

// ScheduleReconcile registers a reconciliation pass on schedule. Overlapping
// runs are skipped. The caller starts and stops the returned scheduler.
func ScheduleReconcile(ctx context.Context, schedule string, service adoptionports.Service, logger *slog.Logger) (*cron.Cron, error) {
	scheduler := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := scheduler.AddFunc(schedule, func() {
		_ = ReconcileOnce(ctx, service, logger)
	}); err != nil {
		return nil, fmt.Errorf("invalid RECONCILE_SCHEDULE %q: %w", schedule, err)
	}
	return scheduler, nil
}
