package application

import (
	"context"
	"log/slog"

	"github.com/Apurer/pet-adoption-api/internal/shared/txn"
)

// undoLog collects compensations for writes made inside a unit of work. They
// only run when the transactor cannot roll the unit back itself.
type undoLog struct {
	steps []func(ctx context.Context) error
}

func (u *undoLog) add(step func(ctx context.Context) error) {
	u.steps = append(u.steps, step)
}

func (u *undoLog) revert(ctx context.Context, logger *slog.Logger) {
	for i := len(u.steps) - 1; i >= 0; i-- {
		if err := u.steps[i](ctx); err != nil {
			logger.LogAttrs(ctx, slog.LevelError, "compensation step failed",
				slog.Int("step", i),
				slog.String("error", err.Error()))
		}
	}
}

// runUnit executes fn inside the transactor and reverts partial writes on
// failure when the store keeps them.
func (s *Service) runUnit(ctx context.Context, fn func(ctx context.Context, u *undoLog) error) error {
	rollsBack := txn.RollsBack(s.tx)
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		u := &undoLog{}
		err := fn(ctx, u)
		if err != nil && !rollsBack {
			u.revert(ctx, s.logger)
		}
		return err
	})
}
