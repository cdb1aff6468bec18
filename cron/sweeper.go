package cron

import (
	"context"
	"fmt"
	"time"

	reservationRepo "busreserve/database/repository/reservation"

	"go.uber.org/zap"
)

// SweepHolds physically removes holds that expired by now. Expired holds are already ignored on
// read, so the sweep only bounds storage growth.
func SweepHolds(ctx context.Context, repo reservationRepo.ReservationRepository, now time.Time, logger *zap.Logger) error {
	n, err := repo.PurgeExpiredHolds(ctx, now)
	if err != nil {
		logger.Error("Hold sweep failed", zap.Error(err))
		return fmt.Errorf("hold sweep: %w", err)
	}
	if n > 0 {
		logger.Info("Expired holds swept", zap.Int64("trips", n))
	}
	return nil
}

// RunHoldSweeper sweeps on a ticker until ctx is done. It stands in for the queue scheduler when
// the service runs without Redis.
func RunHoldSweeper(ctx context.Context, repo reservationRepo.ReservationRepository, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			_ = SweepHolds(ctx, repo, now, logger)
		}
	}
}
