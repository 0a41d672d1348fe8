// Package scheduler runs the periodic expiry sweep.
package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// ExpirySweeper is implemented by the lifecycle service
type ExpirySweeper interface {
	SweepExpiredAuctions(ctx context.Context) (int64, error)
}

// Sweeper ends expired auctions on a fixed interval
type Sweeper struct {
	service  ExpirySweeper
	interval time.Duration
	logger   *slog.Logger
}

func NewSweeper(service ExpirySweeper, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		service:  service,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps once immediately, then on every tick. It returns nil once ctx
// is cancelled. A failed sweep is logged and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.service.SweepExpiredAuctions(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("Expiry sweep failed", "error", err)
		}
		return
	}
	if n > 0 {
		s.logger.Info("Expiry sweep finished", "ended", n)
	}
}
