package donation

import (
	"context"
	"log/slog"
	"time"
)

const staleFailureReason = "Payment result not received within the reconciliation window"

// Sweeper periodically fails donations stuck pending past a threshold:
// pushes whose callback never arrived, and records orphaned by a crash
// between ledger insert and push submission.
type Sweeper struct {
	repository   RepositoryAPI
	interval     time.Duration
	pendingAfter time.Duration
	logger       *slog.Logger
}

func NewSweeper(repository RepositoryAPI, interval, pendingAfter time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if pendingAfter <= 0 {
		pendingAfter = 30 * time.Minute
	}
	return &Sweeper{
		repository:   repository,
		interval:     interval,
		pendingAfter: pendingAfter,
		logger:       logger,
	}
}

// Start runs the sweep loop until the context is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("stale-pending sweeper started",
			"interval", s.interval,
			"pending_after", s.pendingAfter)

		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-ctx.Done():
				s.logger.Info("stale-pending sweeper stopped")
				return
			}
		}
	}()
}

// Sweep runs one pass. Exposed for the server's shutdown path and tests.
func (s *Sweeper) Sweep() {
	cutoff := time.Now().Add(-s.pendingAfter)

	count, err := s.repository.FailStalePending(cutoff, staleFailureReason)
	if err != nil {
		s.logger.Error("stale-pending sweep failed", "error", err)
		return
	}

	if count > 0 {
		s.logger.Warn("stale pending donations failed",
			"count", count,
			"cutoff", cutoff)
	}
}
