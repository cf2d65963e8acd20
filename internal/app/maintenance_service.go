package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/dicebot/internal/ports/primary"
	"github.com/example/dicebot/internal/ports/secondary"
)

// MaintenanceServiceImpl implements the MaintenanceService interface.
type MaintenanceServiceImpl struct {
	messages  secondary.MessageRepository
	metrics   secondary.Metrics
	retention time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewMaintenanceService creates a new MaintenanceService. Tombstones older
// than retention are purged.
func NewMaintenanceService(messages secondary.MessageRepository, metrics secondary.Metrics, retention time.Duration, logger *slog.Logger) *MaintenanceServiceImpl {
	return &MaintenanceServiceImpl{
		messages:  messages,
		metrics:   metrics,
		retention: retention,
		logger:    logger,
		now:       time.Now,
	}
}

// PurgeTombstones removes message records tombstoned longer than the retention.
func (s *MaintenanceServiceImpl) PurgeTombstones(ctx context.Context) (*primary.PurgeResult, error) {
	cutoff := s.now().Add(-s.retention)
	purged, err := s.messages.PurgeDeleted(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to purge tombstones: %w", err)
	}
	if purged > 0 {
		s.metrics.TombstonesPurged(purged)
		s.logger.InfoContext(ctx, "purged tombstones", "count", purged, "cutoff", cutoff)
	}
	return &primary.PurgeResult{Cutoff: cutoff, Purged: purged}, nil
}

// RunPurgeLoop purges every interval until ctx is done. Failures are logged
// and retried on the next tick.
func (s *MaintenanceServiceImpl) RunPurgeLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.PurgeTombstones(ctx); err != nil {
				s.logger.WarnContext(ctx, "tombstone purge failed", "error", err)
			}
		}
	}
}

// Ensure MaintenanceServiceImpl implements the interface
var _ primary.MaintenanceService = (*MaintenanceServiceImpl)(nil)
