package primary

import (
	"context"
	"time"
)

// MaintenanceService defines the primary port for housekeeping jobs.
type MaintenanceService interface {
	// PurgeTombstones removes message records tombstoned longer than the retention.
	PurgeTombstones(ctx context.Context) (*PurgeResult, error)

	// RunPurgeLoop purges every interval until ctx is done.
	RunPurgeLoop(ctx context.Context, interval time.Duration)
}

// PurgeResult reports one purge run.
type PurgeResult struct {
	Cutoff time.Time
	Purged int64
}
