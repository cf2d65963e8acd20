package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/dicebot/internal/ports/primary"
)

// MaintenanceAdapter runs one-shot maintenance for the CLI.
type MaintenanceAdapter struct {
	service primary.MaintenanceService
	out     io.Writer
}

// NewMaintenanceAdapter creates a new MaintenanceAdapter.
func NewMaintenanceAdapter(service primary.MaintenanceService, out io.Writer) *MaintenanceAdapter {
	return &MaintenanceAdapter{service: service, out: out}
}

// Purge removes expired tombstones once.
func (a *MaintenanceAdapter) Purge(ctx context.Context) error {
	result, err := a.service.PurgeTombstones(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Purged %d tombstoned message records older than %s\n",
		result.Purged, result.Cutoff.Format("2006-01-02 15:04:05"))
	return nil
}
