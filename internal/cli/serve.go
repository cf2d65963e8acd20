package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/example/dicebot/internal/wire"
)

// runner is a long-running component stopped by cancelling its context.
type runner interface {
	Run(ctx context.Context) error
}

// purger runs the periodic tombstone purge.
type purger interface {
	RunPurgeLoop(ctx context.Context, interval time.Duration)
}

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Connect to Discord and handle button clicks",
		Long: `Run the Discord gateway, the tombstone purge loop and the ops HTTP server
(/metrics, /healthz, /version) until SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			defer wire.Close()

			gateway, err := wire.Gateway()
			if err != nil {
				return err
			}
			var ops runner
			if srv := wire.OpsServer(); srv != nil {
				ops = srv
			}
			cfg := wire.Config()
			return serveRunE(ctx, gateway, ops, wire.MaintenanceService(), cfg.PurgeInterval, wire.Logger())
		},
	}
}

// serveRunE runs every component until ctx is done or one of them fails.
// ops may be nil.
func serveRunE(ctx context.Context, gateway runner, ops runner, maintenance purger, purgeInterval time.Duration, logger *slog.Logger) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := gateway.Run(ctx); err != nil {
			return fmt.Errorf("gateway stopped: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		maintenance.RunPurgeLoop(ctx, purgeInterval)
		return nil
	})
	if ops != nil {
		g.Go(func() error {
			if err := ops.Run(ctx); err != nil {
				return fmt.Errorf("ops server stopped: %w", err)
			}
			return nil
		})
	}

	logger.Info("dicebot serving", "purge_interval", purgeInterval)
	err := g.Wait()
	logger.Info("dicebot stopped")
	return err
}
