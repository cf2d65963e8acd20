package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/dicebot/internal/wire"
)

// PurgeCmd returns the purge command
func PurgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Remove expired tombstoned message records once",
		Long:  "Physically delete message records tombstoned longer than DICEBOT_TOMBSTONE_RETENTION. `serve` does this periodically.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.MaintenanceAdapter().Purge(cmd.Context())
		},
	}
}
