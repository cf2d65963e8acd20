package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/dicebot/internal/cli"
	"github.com/example/dicebot/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "dicebot",
		Short:   "dicebot - persistent button-driven dice rolls for Discord",
		Version: version.String(),
		Long: `dicebot serves interactive dice messages on Discord. Each button click
advances the message's state, posts the roll and replaces the message so the
buttons stay at the bottom of the channel.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.ConfigCmd())
	rootCmd.AddCommand(cli.PurgeCmd())
	rootCmd.AddCommand(cli.TokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
