package cli

import (
	"github.com/spf13/cobra"

	cliadapter "github.com/example/dicebot/internal/adapters/cli"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Inspect component tokens",
}

var tokenDecodeCmd = &cobra.Command{
	Use:   "decode [custom-id]",
	Short: "Decode a button custom id",
	Long:  "Decode a button custom id and print its classification, configuration id and state fields. Use $'...' quoting for the delimiter.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cliadapter.PrintDecoded(cmd.OutOrStdout(), args[0])
		return nil
	},
}

// TokenCmd returns the token command
func TokenCmd() *cobra.Command {
	tokenCmd.AddCommand(tokenDecodeCmd)
	return tokenCmd
}
