package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/dicebot/internal/ports/primary"
	"github.com/example/dicebot/internal/wire"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage button configurations",
	Long:  "Create, inspect and delete the configurations behind interactive dice messages",
}

var configCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a configuration",
	Long: `Validate and store a configuration. Every state its buttons can reach is
checked up front, so an invalid body is rejected here rather than at roll time.

With --post the initial button message is sent to the channel, which needs
DICEBOT_DISCORD_TOKEN.`,
	Example: `  dicebot config create --kind custom_dice --channel 123 --body "1d20@Attack;2d6@Damage"
  dicebot config create --kind custom_parameter --channel 123 --body "{n}d{s:6/10}" --post`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("kind")
		body, _ := cmd.Flags().GetString("body")
		guild, _ := cmd.Flags().GetString("guild")
		channel, _ := cmd.Flags().GetString("channel")
		target, _ := cmd.Flags().GetString("target-channel")
		format, _ := cmd.Flags().GetString("format")
		locale, _ := cmd.Flags().GetString("locale")
		post, _ := cmd.Flags().GetBool("post")

		return wire.ConfigAdapterWithOutput(cmd.OutOrStdout()).Create(cmd.Context(), primary.CreateConfigurationRequest{
			Kind:            kind,
			Body:            body,
			GuildID:         guild,
			ChannelID:       channel,
			TargetChannelID: target,
			AnswerFormat:    format,
			Locale:          locale,
			Post:            post,
		})
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show [config-id]",
	Short: "Show configuration details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.ConfigAdapterWithOutput(cmd.OutOrStdout()).Show(cmd.Context(), args[0])
		return err
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configurations",
	RunE: func(cmd *cobra.Command, args []string) error {
		channel, _ := cmd.Flags().GetString("channel")
		kind, _ := cmd.Flags().GetString("kind")
		limit, _ := cmd.Flags().GetInt("limit")

		return wire.ConfigAdapterWithOutput(cmd.OutOrStdout()).List(cmd.Context(), primary.ConfigurationFilters{
			ChannelID: channel,
			Kind:      kind,
			Limit:     limit,
		})
	},
}

var configDeleteCmd = &cobra.Command{
	Use:   "delete [config-id]",
	Short: "Delete a configuration",
	Long:  "Delete a configuration and its message records. Buttons still posted for it stop working.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		return wire.ConfigAdapterWithOutput(cmd.OutOrStdout()).Delete(cmd.Context(), args[0], force)
	},
}

// ConfigCmd returns the config command
func ConfigCmd() *cobra.Command {
	// Add flags
	configCreateCmd.Flags().StringP("kind", "k", "", "Command kind (custom_dice, custom_parameter, quick_roll)")
	configCreateCmd.Flags().StringP("body", "b", "", "Kind-specific body")
	configCreateCmd.Flags().StringP("channel", "c", "", "Channel the buttons live in")
	configCreateCmd.Flags().String("guild", "", "Guild id")
	configCreateCmd.Flags().String("target-channel", "", "Channel answers are posted to (default: the button channel)")
	configCreateCmd.Flags().String("format", "", "Answer format (full, compact, minimal)")
	configCreateCmd.Flags().String("locale", "", "Locale for fixed texts (e.g. de, pt-BR)")
	configCreateCmd.Flags().Bool("post", false, "Post the initial button message")
	configCreateCmd.MarkFlagRequired("kind")
	configCreateCmd.MarkFlagRequired("channel")

	configListCmd.Flags().StringP("channel", "c", "", "Filter by channel")
	configListCmd.Flags().StringP("kind", "k", "", "Filter by command kind")
	configListCmd.Flags().IntP("limit", "n", 0, "Maximum number of configurations")

	configDeleteCmd.Flags().BoolP("force", "f", false, "Delete even while button messages are live, removing them from the channel")

	// Add subcommands
	configCmd.AddCommand(configCreateCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configDeleteCmd)

	return configCmd
}
