// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle output formatting, but delegate
// business logic to services.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/example/dicebot/internal/apperrors"
	"github.com/example/dicebot/internal/ports/primary"
)

// ConfigAdapter is a thin adapter that translates CLI operations to ConfigurationService calls.
type ConfigAdapter struct {
	service primary.ConfigurationService
	out     io.Writer
}

// NewConfigAdapter creates a new ConfigAdapter with the given service.
func NewConfigAdapter(service primary.ConfigurationService, out io.Writer) *ConfigAdapter {
	return &ConfigAdapter{
		service: service,
		out:     out,
	}
}

// Create validates and stores a configuration, optionally posting its buttons.
func (a *ConfigAdapter) Create(ctx context.Context, req primary.CreateConfigurationRequest) error {
	resp, err := a.service.CreateConfiguration(ctx, req)
	if resp != nil && resp.Configuration != nil {
		fmt.Fprintf(a.out, "✓ Created %s configuration %s\n", resp.Configuration.Kind, resp.Configuration.ID)
	}
	if err != nil {
		return describe(err)
	}

	if resp.MessageID != "" {
		fmt.Fprintf(a.out, "  Posted message %s in channel %s\n", resp.MessageID, resp.Configuration.ChannelID)
	} else {
		fmt.Fprintf(a.out, "  %s\n", color.New(color.FgYellow).Sprint("(not posted)"))
	}
	return nil
}

// Show displays details for a single configuration.
func (a *ConfigAdapter) Show(ctx context.Context, id string) (*primary.Configuration, error) {
	cfg, err := a.service.GetConfiguration(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get configuration: %w", err)
	}

	fmt.Fprintf(a.out, "\nConfiguration: %s\n", cfg.ID)
	fmt.Fprintf(a.out, "Kind:    %s\n", cfg.Kind)
	fmt.Fprintf(a.out, "Channel: %s\n", cfg.ChannelID)
	if cfg.GuildID != "" {
		fmt.Fprintf(a.out, "Guild:   %s\n", cfg.GuildID)
	}
	if cfg.Body != "" {
		fmt.Fprintf(a.out, "Body:    %s\n", cfg.Body)
	}
	if cfg.TargetChannelID != "" {
		fmt.Fprintf(a.out, "Answers: %s\n", cfg.TargetChannelID)
	}
	fmt.Fprintf(a.out, "Format:  %s\n", orDefault(cfg.AnswerFormat, "full"))
	if cfg.Locale != "" {
		fmt.Fprintf(a.out, "Locale:  %s\n", cfg.Locale)
	}
	fmt.Fprintf(a.out, "Created: %s\n", cfg.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(a.out)

	return cfg, nil
}

// List lists configurations with optional filters.
func (a *ConfigAdapter) List(ctx context.Context, filters primary.ConfigurationFilters) error {
	configs, err := a.service.ListConfigurations(ctx, filters)
	if err != nil {
		return err
	}

	if len(configs) == 0 {
		fmt.Fprintln(a.out, "No configurations found")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tCHANNEL\tBODY")
	for _, cfg := range configs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", cfg.ID, cfg.Kind, cfg.ChannelID, truncate(cfg.Body, 40))
	}
	return w.Flush()
}

// Delete deletes a configuration.
func (a *ConfigAdapter) Delete(ctx context.Context, id string, force bool) error {
	err := a.service.DeleteConfiguration(ctx, primary.DeleteConfigurationRequest{ID: id, Force: force})
	if err != nil {
		return describe(err)
	}

	fmt.Fprintf(a.out, "✓ Deleted configuration %s\n", id)
	return nil
}

// describe prefixes validation errors with the offending field.
func describe(err error) error {
	var e *apperrors.Error
	if errors.As(err, &e) && e.Code == apperrors.CodeValidation && e.Field() != "" {
		return fmt.Errorf("invalid %s: %s", e.Field(), e.Message)
	}
	return err
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
