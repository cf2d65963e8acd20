package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/dicebot/internal/apperrors"
	"github.com/example/dicebot/internal/core/configuration"
	"github.com/example/dicebot/internal/core/interaction"
	"github.com/example/dicebot/internal/core/token"
	"github.com/example/dicebot/internal/ids"
	"github.com/example/dicebot/internal/ports/primary"
	"github.com/example/dicebot/internal/ports/secondary"
)

// ConfigurationServiceImpl implements the ConfigurationService interface.
type ConfigurationServiceImpl struct {
	registry *interaction.Registry
	configs  secondary.ConfigRepository
	messages secondary.MessageRepository
	chat     secondary.ChatAdapter // nil when not connected
	tracker  *LifecycleTracker
	logger   *slog.Logger
	now      func() time.Time
}

// NewConfigurationService creates a new ConfigurationService with injected
// dependencies. chat and tracker may be nil; posting is then unavailable.
func NewConfigurationService(
	registry *interaction.Registry,
	configs secondary.ConfigRepository,
	messages secondary.MessageRepository,
	chat secondary.ChatAdapter,
	tracker *LifecycleTracker,
	logger *slog.Logger,
) *ConfigurationServiceImpl {
	return &ConfigurationServiceImpl{
		registry: registry,
		configs:  configs,
		messages: messages,
		chat:     chat,
		tracker:  tracker,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateConfiguration validates and persists a configuration, and posts its
// initial button message when requested.
func (s *ConfigurationServiceImpl) CreateConfiguration(ctx context.Context, req primary.CreateConfigurationRequest) (*primary.CreateConfigurationResponse, error) {
	kind, registered := s.registry.Lookup(req.Kind)

	guard := configuration.CanCreateConfiguration(configuration.CreateContext{
		Kind:            req.Kind,
		KindRegistered:  registered,
		ChannelID:       req.ChannelID,
		TargetChannelID: req.TargetChannelID,
		FormatValid:     interaction.ValidFormat(interaction.AnswerFormat(req.AnswerFormat)),
		LocaleValid:     req.Locale == "" || interaction.ValidLocale(req.Locale),
		Post:            req.Post,
		CanPost:         s.chat != nil && s.tracker != nil,
	})
	if !guard.Allowed {
		return nil, apperrors.Validation(guard.Field, guard.Reason)
	}
	if err := token.ValidateUserValue(req.Body); err != nil {
		return nil, apperrors.Validation("body", err.Error())
	}

	cfg := interaction.Configuration{
		ID:              ids.NewConfigID(),
		Kind:            kind.Name(),
		Body:            req.Body,
		AnswerFormat:    interaction.AnswerFormat(req.AnswerFormat),
		TargetChannelID: req.TargetChannelID,
		Locale:          req.Locale,
	}
	if err := kind.Validate(cfg); err != nil {
		if apperrors.CodeOf(err) == "" {
			return nil, apperrors.Validation("body", err.Error())
		}
		return nil, err
	}

	content, rows, err := interaction.RenderMessage(kind, cfg, interaction.State{}, kind.InitialMessage(cfg))
	if err != nil {
		return nil, apperrors.Validation("body", err.Error())
	}

	serialized, err := interaction.MarshalConfig(cfg)
	if err != nil {
		return nil, err
	}
	record := &secondary.ConfigRecord{
		ID:               cfg.ID,
		CommandKind:      string(cfg.Kind),
		GuildID:          req.GuildID,
		ChannelID:        req.ChannelID,
		SerializedConfig: serialized,
		CreatedAt:        s.now(),
	}
	if err := s.configs.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create configuration: %w", err)
	}

	resp := &primary.CreateConfigurationResponse{Configuration: s.recordToConfiguration(record, cfg)}
	for _, row := range rows {
		for _, b := range row.Buttons {
			resp.CustomIDs = append(resp.CustomIDs, b.CustomID)
		}
	}

	if !req.Post {
		return resp, nil
	}

	messageID, err := s.chat.SendMessage(ctx, req.ChannelID, toOutbound(content, rows))
	if err != nil {
		return resp, apperrors.Wrap(apperrors.CodeTransientAdapter, "configuration saved but posting the button message failed", err)
	}
	resp.MessageID = messageID

	err = s.tracker.RegisterActive(ctx, &secondary.MessageRecord{
		ConfigID:    cfg.ID,
		GuildID:     req.GuildID,
		ChannelID:   req.ChannelID,
		MessageID:   messageID,
		CommandKind: string(cfg.Kind),
	})
	if err != nil {
		return resp, err
	}

	s.logger.InfoContext(ctx, "configuration posted", "config_id", cfg.ID, "kind", cfg.Kind, "message_id", messageID)
	return resp, nil
}

// GetConfiguration retrieves a configuration by ID.
func (s *ConfigurationServiceImpl) GetConfiguration(ctx context.Context, id string) (*primary.Configuration, error) {
	record, err := s.configs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cfg, err := interaction.UnmarshalConfig(record.ID, record.SerializedConfig)
	if err != nil {
		return nil, err
	}
	return s.recordToConfiguration(record, cfg), nil
}

// ListConfigurations lists configurations matching the filters.
func (s *ConfigurationServiceImpl) ListConfigurations(ctx context.Context, filters primary.ConfigurationFilters) ([]*primary.Configuration, error) {
	records, err := s.configs.List(ctx, secondary.ConfigFilters{
		ChannelID:   filters.ChannelID,
		CommandKind: filters.Kind,
		Limit:       filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list configurations: %w", err)
	}

	configs := make([]*primary.Configuration, 0, len(records))
	for _, record := range records {
		cfg, err := interaction.UnmarshalConfig(record.ID, record.SerializedConfig)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping unreadable configuration", "config_id", record.ID, "error", err)
			continue
		}
		configs = append(configs, s.recordToConfiguration(record, cfg))
	}
	return configs, nil
}

// DeleteConfiguration deletes a configuration and its message records. With
// Force, live button messages are reaped from the channel first; pinned ones
// stay in place.
func (s *ConfigurationServiceImpl) DeleteConfiguration(ctx context.Context, req primary.DeleteConfigurationRequest) error {
	record, err := s.configs.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}

	active, err := s.messages.ListActiveMessageIDs(ctx, req.ID)
	if err != nil {
		return fmt.Errorf("failed to count live messages: %w", err)
	}

	guard := configuration.CanDeleteConfiguration(configuration.DeleteContext{
		ConfigID:       req.ID,
		ActiveMessages: len(active),
		ForceDelete:    req.Force,
	})
	if !guard.Allowed {
		return apperrors.Validation(guard.Field, guard.Reason)
	}

	if len(active) > 0 {
		if s.tracker == nil {
			s.logger.WarnContext(ctx, "not connected, live button messages stay in the channel",
				"config_id", req.ID, "messages", len(active))
		} else {
			reaped, err := s.tracker.ReapOthers(ctx, req.ID, record.ChannelID, "", "")
			if err != nil {
				return err
			}
			s.logger.InfoContext(ctx, "reaped live button messages", "config_id", req.ID, "reaped", len(reaped))
		}
	}

	return s.configs.Delete(ctx, req.ID)
}

func (s *ConfigurationServiceImpl) recordToConfiguration(record *secondary.ConfigRecord, cfg interaction.Configuration) *primary.Configuration {
	return &primary.Configuration{
		ID:              record.ID,
		Kind:            record.CommandKind,
		Body:            cfg.Body,
		GuildID:         record.GuildID,
		ChannelID:       record.ChannelID,
		TargetChannelID: cfg.TargetChannelID,
		AnswerFormat:    string(cfg.AnswerFormat),
		Locale:          cfg.Locale,
		CreatedAt:       record.CreatedAt,
	}
}

// Ensure ConfigurationServiceImpl implements the interface
var _ primary.ConfigurationService = (*ConfigurationServiceImpl)(nil)
