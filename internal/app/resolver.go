package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/example/dicebot/internal/apperrors"
	"github.com/example/dicebot/internal/core/interaction"
	"github.com/example/dicebot/internal/core/token"
	"github.com/example/dicebot/internal/ids"
	"github.com/example/dicebot/internal/ports/secondary"
)

// Resolution sources.
const (
	SourceToken         = "token"
	SourceMessageRecord = "message_record"
	SourceFallback      = "fallback"
)

// ResolveRequest identifies the click being resolved.
type ResolveRequest struct {
	Token     token.Token
	GuildID   string
	ChannelID string
	MessageID string
}

// Resolution is everything a click needs before its state can advance.
type Resolution struct {
	Config      interaction.Configuration
	Record      *secondary.MessageRecord
	Prior       interaction.State
	Source      string
	Synthesized bool
}

// Resolver recovers the configuration and prior state of a clicked message.
type Resolver struct {
	configs      secondary.ConfigRepository
	messages     secondary.MessageRepository
	legacyLookup bool
	logger       *slog.Logger
	group        singleflight.Group
	now          func() time.Time
}

// NewResolver creates a resolver. With legacyLookup set, clicks whose token
// carries no configuration id recover it from the message record.
func NewResolver(configs secondary.ConfigRepository, messages secondary.MessageRepository, legacyLookup bool, logger *slog.Logger) *Resolver {
	return &Resolver{
		configs:      configs,
		messages:     messages,
		legacyLookup: legacyLookup,
		logger:       logger,
		now:          time.Now,
	}
}

// Resolve finds the configuration of a click, makes sure the message has a
// live record and returns the state the click starts from.
func (r *Resolver) Resolve(ctx context.Context, kind interaction.Kind, req ResolveRequest) (*Resolution, error) {
	existing, err := r.lookupRecord(ctx, req.ChannelID, req.MessageID)
	if err != nil {
		return nil, err
	}

	cfg, source, err := r.findConfig(ctx, kind, req, existing)
	if err != nil {
		return nil, err
	}

	res := &Resolution{Config: cfg, Record: existing, Source: source}
	if existing == nil || !existing.IsLive() {
		res.Record, err = r.synthesize(ctx, cfg, req)
		if err != nil {
			return nil, err
		}
		res.Synthesized = true
	}

	switch {
	case req.Token.Inline():
		res.Prior = interaction.State{Fields: kind.Schema().Fill(req.Token.Fields)}
	case res.Record.ConfigID == cfg.ID:
		res.Prior, err = interaction.UnmarshalState(res.Record.SerializedState)
		if err != nil {
			r.logger.WarnContext(ctx, "discarding unreadable message state",
				"channel_id", req.ChannelID, "message_id", req.MessageID, "error", err)
			res.Prior = interaction.State{}
		}
	}
	return res, nil
}

func (r *Resolver) lookupRecord(ctx context.Context, channelID, messageID string) (*secondary.MessageRecord, error) {
	record, err := r.messages.GetByChannelMessage(ctx, channelID, messageID)
	if apperrors.HasCode(err, apperrors.CodeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeTransientAdapter, "failed to load message record", err)
	}
	return record, nil
}

func (r *Resolver) findConfig(ctx context.Context, kind interaction.Kind, req ResolveRequest, existing *secondary.MessageRecord) (interaction.Configuration, string, error) {
	configID, source := req.Token.ConfigID, SourceToken
	if configID == "" && r.legacyLookup && existing != nil {
		configID, source = existing.ConfigID, SourceMessageRecord
	}

	if configID != "" {
		cfg, err := r.loadConfig(ctx, configID)
		if err == nil {
			if cfg.Kind != kind.Name() {
				return interaction.Configuration{}, "", apperrors.New(apperrors.CodeNotFound,
					fmt.Sprintf("configuration %s belongs to %s, not %s", configID, cfg.Kind, kind.Name()))
			}
			return cfg, source, nil
		}
		if !apperrors.HasCode(err, apperrors.CodeNotFound) {
			return interaction.Configuration{}, "", err
		}
	}

	provider, ok := kind.(interaction.FallbackProvider)
	if !ok {
		return interaction.Configuration{}, "", apperrors.New(apperrors.CodeNotFound,
			fmt.Sprintf("no configuration for message %s in channel %s", req.MessageID, req.ChannelID))
	}
	cfg, ok := provider.Fallback(req.Token.ButtonValue)
	if !ok {
		return interaction.Configuration{}, "", apperrors.New(apperrors.CodeNotFound,
			fmt.Sprintf("%s cannot build a configuration for button %q", kind.Name(), req.Token.ButtonValue))
	}

	cfg.ID = ids.FallbackConfigID(string(kind.Name()), req.ChannelID, req.MessageID)
	cfg.Kind = kind.Name()
	if err := r.saveFallback(ctx, cfg, req); err != nil {
		return interaction.Configuration{}, "", err
	}
	return cfg, SourceFallback, nil
}

func (r *Resolver) loadConfig(ctx context.Context, id string) (interaction.Configuration, error) {
	record, err := r.configs.GetByID(ctx, id)
	if apperrors.HasCode(err, apperrors.CodeNotFound) {
		return interaction.Configuration{}, err
	}
	if err != nil {
		return interaction.Configuration{}, apperrors.Wrap(apperrors.CodeTransientAdapter, "failed to load configuration", err)
	}
	cfg, err := interaction.UnmarshalConfig(record.ID, record.SerializedConfig)
	if err != nil {
		return interaction.Configuration{}, apperrors.Wrap(apperrors.CodeNotFound, "stored configuration is unreadable", err)
	}
	return cfg, nil
}

func (r *Resolver) saveFallback(ctx context.Context, cfg interaction.Configuration, req ResolveRequest) error {
	serialized, err := interaction.MarshalConfig(cfg)
	if err != nil {
		return err
	}
	err = r.configs.SaveIfAbsent(ctx, &secondary.ConfigRecord{
		ID:               cfg.ID,
		CommandKind:      string(cfg.Kind),
		GuildID:          req.GuildID,
		ChannelID:        req.ChannelID,
		SerializedConfig: serialized,
		CreatedAt:        r.now(),
	})
	if err != nil {
		return apperrors.Wrap(apperrors.CodeTransientAdapter, "failed to save fallback configuration", err)
	}
	return nil
}

// synthesize records a message that has no live record yet. Concurrent clicks
// on the same message share one insert, and the store ignores a second one.
// The shared insert outlives the click that started it: cancelling one click
// must not fail the others waiting on it.
func (r *Resolver) synthesize(ctx context.Context, cfg interaction.Configuration, req ResolveRequest) (*secondary.MessageRecord, error) {
	key := req.ChannelID + ":" + req.MessageID
	v, err, shared := r.group.Do(key, func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		created, err := r.messages.Create(ctx, &secondary.MessageRecord{
			ConfigID:    cfg.ID,
			GuildID:     req.GuildID,
			ChannelID:   req.ChannelID,
			MessageID:   req.MessageID,
			CommandKind: string(cfg.Kind),
			CreatedAt:   r.now(),
		})
		if err != nil {
			return nil, err
		}
		if created {
			r.logger.InfoContext(ctx, "synthesized message record",
				"config_id", cfg.ID, "channel_id", req.ChannelID, "message_id", req.MessageID)
		}
		return r.messages.GetByChannelMessage(ctx, req.ChannelID, req.MessageID)
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeTransientAdapter, "failed to record message", err)
	}
	if shared {
		r.logger.DebugContext(ctx, "shared message record synthesis", "message_id", req.MessageID)
	}
	return v.(*secondary.MessageRecord), nil
}
