package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/dicebot/internal/apperrors"
	"github.com/example/dicebot/internal/core/interaction"
	"github.com/example/dicebot/internal/core/token"
	"github.com/example/dicebot/internal/ctxutil"
	"github.com/example/dicebot/internal/ids"
	"github.com/example/dicebot/internal/ports/primary"
	"github.com/example/dicebot/internal/ports/secondary"
)

// InteractionServiceImpl implements the InteractionService interface.
type InteractionServiceImpl struct {
	registry *interaction.Registry
	resolver *Resolver
	executor EffectExecutor
	metrics  secondary.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewInteractionService creates a new InteractionService with injected dependencies.
func NewInteractionService(
	registry *interaction.Registry,
	resolver *Resolver,
	executor EffectExecutor,
	metrics secondary.Metrics,
	logger *slog.Logger,
) *InteractionServiceImpl {
	return &InteractionServiceImpl{
		registry: registry,
		resolver: resolver,
		executor: executor,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// HandleClick decodes the clicked token, resolves configuration and state,
// advances the state and executes the planned effects in order.
func (s *InteractionServiceImpl) HandleClick(ctx context.Context, event primary.ClickEvent) (*primary.ClickResult, error) {
	started := s.now()
	interactionID, err := ids.NewInteractionID(started)
	if err != nil {
		return nil, err
	}

	ctx = ctxutil.WithActorID(ctx, event.ActorID)
	ctx = ctxutil.WithInteractionID(ctx, interactionID)
	log := s.logger.With("channel_id", event.ChannelID, "message_id", event.MessageID)

	result := &primary.ClickResult{
		InteractionID: interactionID,
		Outcome:       primary.OutcomeFailed,
		Timing:        primary.Timing{Started: started},
	}
	err = s.handle(ctx, log, event, result)

	result.Timing.Total = s.now().Sub(started)
	kind := result.Kind
	if kind == "" {
		kind = "unknown"
	}
	s.metrics.ClickHandled(kind, string(result.Outcome))

	attrs := []any{"kind", result.Kind, "outcome", result.Outcome, "total", result.Timing.Total}
	for _, step := range result.Timing.Steps {
		attrs = append(attrs, "step_"+step.Step, step.Duration)
	}
	if err != nil {
		log.WarnContext(ctx, "click handled with errors", append(attrs, "error", err)...)
	} else {
		log.InfoContext(ctx, "click handled", attrs...)
	}
	return result, err
}

func (s *InteractionServiceImpl) handle(ctx context.Context, log *slog.Logger, event primary.ClickEvent, result *primary.ClickResult) error {
	decoded := token.Decode(event.CustomID)
	result.Kind = decoded.Token.Kind
	if !decoded.Current() {
		key := interaction.TextUnknownButton
		if decoded.Class == token.ClassLegacy {
			key = interaction.TextLegacyButton
			result.Outcome = primary.OutcomeLegacy
		}
		s.reply(ctx, log, event, key)
		return apperrors.New(apperrors.CodeDecode, decoded.Class.String()+" token: "+decoded.Reason)
	}

	kind, ok := s.registry.Lookup(decoded.Token.Kind)
	if !ok {
		s.reply(ctx, log, event, interaction.TextUnknownButton)
		return apperrors.New(apperrors.CodeDecode, "unknown command kind "+decoded.Token.Kind)
	}

	var res *Resolution
	err := s.timed(result, "resolve", func() error {
		var err error
		res, err = s.resolver.Resolve(ctx, kind, ResolveRequest{
			Token:     decoded.Token,
			GuildID:   event.GuildID,
			ChannelID: event.ChannelID,
			MessageID: event.MessageID,
		})
		return err
	})
	if apperrors.HasCode(err, apperrors.CodeNotFound) {
		result.Outcome = primary.OutcomeNotFound
		s.reply(ctx, log, event, interaction.TextMissingConfig)
		return err
	}
	if err != nil {
		return err
	}
	result.ConfigID = res.Config.ID

	next := kind.ApplyButton(res.Config, res.Prior, decoded.Token.ButtonValue, event.ActorID)
	plan, err := interaction.GenerateClickPlan(interaction.ClickPlanInput{
		Kind:      kind,
		Config:    res.Config,
		Prior:     res.Prior,
		Next:      next,
		GuildID:   event.GuildID,
		ChannelID: event.ChannelID,
		MessageID: event.MessageID,
		Pinned:    event.Pinned,
		Locale:    event.Locale,
	})
	if err != nil {
		return err
	}
	result.Terminal = plan.Terminal

	report := s.executor.Execute(ctx, ClickScope{
		GuildID:          event.GuildID,
		ChannelID:        event.ChannelID,
		MessageID:        event.MessageID,
		MessageCreatedAt: event.MessageCreatedAt,
		Responder:        event.Responder,
	}, plan.Effects())
	result.Timing.Steps = append(result.Timing.Steps, report.Steps...)
	result.ReplacementID = report.ReplacementID
	result.ReapedMessageIDs = report.Reaped

	if len(report.Failures) == 0 {
		result.Outcome = primary.OutcomeCompleted
		return nil
	}

	result.Outcome = primary.OutcomePartial
	for _, failure := range report.Failures[1:] {
		result.SuppressedFailures = append(result.SuppressedFailures, failure.Error())
		log.WarnContext(ctx, "suppressed step failure", "error", failure)
	}
	return apperrors.Wrap(apperrors.CodeTransientAdapter, "click partially completed", report.Failures[0])
}

func (s *InteractionServiceImpl) timed(result *primary.ClickResult, step string, fn func() error) error {
	start := s.now()
	err := fn()
	elapsed := s.now().Sub(start)
	result.Timing.Steps = append(result.Timing.Steps, primary.StepTiming{Step: step, Duration: elapsed, Err: err})
	s.metrics.StepObserved(step, elapsed, err != nil)
	return err
}

func (s *InteractionServiceImpl) reply(ctx context.Context, log *slog.Logger, event primary.ClickEvent, key interaction.TextKey) {
	if event.Responder == nil {
		return
	}
	if err := event.Responder.Reply(ctx, interaction.Text(event.Locale, key)); err != nil {
		log.WarnContext(ctx, "failed to reply to click", "error", err)
	}
}

// Ensure InteractionServiceImpl implements the interface
var _ primary.InteractionService = (*InteractionServiceImpl)(nil)
