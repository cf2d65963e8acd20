// Package app contains the application layer - service implementations and effect execution.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/dicebot/internal/core/effects"
	"github.com/example/dicebot/internal/core/interaction"
	"github.com/example/dicebot/internal/logging"
	"github.com/example/dicebot/internal/ports/primary"
	"github.com/example/dicebot/internal/ports/secondary"
)

// ClickScope is the click a batch of effects belongs to.
type ClickScope struct {
	GuildID          string
	ChannelID        string
	MessageID        string
	MessageCreatedAt time.Time
	Responder        secondary.Responder
}

// ExecutionReport describes what executing a batch of effects did.
type ExecutionReport struct {
	Steps         []primary.StepTiming
	ReplacementID string
	Reaped        []string
	Failures      []error

	// replacementMissing is set when a replacement effect ran but posted nothing.
	replacementMissing bool
}

// EffectExecutor interprets and executes effects.
// This is the "Imperative Shell" - the only place I/O happens.
type EffectExecutor interface {
	Execute(ctx context.Context, scope ClickScope, effs []effects.Effect) ExecutionReport
}

// DefaultEffectExecutor implements EffectExecutor against the chat surface and the store.
type DefaultEffectExecutor struct {
	chat     secondary.ChatAdapter
	messages secondary.MessageRepository
	dice     secondary.DiceEvaluator
	tracker  *LifecycleTracker
	throttle *ThrottleScheduler
	metrics  secondary.Metrics
	logger   *slog.Logger
}

// NewEffectExecutor creates a new DefaultEffectExecutor.
func NewEffectExecutor(
	chat secondary.ChatAdapter,
	messages secondary.MessageRepository,
	dice secondary.DiceEvaluator,
	tracker *LifecycleTracker,
	throttle *ThrottleScheduler,
	metrics secondary.Metrics,
	logger *slog.Logger,
) *DefaultEffectExecutor {
	return &DefaultEffectExecutor{
		chat:     chat,
		messages: messages,
		dice:     dice,
		tracker:  tracker,
		throttle: throttle,
		metrics:  metrics,
		logger:   logger,
	}
}

// Execute runs effects in order. A failing effect does not stop the ones
// after it; every failure is collected in the report. The one exception is
// the origin delete, which turns into a restore when no replacement was posted.
func (e *DefaultEffectExecutor) Execute(ctx context.Context, scope ClickScope, effs []effects.Effect) ExecutionReport {
	var report ExecutionReport
	for _, eff := range effs {
		if logEff, ok := eff.(effects.LogEffect); ok {
			e.executeLog(ctx, logEff)
			continue
		}

		start := time.Now()
		err := e.executeOne(ctx, scope, eff, &report)
		elapsed := time.Since(start)

		if err != nil {
			err = fmt.Errorf("failed to execute %s effect: %w", eff.EffectType(), err)
			report.Failures = append(report.Failures, err)
		}
		report.Steps = append(report.Steps, primary.StepTiming{Step: eff.EffectType(), Duration: elapsed, Err: err})
		e.metrics.StepObserved(eff.EffectType(), elapsed, err != nil)
	}
	return report
}

func (e *DefaultEffectExecutor) executeOne(ctx context.Context, scope ClickScope, eff effects.Effect, report *ExecutionReport) error {
	switch typed := eff.(type) {
	case effects.EditOriginEffect:
		return e.executeEdit(ctx, scope, typed)
	case effects.SendAnswerEffect:
		return e.executeAnswer(ctx, typed)
	case effects.SendReplacementEffect:
		return e.executeReplacement(ctx, scope, typed, report)
	case effects.DeleteOriginEffect:
		return e.executeDelete(ctx, typed, report)
	case effects.PersistStateEffect:
		return e.messages.UpdateState(ctx, typed.ChannelID, typed.MessageID, typed.State)
	default:
		return fmt.Errorf("unknown effect type: %T", eff)
	}
}

func (e *DefaultEffectExecutor) executeEdit(ctx context.Context, scope ClickScope, eff effects.EditOriginEffect) error {
	msg := toOutbound(eff.Content, eff.Rows)
	if scope.Responder == nil {
		return e.chat.EditMessage(ctx, scope.ChannelID, scope.MessageID, msg)
	}
	return scope.Responder.UpdateOrigin(ctx, msg)
}

func (e *DefaultEffectExecutor) executeAnswer(ctx context.Context, eff effects.SendAnswerEffect) error {
	var content string
	result, err := e.dice.Roll(eff.Expression)
	if err != nil {
		content = interaction.FormatRollError(eff.Label, eff.Expression, err)
	} else {
		content = interaction.FormatAnswer(interaction.AnswerFormat(eff.Format), eff.Label, eff.Expression, result.Total, result.Detail)
	}

	_, err = e.chat.SendMessage(ctx, eff.ChannelID, secondary.OutboundMessage{Content: content})
	return err
}

func (e *DefaultEffectExecutor) executeReplacement(ctx context.Context, scope ClickScope, eff effects.SendReplacementEffect, report *ExecutionReport) error {
	report.replacementMissing = true
	delay, err := e.throttle.Wait(ctx, scope.MessageCreatedAt)
	if delay > 0 {
		e.metrics.ThrottleDelayed(delay)
	}
	if err != nil {
		return fmt.Errorf("replacement wait interrupted: %w", err)
	}

	messageID, err := e.chat.SendMessage(ctx, eff.ChannelID, toOutbound(eff.Content, eff.Rows))
	if err != nil {
		return err
	}
	report.ReplacementID = messageID
	report.replacementMissing = false

	err = e.tracker.RegisterActive(ctx, &secondary.MessageRecord{
		ConfigID:    eff.ConfigID,
		GuildID:     eff.GuildID,
		ChannelID:   eff.ChannelID,
		MessageID:   messageID,
		CommandKind: eff.Kind,
	})
	if err != nil {
		return err
	}

	reaped, err := e.tracker.ReapOthers(ctx, eff.ConfigID, eff.ChannelID, messageID, eff.ExcludeMessageID)
	report.Reaped = append(report.Reaped, reaped...)
	return err
}

func (e *DefaultEffectExecutor) executeDelete(ctx context.Context, eff effects.DeleteOriginEffect, report *ExecutionReport) error {
	if report.replacementMissing {
		return e.restoreOrigin(ctx, eff)
	}
	err := e.chat.DeleteMessage(ctx, eff.ChannelID, eff.MessageID)
	if err != nil && !errors.Is(err, secondary.ErrMessageGone) {
		return err
	}
	return e.messages.MarkDeleted(ctx, eff.ChannelID, eff.MessageID, time.Now())
}

// restoreOrigin keeps the clicked message as the live one for its
// configuration: fresh buttons, cleared state.
func (e *DefaultEffectExecutor) restoreOrigin(ctx context.Context, eff effects.DeleteOriginEffect) error {
	e.logger.WarnContext(ctx, "replacement not posted, keeping origin",
		"channel_id", eff.ChannelID, "message_id", eff.MessageID)
	if err := e.chat.EditMessage(ctx, eff.ChannelID, eff.MessageID, toOutbound(eff.RestoreContent, eff.RestoreRows)); err != nil {
		return fmt.Errorf("failed to restore origin: %w", err)
	}
	return e.messages.UpdateState(ctx, eff.ChannelID, eff.MessageID, nil)
}

func (e *DefaultEffectExecutor) executeLog(ctx context.Context, eff effects.LogEffect) {
	attrs := make([]any, 0, 2*len(eff.Fields))
	for k, v := range eff.Fields {
		attrs = append(attrs, k, v)
	}
	e.logger.Log(ctx, logging.ParseLevel(eff.Level), eff.Message, attrs...)
}

// toOutbound converts rendered rows into the chat port's message shape.
// Nil rows stay nil so the edit removes all buttons.
func toOutbound(content string, rows []effects.Row) secondary.OutboundMessage {
	msg := secondary.OutboundMessage{Content: content}
	if rows == nil {
		return msg
	}
	msg.Rows = make([]secondary.ComponentRow, 0, len(rows))
	for _, row := range rows {
		out := secondary.ComponentRow{Buttons: make([]secondary.ComponentButton, 0, len(row.Buttons))}
		for _, b := range row.Buttons {
			out.Buttons = append(out.Buttons, secondary.ComponentButton{CustomID: b.CustomID, Label: b.Label, Style: string(b.Style)})
		}
		msg.Rows = append(msg.Rows, out)
	}
	return msg
}
