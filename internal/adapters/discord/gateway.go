package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/example/dicebot/internal/apperrors"
	"github.com/example/dicebot/internal/ports/primary"
)

// clickTimeout bounds one click's orchestration, throttle wait included.
const clickTimeout = 30 * time.Second

// Gateway receives component interactions and hands them to the interaction service.
type Gateway struct {
	session *discordgo.Session
	service primary.InteractionService
	logger  *slog.Logger
}

// NewGateway creates a gateway on session.
func NewGateway(session *discordgo.Session, service primary.InteractionService, logger *slog.Logger) *Gateway {
	return &Gateway{session: session, service: service, logger: logger}
}

// Run connects and dispatches clicks until ctx is done. In-flight clicks see
// ctx cancelled, which also cancels any throttle wait.
func (g *Gateway) Run(ctx context.Context) error {
	remove := g.session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		g.handleInteraction(ctx, s, i)
	})
	defer remove()

	if err := g.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord gateway: %w", err)
	}
	g.logger.Info("discord gateway connected")

	<-ctx.Done()
	if err := g.session.Close(); err != nil {
		return fmt.Errorf("failed to close discord gateway: %w", err)
	}
	return nil
}

func (g *Gateway) handleInteraction(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, clickTimeout)
	defer cancel()

	event := ClickEvent(i.Interaction, NewInteractionResponder(s, i.Interaction))
	_, err := g.service.HandleClick(ctx, event)
	if err != nil && !errors.Is(err, context.Canceled) {
		g.logger.DebugContext(ctx, "click finished with error",
			"custom_id", event.CustomID, "code", apperrors.CodeOf(err), "error", err)
	}
}

// ClickEvent builds the engine's click from a component interaction.
func ClickEvent(i *discordgo.Interaction, responder *InteractionResponder) primary.ClickEvent {
	event := primary.ClickEvent{
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		Locale:    string(i.Locale),
		CustomID:  i.MessageComponentData().CustomID,
	}
	if responder != nil {
		event.Responder = responder
	}
	switch {
	case i.Member != nil && i.Member.User != nil:
		event.ActorID = i.Member.User.ID
	case i.User != nil:
		event.ActorID = i.User.ID
	}
	if i.Message != nil {
		event.MessageID = i.Message.ID
		event.MessageCreatedAt = i.Message.Timestamp
		event.Pinned = i.Message.Pinned
	}
	return event
}
