package discord

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/example/dicebot/internal/ports/secondary"
)

// InteractionResponder implements secondary.Responder for one component
// interaction. An interaction accepts a single initial response; later calls
// fall back to a plain message edit or an ephemeral followup.
type InteractionResponder struct {
	rest        restClient
	interaction *discordgo.Interaction

	mu        sync.Mutex
	responded bool
}

// NewInteractionResponder creates a responder bound to interaction.
func NewInteractionResponder(rest restClient, interaction *discordgo.Interaction) *InteractionResponder {
	return &InteractionResponder{rest: rest, interaction: interaction}
}

func (r *InteractionResponder) UpdateOrigin(ctx context.Context, msg secondary.OutboundMessage) error {
	if r.claim() {
		err := r.rest.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: &discordgo.InteractionResponseData{
				Content:    msg.Content,
				Components: toComponents(msg.Rows),
			},
		}, discordgo.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("failed to update clicked message: %w", mapError(err))
		}
		return nil
	}

	content := msg.Content
	components := toComponents(msg.Rows)
	_, err := r.rest.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         r.interaction.Message.ID,
		Channel:    r.interaction.ChannelID,
		Content:    &content,
		Components: &components,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to edit clicked message: %w", mapError(err))
	}
	return nil
}

func (r *InteractionResponder) Reply(ctx context.Context, content string) error {
	if r.claim() {
		err := r.rest.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: content,
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		}, discordgo.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("failed to reply to interaction: %w", err)
		}
		return nil
	}

	_, err := r.rest.FollowupMessageCreate(r.interaction, false, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to send followup: %w", err)
	}
	return nil
}

// claim reports whether the caller makes the initial response.
func (r *InteractionResponder) claim() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.responded {
		return false
	}
	r.responded = true
	return true
}

var _ secondary.Responder = (*InteractionResponder)(nil)
