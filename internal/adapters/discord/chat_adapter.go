// Package discord implements the chat ports on top of discordgo.
package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/example/dicebot/internal/ports/secondary"
)

// restClient is the part of *discordgo.Session the adapters call.
type restClient interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// NewSession creates a bot session for token without connecting it.
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages
	return session, nil
}

// ChatAdapter implements secondary.ChatAdapter over the Discord REST API.
type ChatAdapter struct {
	rest restClient
}

// NewChatAdapter creates a new ChatAdapter.
func NewChatAdapter(session *discordgo.Session) *ChatAdapter {
	return &ChatAdapter{rest: session}
}

func (a *ChatAdapter) SendMessage(ctx context.Context, channelID string, msg secondary.OutboundMessage) (string, error) {
	sent, err := a.rest.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    msg.Content,
		Components: toComponents(msg.Rows),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to send message to %s: %w", channelID, mapError(err))
	}
	return sent.ID, nil
}

func (a *ChatAdapter) EditMessage(ctx context.Context, channelID, messageID string, msg secondary.OutboundMessage) error {
	content := msg.Content
	components := toComponents(msg.Rows)
	_, err := a.rest.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         messageID,
		Channel:    channelID,
		Content:    &content,
		Components: &components,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to edit message %s: %w", messageID, mapError(err))
	}
	return nil
}

func (a *ChatAdapter) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	if err := a.rest.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to delete message %s: %w", messageID, mapError(err))
	}
	return nil
}

// GetMessagesState fetches each message. Unknown messages are reported as
// not existing; any other failure aborts so nothing is deleted on a guess.
func (a *ChatAdapter) GetMessagesState(ctx context.Context, channelID string, messageIDs []string) ([]secondary.MessageState, error) {
	states := make([]secondary.MessageState, 0, len(messageIDs))
	for _, id := range messageIDs {
		msg, err := a.rest.ChannelMessage(channelID, id, discordgo.WithContext(ctx))
		if err != nil {
			if errors.Is(mapError(err), secondary.ErrMessageGone) {
				states = append(states, secondary.MessageState{MessageID: id})
				continue
			}
			return nil, fmt.Errorf("failed to fetch message %s: %w", id, err)
		}
		states = append(states, secondary.MessageState{
			MessageID: id,
			Exists:    true,
			Pinned:    msg.Pinned,
			Deletable: deletableType(msg.Type),
			CreatedAt: msg.Timestamp,
		})
	}
	return states, nil
}

// deletableType reports whether messages of type t are regular messages.
// System messages such as pin notices or thread starters are never reaped.
func deletableType(t discordgo.MessageType) bool {
	switch t {
	case discordgo.MessageTypeDefault,
		discordgo.MessageTypeReply,
		discordgo.MessageTypeChatInputCommand,
		discordgo.MessageTypeContextMenuCommand:
		return true
	default:
		return false
	}
}

// mapError turns Discord's unknown-message responses into ErrMessageGone.
func mapError(err error) error {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return err
	}
	if restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownMessage {
		return fmt.Errorf("%w: %v", secondary.ErrMessageGone, err)
	}
	if restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %v", secondary.ErrMessageGone, err)
	}
	return err
}

// toComponents converts rows to action rows. No rows yields an empty,
// non-nil slice so edits clear every button.
func toComponents(rows []secondary.ComponentRow) []discordgo.MessageComponent {
	components := make([]discordgo.MessageComponent, 0, len(rows))
	for _, row := range rows {
		buttons := make([]discordgo.MessageComponent, 0, len(row.Buttons))
		for _, b := range row.Buttons {
			buttons = append(buttons, discordgo.Button{
				CustomID: b.CustomID,
				Label:    b.Label,
				Style:    buttonStyle(b.Style),
			})
		}
		components = append(components, discordgo.ActionsRow{Components: buttons})
	}
	return components
}

func buttonStyle(style string) discordgo.ButtonStyle {
	switch style {
	case "primary":
		return discordgo.PrimaryButton
	case "success":
		return discordgo.SuccessButton
	case "danger":
		return discordgo.DangerButton
	default:
		return discordgo.SecondaryButton
	}
}

var _ secondary.ChatAdapter = (*ChatAdapter)(nil)
