package discord

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/example/dicebot/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// mockRest implements restClient for testing.
type mockRest struct {
	sent      []*discordgo.MessageSend
	edits     []*discordgo.MessageEdit
	deleted   []string
	responses []*discordgo.InteractionResponse
	followups []*discordgo.WebhookParams
	messages  map[string]*discordgo.Message
	deleteErr error
	fetchErr  error
}

func (m *mockRest) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.sent = append(m.sent, data)
	return &discordgo.Message{ID: "900", ChannelID: channelID}, nil
}

func (m *mockRest) ChannelMessageEditComplex(edit *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.edits = append(m.edits, edit)
	return &discordgo.Message{ID: edit.ID}, nil
}

func (m *mockRest) ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error {
	m.deleted = append(m.deleted, messageID)
	return m.deleteErr
}

func (m *mockRest) ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	if msg, ok := m.messages[messageID]; ok {
		return msg, nil
	}
	return nil, unknownMessage()
}

func (m *mockRest) InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error {
	m.responses = append(m.responses, resp)
	return nil
}

func (m *mockRest) FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.followups = append(m.followups, data)
	return &discordgo.Message{}, nil
}

func unknownMessage() error {
	return &discordgo.RESTError{
		Response: &http.Response{Status: "404 Not Found", StatusCode: http.StatusNotFound},
		Message:  &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownMessage, Message: "Unknown Message"},
	}
}

func forbidden() error {
	return &discordgo.RESTError{
		Response: &http.Response{Status: "403 Forbidden", StatusCode: http.StatusForbidden},
		Message:  &discordgo.APIErrorMessage{Code: discordgo.ErrCodeMissingPermissions, Message: "Missing Permissions"},
	}
}

var _ restClient = (*mockRest)(nil)

// ============================================================================
// Tests
// ============================================================================

func testRows() []secondary.ComponentRow {
	return []secondary.ComponentRow{{Buttons: []secondary.ComponentButton{
		{CustomID: "quick_roll\u001e1d6\u001eEMPTY", Label: "d6", Style: "primary"},
		{CustomID: "custom_parameter\u001eclear\u001eEMPTY", Label: "Clear", Style: "danger"},
	}}}
}

func TestSendMessage(t *testing.T) {
	rest := &mockRest{}
	adapter := &ChatAdapter{rest: rest}

	id, err := adapter.SendMessage(context.Background(), "chan-1", secondary.OutboundMessage{Content: "Quick roll", Rows: testRows()})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if id != "900" {
		t.Errorf("expected id 900, got %q", id)
	}

	sent := rest.sent[0]
	if sent.Content != "Quick roll" || len(sent.Components) != 1 {
		t.Fatalf("unexpected message %+v", sent)
	}
	row, ok := sent.Components[0].(discordgo.ActionsRow)
	if !ok || len(row.Components) != 2 {
		t.Fatalf("expected one action row with two buttons, got %+v", sent.Components[0])
	}
	button := row.Components[1].(discordgo.Button)
	if button.Style != discordgo.DangerButton || button.Label != "Clear" {
		t.Errorf("unexpected button %+v", button)
	}
}

func TestEditMessageWithoutRowsClearsButtons(t *testing.T) {
	rest := &mockRest{}
	adapter := &ChatAdapter{rest: rest}

	if err := adapter.EditMessage(context.Background(), "chan-1", "50", secondary.OutboundMessage{Content: "processing ..."}); err != nil {
		t.Fatalf("EditMessage failed: %v", err)
	}

	edit := rest.edits[0]
	if edit.ID != "50" || edit.Channel != "chan-1" || *edit.Content != "processing ..." {
		t.Errorf("unexpected edit %+v", edit)
	}
	if edit.Components == nil || *edit.Components == nil || len(*edit.Components) != 0 {
		t.Errorf("expected an explicit empty component list, got %v", edit.Components)
	}
}

func TestDeleteMessageErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantGone bool
		wantErr  bool
	}{
		{"deleted", nil, false, false},
		{"already gone", unknownMessage(), true, true},
		{"missing permissions", forbidden(), false, true},
		{"network", errors.New("connection reset"), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := &ChatAdapter{rest: &mockRest{deleteErr: tt.err}}

			err := adapter.DeleteMessage(context.Background(), "chan-1", "50")

			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if errors.Is(err, secondary.ErrMessageGone) != tt.wantGone {
				t.Errorf("expected gone %v, got %v", tt.wantGone, err)
			}
		})
	}
}

func TestGetMessagesState(t *testing.T) {
	created := time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC)
	rest := &mockRest{messages: map[string]*discordgo.Message{
		"a": {ID: "a", Timestamp: created},
		"b": {ID: "b", Timestamp: created, Pinned: true},
		"d": {ID: "d", Timestamp: created, Type: discordgo.MessageTypeChannelPinnedMessage},
	}}
	adapter := &ChatAdapter{rest: rest}

	states, err := adapter.GetMessagesState(context.Background(), "chan-1", []string{"a", "b", "c", "d"})
	if err != nil {
		t.Fatalf("GetMessagesState failed: %v", err)
	}

	want := []secondary.MessageState{
		{MessageID: "a", Exists: true, Deletable: true, CreatedAt: created},
		{MessageID: "b", Exists: true, Pinned: true, Deletable: true, CreatedAt: created},
		{MessageID: "c"},
		{MessageID: "d", Exists: true, CreatedAt: created},
	}
	if len(states) != len(want) {
		t.Fatalf("expected %d states, got %d", len(want), len(states))
	}
	for i := range want {
		if states[i] != want[i] {
			t.Errorf("state %d: expected %+v, got %+v", i, want[i], states[i])
		}
	}
}

func TestGetMessagesStateAbortsOnOtherErrors(t *testing.T) {
	adapter := &ChatAdapter{rest: &mockRest{fetchErr: forbidden()}}

	if _, err := adapter.GetMessagesState(context.Background(), "chan-1", []string{"a"}); err == nil {
		t.Error("expected an error when a message state cannot be known")
	}
}

func TestInteractionResponder(t *testing.T) {
	rest := &mockRest{}
	interaction := &discordgo.Interaction{ChannelID: "chan-1", Message: &discordgo.Message{ID: "50"}}
	responder := NewInteractionResponder(rest, interaction)

	if err := responder.UpdateOrigin(context.Background(), secondary.OutboundMessage{Content: "first", Rows: testRows()}); err != nil {
		t.Fatalf("UpdateOrigin failed: %v", err)
	}
	if err := responder.UpdateOrigin(context.Background(), secondary.OutboundMessage{Content: "second"}); err != nil {
		t.Fatalf("second UpdateOrigin failed: %v", err)
	}
	if err := responder.Reply(context.Background(), "hello"); err != nil {
		t.Fatalf("Reply failed: %v", err)
	}

	if len(rest.responses) != 1 || rest.responses[0].Type != discordgo.InteractionResponseUpdateMessage {
		t.Fatalf("expected exactly one update response, got %+v", rest.responses)
	}
	if len(rest.edits) != 1 || *rest.edits[0].Content != "second" || rest.edits[0].ID != "50" {
		t.Errorf("expected the second update as a message edit, got %+v", rest.edits)
	}
	if len(rest.followups) != 1 || rest.followups[0].Flags != discordgo.MessageFlagsEphemeral {
		t.Errorf("expected an ephemeral followup, got %+v", rest.followups)
	}
}

func TestInteractionResponderReplyFirst(t *testing.T) {
	rest := &mockRest{}
	responder := NewInteractionResponder(rest, &discordgo.Interaction{})

	if err := responder.Reply(context.Background(), "This button is no longer supported"); err != nil {
		t.Fatalf("Reply failed: %v", err)
	}

	resp := rest.responses[0]
	if resp.Type != discordgo.InteractionResponseChannelMessageWithSource || resp.Data.Flags != discordgo.MessageFlagsEphemeral {
		t.Errorf("expected an ephemeral reply, got %+v", resp)
	}
}

func TestClickEvent(t *testing.T) {
	created := time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC)
	data := discordgo.MessageComponentInteractionData{CustomID: "quick_roll\u001e1d6\u001eEMPTY", ComponentType: discordgo.ButtonComponent}

	tests := []struct {
		name      string
		i         *discordgo.Interaction
		wantActor string
		wantMsg   string
	}{
		{
			name: "guild member",
			i: &discordgo.Interaction{
				Type: discordgo.InteractionMessageComponent, GuildID: "g1", ChannelID: "c1", Locale: discordgo.German, Data: data,
				Member:  &discordgo.Member{User: &discordgo.User{ID: "u1"}},
				Message: &discordgo.Message{ID: "m1", Timestamp: created, Pinned: true},
			},
			wantActor: "u1",
			wantMsg:   "m1",
		},
		{
			name:      "direct message user without message",
			i:         &discordgo.Interaction{Type: discordgo.InteractionMessageComponent, ChannelID: "c1", Data: data, User: &discordgo.User{ID: "u2"}},
			wantActor: "u2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := ClickEvent(tt.i, nil)

			if event.ActorID != tt.wantActor || event.MessageID != tt.wantMsg {
				t.Errorf("unexpected actor/message %q/%q", event.ActorID, event.MessageID)
			}
			if event.CustomID != data.CustomID {
				t.Errorf("expected custom id to be carried, got %q", event.CustomID)
			}
			if event.Responder != nil {
				t.Error("expected no responder")
			}
		})
	}

	event := ClickEvent(tests[0].i, nil)
	if event.Locale != "de" || !event.Pinned || !event.MessageCreatedAt.Equal(created) || event.GuildID != "g1" {
		t.Errorf("unexpected event %+v", event)
	}
}

func TestButtonStyle(t *testing.T) {
	tests := map[string]discordgo.ButtonStyle{
		"primary":   discordgo.PrimaryButton,
		"secondary": discordgo.SecondaryButton,
		"success":   discordgo.SuccessButton,
		"danger":    discordgo.DangerButton,
		"":          discordgo.SecondaryButton,
	}
	for in, want := range tests {
		if got := buttonStyle(in); got != want {
			t.Errorf("buttonStyle(%q) = %v, want %v", in, got, want)
		}
	}
}
