package secondary

import (
	"context"
	"errors"
	"time"
)

// ErrMessageGone indicates the chat message no longer exists.
var ErrMessageGone = errors.New("message no longer exists")

// ChatAdapter defines the secondary port for the chat surface.
type ChatAdapter interface {
	// SendMessage posts a message and returns its id.
	SendMessage(ctx context.Context, channelID string, msg OutboundMessage) (string, error)

	// EditMessage replaces content and buttons of a message.
	EditMessage(ctx context.Context, channelID, messageID string, msg OutboundMessage) error

	// DeleteMessage deletes a message. It returns ErrMessageGone when the
	// message was already deleted.
	DeleteMessage(ctx context.Context, channelID, messageID string) error

	// GetMessagesState reports the live state of each message, in order.
	GetMessagesState(ctx context.Context, channelID string, messageIDs []string) ([]MessageState, error)
}

// Responder answers the interaction that delivered a click. It is bound to a
// single click and supplied by the inbound adapter.
type Responder interface {
	// UpdateOrigin acknowledges the click by editing the clicked message.
	UpdateOrigin(ctx context.Context, msg OutboundMessage) error

	// Reply sends a message only the clicking user sees.
	Reply(ctx context.Context, content string) error
}

// OutboundMessage is a message to post or an edit to apply. Nil Rows removes all buttons.
type OutboundMessage struct {
	Content string
	Rows    []ComponentRow
}

// ComponentRow is one row of buttons.
type ComponentRow struct {
	Buttons []ComponentButton
}

// ComponentButton is a clickable button carrying an encoded token.
type ComponentButton struct {
	CustomID string
	Label    string
	Style    string
}

// MessageState is the live state of a message on the chat surface.
type MessageState struct {
	MessageID string
	Exists    bool
	Pinned    bool
	Deletable bool      // false for system messages the bot may not remove
	CreatedAt time.Time // zero when unknown
}
