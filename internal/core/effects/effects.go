// Package effects defines effect types as data structures representing I/O operations.
// This is the foundation of the Functional Core / Imperative Shell pattern.
// Effects are pure data - they describe what should happen, not how.
package effects

// Effect is the base interface for all effects.
// Effects represent I/O operations as data that can be interpreted by the shell.
type Effect interface {
	// EffectType returns a string identifier for the effect type.
	EffectType() string
}

// ButtonStyle is the visual style of a rendered button.
type ButtonStyle string

const (
	StylePrimary   ButtonStyle = "primary"
	StyleSecondary ButtonStyle = "secondary"
	StyleSuccess   ButtonStyle = "success"
	StyleDanger    ButtonStyle = "danger"
)

// Button is a rendered clickable component. CustomID is an encoded token.
type Button struct {
	CustomID string
	Label    string
	Style    ButtonStyle
}

// Row is one horizontal row of buttons.
type Row struct {
	Buttons []Button
}

// EditOriginEffect acknowledges the click by editing the message that was clicked.
// A nil Rows removes all buttons from the message.
type EditOriginEffect struct {
	Content string
	Rows    []Row
}

func (e EditOriginEffect) EffectType() string { return "edit_origin" }

// SendAnswerEffect rolls Expression and posts the result as a new message.
type SendAnswerEffect struct {
	ChannelID  string
	Expression string
	Label      string
	Format     string // "full", "compact" or "minimal"
}

func (e SendAnswerEffect) EffectType() string { return "send_answer" }

// SendReplacementEffect posts a fresh button message for the next round,
// registers it as active and reaps every other live message of the
// configuration except ExcludeMessageID.
type SendReplacementEffect struct {
	GuildID          string
	ChannelID        string
	ConfigID         string
	Kind             string
	Content          string
	Rows             []Row
	ExcludeMessageID string
}

func (e SendReplacementEffect) EffectType() string { return "send_replacement" }

// DeleteOriginEffect deletes the clicked message and tombstones its record.
// It only runs once a replacement was posted in the same batch. Otherwise the
// origin is edited back to RestoreContent/RestoreRows and its state cleared.
type DeleteOriginEffect struct {
	ChannelID      string
	MessageID      string
	RestoreContent string
	RestoreRows    []Row
}

func (e DeleteOriginEffect) EffectType() string { return "delete_origin" }

// PersistStateEffect writes the serialized state onto the existing record.
// A nil State clears it.
type PersistStateEffect struct {
	ChannelID string
	MessageID string
	State     *string
}

func (e PersistStateEffect) EffectType() string { return "persist_state" }

// LogEffect represents a logging operation.
type LogEffect struct {
	Level   string
	Message string
	Fields  map[string]any
}

func (e LogEffect) EffectType() string { return "log" }
