package primary

import (
	"context"
	"time"

	"github.com/example/dicebot/internal/ports/secondary"
)

// InteractionService defines the primary port for handling button clicks.
type InteractionService interface {
	// HandleClick resolves, advances and orchestrates one click. Partial
	// completion is reported through the result; the error is the first
	// failure, if any.
	HandleClick(ctx context.Context, event ClickEvent) (*ClickResult, error)
}

// ClickEvent is an inbound button click.
type ClickEvent struct {
	GuildID          string
	ChannelID        string
	MessageID        string
	ActorID          string
	CustomID         string
	Locale           string
	MessageCreatedAt time.Time
	Pinned           bool
	Responder        secondary.Responder
}

// ClickOutcome classifies how a click ended.
type ClickOutcome string

const (
	OutcomeCompleted ClickOutcome = "completed"
	OutcomePartial   ClickOutcome = "partial"
	OutcomeLegacy    ClickOutcome = "legacy"
	OutcomeNotFound  ClickOutcome = "not_found"
	OutcomeFailed    ClickOutcome = "failed"
)

// ClickResult reports what happened to a click.
type ClickResult struct {
	InteractionID      string
	Kind               string
	ConfigID           string
	Outcome            ClickOutcome
	Terminal           bool
	ReplacementID      string
	ReapedMessageIDs   []string
	Timing             Timing
	SuppressedFailures []string
}

// Timing is the timing record of one click.
type Timing struct {
	Started time.Time
	Total   time.Duration
	Steps   []StepTiming
}

// StepTiming is the duration and result of one orchestration step.
type StepTiming struct {
	Step     string
	Duration time.Duration
	Err      error
}
