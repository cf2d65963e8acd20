package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/dicebot/internal/apperrors"
	"github.com/example/dicebot/internal/core/lifecycle"
	"github.com/example/dicebot/internal/ports/secondary"
)

// LifecycleTracker registers live button messages and reaps the ones a newer
// message replaced.
type LifecycleTracker struct {
	messages secondary.MessageRepository
	chat     secondary.ChatAdapter
	metrics  secondary.Metrics
	logger   *slog.Logger
	inFlight sync.Map // channelID:messageID -> struct{}
	now      func() time.Time
}

// NewLifecycleTracker creates a tracker.
func NewLifecycleTracker(messages secondary.MessageRepository, chat secondary.ChatAdapter, metrics secondary.Metrics, logger *slog.Logger) *LifecycleTracker {
	return &LifecycleTracker{
		messages: messages,
		chat:     chat,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// RegisterActive records a freshly posted button message as live.
func (t *LifecycleTracker) RegisterActive(ctx context.Context, record *secondary.MessageRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = t.now()
	}
	created, err := t.messages.Create(ctx, record)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeTransientAdapter, "failed to register message", err)
	}
	if !created {
		t.logger.DebugContext(ctx, "message already registered", "message_id", record.MessageID)
	}
	return nil
}

// ReapOthers removes every live message of configID except keepID and
// excludeID. Each candidate's live state is checked right before acting on it:
// messages already gone are only tombstoned, pinned messages and messages
// without a known creation time are left alone, all others are deleted and
// then tombstoned. It returns the ids it reaped and the first failure.
func (t *LifecycleTracker) ReapOthers(ctx context.Context, configID, channelID, keepID, excludeID string) ([]string, error) {
	active, err := t.messages.ListActiveMessageIDs(ctx, configID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeTransientAdapter, "failed to list active messages", err)
	}

	candidates := lifecycle.SelectCandidates(active, keepID, excludeID, func(id string) bool {
		_, busy := t.inFlight.Load(flightKey(channelID, id))
		return busy
	})
	claimed := t.claim(channelID, candidates)
	if len(claimed) == 0 {
		return nil, nil
	}
	defer t.release(channelID, claimed)

	if len(claimed) > lifecycle.SuspiciousCandidateCount {
		t.logger.WarnContext(ctx, "unusually many live messages for one configuration",
			"config_id", configID, "channel_id", channelID, "candidates", len(claimed))
	}

	states, err := t.chat.GetMessagesState(ctx, channelID, claimed)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeTransientAdapter, "failed to fetch message states", err)
	}

	var (
		reaped   []string
		firstErr error
		counts   = map[lifecycle.Action]int{}
	)
	for _, d := range lifecycle.PlanReap(liveStates(claimed, states)) {
		switch d.Action {
		case lifecycle.ActionDelete:
			if err := t.chat.DeleteMessage(ctx, channelID, d.MessageID); err != nil && !errors.Is(err, secondary.ErrMessageGone) {
				t.logger.WarnContext(ctx, "failed to delete stale message", "message_id", d.MessageID, "error", err)
				if firstErr == nil {
					firstErr = apperrors.Wrap(apperrors.CodeTransientAdapter, fmt.Sprintf("failed to delete message %s", d.MessageID), err)
				}
				continue
			}
			fallthrough
		case lifecycle.ActionTombstone:
			if err := t.messages.MarkDeleted(ctx, channelID, d.MessageID, t.now()); err != nil {
				t.logger.WarnContext(ctx, "failed to tombstone message", "message_id", d.MessageID, "error", err)
				if firstErr == nil {
					firstErr = apperrors.Wrap(apperrors.CodeTransientAdapter, fmt.Sprintf("failed to tombstone message %s", d.MessageID), err)
				}
				continue
			}
			reaped = append(reaped, d.MessageID)
		case lifecycle.ActionLeave:
			t.logger.DebugContext(ctx, "leaving message in place", "message_id", d.MessageID)
		}
		counts[d.Action]++
	}

	for action, n := range counts {
		t.metrics.MessagesReaped(string(action), n)
	}
	return reaped, firstErr
}

// claim marks ids as being reaped by this call and returns those no other
// call had already claimed.
func (t *LifecycleTracker) claim(channelID string, ids []string) []string {
	claimed := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, loaded := t.inFlight.LoadOrStore(flightKey(channelID, id), struct{}{}); !loaded {
			claimed = append(claimed, id)
		}
	}
	return claimed
}

func (t *LifecycleTracker) release(channelID string, ids []string) {
	for _, id := range ids {
		t.inFlight.Delete(flightKey(channelID, id))
	}
}

func flightKey(channelID, messageID string) string {
	return channelID + ":" + messageID
}

// liveStates matches reported states to ids. An id the chat surface did not
// report on counts as existing with an unknown creation time, so it is left alone.
func liveStates(ids []string, states []secondary.MessageState) []lifecycle.LiveState {
	byID := make(map[string]secondary.MessageState, len(states))
	for _, s := range states {
		byID[s.MessageID] = s
	}

	out := make([]lifecycle.LiveState, 0, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			out = append(out, lifecycle.LiveState{MessageID: id, Exists: true})
			continue
		}
		out = append(out, lifecycle.LiveState{
			MessageID: id,
			Exists:    s.Exists,
			Pinned:    s.Pinned,
			Deletable: s.Deletable,
			CreatedAt: s.CreatedAt,
		})
	}
	return out
}
