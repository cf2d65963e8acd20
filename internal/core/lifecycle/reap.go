// Package lifecycle contains the pure decisions behind reaping stale
// interactive messages. The tracker in the app layer fetches live state and
// executes what these functions decide.
package lifecycle

import "time"

// Action is what the tracker does with one reap candidate.
type Action string

const (
	// ActionDelete deletes the chat message and then tombstones its record.
	ActionDelete Action = "delete"
	// ActionTombstone only tombstones the record; the message is already gone.
	ActionTombstone Action = "tombstone"
	// ActionLeave leaves both message and record untouched.
	ActionLeave Action = "leave"
)

// SuspiciousCandidateCount is the candidate count above which a reap is
// logged as unusual. A healthy configuration has one or two live messages.
const SuspiciousCandidateCount = 5

// LiveState is the current state of a candidate as reported by the chat surface.
type LiveState struct {
	MessageID string
	Exists    bool
	Pinned    bool
	Deletable bool
	CreatedAt time.Time // zero when unknown
}

// Decision pairs a candidate with the action to take.
type Decision struct {
	MessageID string
	Action    Action
}

// SelectCandidates returns the active ids eligible for reaping: everything
// except the message being kept, the excluded message, duplicates and ids
// another reap already has in flight. Order is preserved.
func SelectCandidates(active []string, keepID, excludeID string, inFlight func(string) bool) []string {
	seen := make(map[string]bool, len(active))
	out := make([]string, 0, len(active))
	for _, id := range active {
		if id == "" || id == keepID || id == excludeID || seen[id] {
			continue
		}
		seen[id] = true
		if inFlight != nil && inFlight(id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// Decide maps a live state onto a reap action. Deletes are irreversible, so
// anything short of an existing, unpinned, deletable message with a known
// creation time is left alone.
func Decide(s LiveState) Action {
	switch {
	case !s.Exists:
		return ActionTombstone
	case s.Pinned, !s.Deletable:
		return ActionLeave
	case s.CreatedAt.IsZero():
		return ActionLeave
	default:
		return ActionDelete
	}
}

// PlanReap decides every candidate in order.
func PlanReap(states []LiveState) []Decision {
	out := make([]Decision, 0, len(states))
	for _, s := range states {
		out = append(out, Decision{MessageID: s.MessageID, Action: Decide(s)})
	}
	return out
}
