// Package interaction contains the pure model of a button-driven command:
// configurations, per-message state, the capability interface every command
// kind implements, the kind registry and the click planner.
//
// This is part of the Functional Core - no I/O, only pure functions.
package interaction

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/example/dicebot/internal/core/effects"
)

// CommandKind identifies a command kind. It is the first token segment.
type CommandKind string

// AnswerFormat controls how much detail an answer message shows.
type AnswerFormat string

const (
	FormatFull    AnswerFormat = "full"
	FormatCompact AnswerFormat = "compact"
	FormatMinimal AnswerFormat = "minimal"
)

// ValidFormat reports whether f is a known answer format. Empty means full.
func ValidFormat(f AnswerFormat) bool {
	switch f {
	case "", FormatFull, FormatCompact, FormatMinimal:
		return true
	}
	return false
}

// Configuration is the immutable setup of one command instance.
type Configuration struct {
	ID              string       `json:"-"`
	Kind            CommandKind  `json:"kind"`
	Body            string       `json:"body"`
	AnswerFormat    AnswerFormat `json:"answer_format,omitempty"`
	TargetChannelID string       `json:"target_channel_id,omitempty"`
	Locale          string       `json:"locale,omitempty"`
}

// State is the per-message progress through a command's flow, stored as
// positional fields described by the kind's token schema. "" marks an absent field.
type State struct {
	Fields []string `json:"fields,omitempty"`
}

// Field returns field i, or "" when the state is shorter.
func (s State) Field(i int) string {
	if i < 0 || i >= len(s.Fields) {
		return ""
	}
	return s.Fields[i]
}

// IsEmpty reports whether no field is set.
func (s State) IsEmpty() bool {
	for _, f := range s.Fields {
		if f != "" {
			return false
		}
	}
	return true
}

// Equal compares two states ignoring trailing empty fields.
func (s State) Equal(other State) bool {
	a, b := s.Fields, other.Fields
	for len(a) > 0 && a[len(a)-1] == "" {
		a = a[:len(a)-1]
	}
	for len(b) > 0 && b[len(b)-1] == "" {
		b = b[:len(b)-1]
	}
	return slices.Equal(a, b)
}

// With returns a copy of s of length n with field i set to v.
func (s State) With(n, i int, v string) State {
	fields := make([]string, max(n, len(s.Fields)))
	copy(fields, s.Fields)
	fields[i] = v
	return State{Fields: fields}
}

// Answer is a roll the command wants posted.
type Answer struct {
	Expression string
	Label      string
}

// Button is a clickable choice before token encoding.
type Button struct {
	Value string
	Label string
	Style effects.ButtonStyle
}

// Row is one row of buttons.
type Row struct {
	Buttons []Button
}

// Message is a button message before token encoding.
type Message struct {
	Content string
	Rows    []Row
}

// MarshalConfig serializes a configuration for the config store.
func MarshalConfig(cfg Configuration) (string, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal configuration: %w", err)
	}
	return string(data), nil
}

// UnmarshalConfig restores a stored configuration and attaches its id.
func UnmarshalConfig(id, serialized string) (Configuration, error) {
	var cfg Configuration
	if err := json.Unmarshal([]byte(serialized), &cfg); err != nil {
		return Configuration{}, fmt.Errorf("failed to unmarshal configuration %s: %w", id, err)
	}
	cfg.ID = id
	return cfg, nil
}

// MarshalState serializes a state for the message record. An empty state is stored as nil.
func MarshalState(s State) (*string, error) {
	if s.IsEmpty() {
		return nil, nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}
	out := string(data)
	return &out, nil
}

// UnmarshalState restores a stored state. A nil or empty value is the empty state.
func UnmarshalState(serialized *string) (State, error) {
	if serialized == nil || *serialized == "" {
		return State{}, nil
	}
	var s State
	if err := json.Unmarshal([]byte(*serialized), &s); err != nil {
		return State{}, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return s, nil
}
