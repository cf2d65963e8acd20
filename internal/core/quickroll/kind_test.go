package quickroll

import (
	"testing"

	"github.com/example/dicebot/internal/core/interaction"
)

func TestFallback(t *testing.T) {
	k := New()

	tests := []struct {
		value string
		want  bool
	}{
		{"1d20", true},
		{"2d6", true},
		{"1d7", false},
		{"0d6", false},
		{"1d20+5", false},
		{"", false},
	}
	for _, tt := range tests {
		cfg, ok := k.Fallback(tt.value)
		if ok != tt.want {
			t.Errorf("Fallback(%q) ok = %v, want %v", tt.value, ok, tt.want)
		}
		if ok && cfg.Kind != Name {
			t.Errorf("Fallback(%q) kind = %q", tt.value, cfg.Kind)
		}
	}
}

func TestEveryRenderedButtonIsAccepted(t *testing.T) {
	k := New()
	msg := k.InitialMessage(interaction.Configuration{})
	for _, row := range msg.Rows {
		for _, b := range row.Buttons {
			if _, ok := k.Fallback(b.Value); !ok {
				t.Errorf("rendered button %q has no fallback", b.Value)
			}
			state := k.ApplyButton(interaction.Configuration{}, interaction.State{}, b.Value, "1")
			answer := k.RenderAnswer(interaction.Configuration{}, state)
			if answer == nil || answer.Expression != b.Value {
				t.Errorf("button %q answered %+v", b.Value, answer)
			}
		}
	}
}

func TestValidate(t *testing.T) {
	k := New()
	if err := k.Validate(interaction.Configuration{}); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if err := k.Validate(interaction.Configuration{Body: "1d6"}); err == nil {
		t.Error("expected body to be rejected")
	}
}
