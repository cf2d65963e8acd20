package interaction

import (
	"errors"
	"testing"
)

func TestFormatAnswer(t *testing.T) {
	tests := []struct {
		name   string
		format AnswerFormat
		label  string
		want   string
	}{
		{"full with label", FormatFull, "Attack", "Attack (1d20+5): 1d20[12] + 5 = **17**"},
		{"full without label", FormatFull, "", "1d20+5: 1d20[12] + 5 = **17**"},
		{"empty format is full", "", "", "1d20+5: 1d20[12] + 5 = **17**"},
		{"full label equal to expression", FormatFull, "1d20+5", "1d20+5: 1d20[12] + 5 = **17**"},
		{"compact with label", FormatCompact, "Attack", "Attack: **17**"},
		{"compact without label", FormatCompact, "", "1d20+5: **17**"},
		{"minimal", FormatMinimal, "Attack", "**17**"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatAnswer(tt.format, tt.label, "1d20+5", 17, "1d20[12] + 5")
			if got != tt.want {
				t.Errorf("FormatAnswer() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatRollError(t *testing.T) {
	got := FormatRollError("", "1d0", errors.New("invalid dice"))
	want := "1d0: could not roll `1d0` (invalid dice)"
	if got != want {
		t.Errorf("FormatRollError() = %q, want %q", got, want)
	}
}
