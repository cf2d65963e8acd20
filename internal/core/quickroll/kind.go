// Package quickroll implements the stateless quick-roll board. Its buttons
// carry the expression itself, so a click can be answered without any
// stored configuration.
package quickroll

import (
	"regexp"

	"github.com/example/dicebot/internal/apperrors"
	"github.com/example/dicebot/internal/core/interaction"
	"github.com/example/dicebot/internal/core/token"
)

// Name is the command kind carried in tokens.
const Name interaction.CommandKind = "quick_roll"

var dice = [][]string{
	{"1d4", "1d6", "1d8", "1d10"},
	{"1d12", "1d20", "1d100"},
}

var buttonPattern = regexp.MustCompile(`^[1-9][0-9]?d(4|6|8|10|12|20|100)$`)

// Kind implements interaction.Kind and interaction.FallbackProvider.
type Kind struct{}

// New creates the kind.
func New() *Kind {
	return &Kind{}
}

func (k *Kind) Name() interaction.CommandKind { return Name }

func (k *Kind) Schema() token.Schema { return token.Schema{} }

func (k *Kind) Validate(cfg interaction.Configuration) error {
	if cfg.Body != "" {
		return apperrors.Validation("body", "quick roll takes no body")
	}
	return nil
}

// Fallback builds a configuration for any button value this kind could have rendered.
func (k *Kind) Fallback(buttonValue string) (interaction.Configuration, bool) {
	if !buttonPattern.MatchString(buttonValue) {
		return interaction.Configuration{}, false
	}
	return interaction.Configuration{Kind: Name, AnswerFormat: interaction.FormatCompact}, true
}

func (k *Kind) InitialMessage(interaction.Configuration) interaction.Message {
	msg := interaction.Message{Content: "Quick roll"}
	for _, row := range dice {
		r := interaction.Row{}
		for _, expr := range row {
			r.Buttons = append(r.Buttons, interaction.Button{Value: expr, Label: expr[1:]})
		}
		msg.Rows = append(msg.Rows, r)
	}
	return msg
}

func (k *Kind) ApplyButton(_ interaction.Configuration, prior interaction.State, buttonValue, _ string) interaction.State {
	if !buttonPattern.MatchString(buttonValue) {
		return prior
	}
	return interaction.State{Fields: []string{buttonValue}}
}

func (k *Kind) IsTerminal(_ interaction.Configuration, s interaction.State) bool {
	return buttonPattern.MatchString(s.Field(0))
}

func (k *Kind) RenderAnswer(cfg interaction.Configuration, s interaction.State) *interaction.Answer {
	if !k.IsTerminal(cfg, s) {
		return nil
	}
	return &interaction.Answer{Expression: s.Field(0), Label: s.Field(0)}
}

func (k *Kind) ContentOverride(interaction.Configuration, interaction.State) (string, bool) {
	return "", false
}

func (k *Kind) ComponentsOverride(interaction.Configuration, interaction.State) ([]interaction.Row, bool) {
	return nil, false
}

func (k *Kind) WantsReplacement(cfg interaction.Configuration, s interaction.State) bool {
	return k.IsTerminal(cfg, s)
}

var (
	_ interaction.Kind             = (*Kind)(nil)
	_ interaction.FallbackProvider = (*Kind)(nil)
)
