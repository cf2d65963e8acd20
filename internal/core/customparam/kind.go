package customparam

import (
	"fmt"
	"strings"

	"github.com/example/dicebot/internal/core/effects"
	"github.com/example/dicebot/internal/core/interaction"
	"github.com/example/dicebot/internal/core/token"
)

// Name is the command kind carried in tokens.
const Name interaction.CommandKind = "custom_parameter"

const (
	// ClearValue is the button value that restarts the flow.
	ClearValue = "clear"

	// skippedMarker fills parameters skipped by a direct roll.
	skippedMarker = "~"

	lockField     = 0
	firstValue    = 1
	stateLength   = 1 + MaxParameters
	buttonsPerRow = 5
)

var schema = token.Schema{Fields: []token.Field{
	{Name: "lock"},
	{Name: "value1"},
	{Name: "value2"},
	{Name: "value3"},
	{Name: "value4"},
}}

// Kind implements interaction.Kind for multi-step parameter collection.
type Kind struct {
	check interaction.ExpressionChecker
}

// New creates the kind. check validates filled expressions at creation time.
func New(check interaction.ExpressionChecker) *Kind {
	if check == nil {
		check = interaction.AcceptAll
	}
	return &Kind{check: check}
}

func (k *Kind) Name() interaction.CommandKind { return Name }

func (k *Kind) Schema() token.Schema { return schema }

// ApplyButton fills the next parameter with the clicked option and locks the
// flow to the first actor. Clear restarts; everything else that cannot
// advance returns prior unchanged.
func (k *Kind) ApplyButton(cfg interaction.Configuration, prior interaction.State, buttonValue, actorID string) interaction.State {
	tmpl, err := Parse(cfg.Body)
	if err != nil {
		return prior
	}
	if buttonValue == ClearValue {
		return interaction.State{}
	}
	if k.IsTerminal(cfg, prior) {
		return prior
	}

	lock := prior.Field(lockField)
	if lock != "" && lock != actorID {
		return prior
	}

	next := nextParameter(tmpl, prior)
	option, ok := tmpl.Parameters[next].Option(buttonValue)
	if !ok {
		return prior
	}

	return advance(tmpl, prior, next, option, actorID)
}

func (k *Kind) IsTerminal(cfg interaction.Configuration, s interaction.State) bool {
	tmpl, err := Parse(cfg.Body)
	if err != nil {
		return false
	}
	return nextParameter(tmpl, s) == len(tmpl.Parameters)
}

func (k *Kind) RenderAnswer(cfg interaction.Configuration, s interaction.State) *interaction.Answer {
	tmpl, err := Parse(cfg.Body)
	if err != nil || nextParameter(tmpl, s) != len(tmpl.Parameters) {
		return nil
	}

	values := selectedValues(tmpl, s)
	label := tmpl.Label
	if label == "" {
		parts := make([]string, 0, len(values))
		for i, v := range values {
			if v == "" {
				continue
			}
			shown := v
			if opt, ok := tmpl.Parameters[i].optionByValue(v); ok {
				shown = opt.Label
			}
			parts = append(parts, tmpl.Parameters[i].Name+": "+shown)
		}
		label = strings.Join(parts, ", ")
	}
	return &interaction.Answer{Expression: tmpl.Fill(values), Label: label}
}

func (k *Kind) ContentOverride(cfg interaction.Configuration, s interaction.State) (string, bool) {
	tmpl, err := Parse(cfg.Body)
	if err != nil || nextParameter(tmpl, s) == len(tmpl.Parameters) {
		return "", false
	}
	return content(tmpl, s), true
}

func (k *Kind) ComponentsOverride(cfg interaction.Configuration, s interaction.State) ([]interaction.Row, bool) {
	tmpl, err := Parse(cfg.Body)
	if err != nil || nextParameter(tmpl, s) == len(tmpl.Parameters) {
		return nil, false
	}
	return rows(tmpl, s), true
}

func (k *Kind) WantsReplacement(cfg interaction.Configuration, s interaction.State) bool {
	return k.IsTerminal(cfg, s)
}

func (k *Kind) InitialMessage(cfg interaction.Configuration) interaction.Message {
	tmpl, err := Parse(cfg.Body)
	if err != nil {
		return interaction.Message{Content: cfg.Body}
	}
	empty := interaction.State{}
	return interaction.Message{Content: content(tmpl, empty), Rows: rows(tmpl, empty)}
}

// nextParameter returns the index of the first unfilled parameter, or
// len(Parameters) when all are filled or skipped.
func nextParameter(tmpl Template, s interaction.State) int {
	for i := range tmpl.Parameters {
		if s.Field(firstValue+i) == "" {
			return i
		}
	}
	return len(tmpl.Parameters)
}

func selectedValues(tmpl Template, s interaction.State) []string {
	values := make([]string, len(tmpl.Parameters))
	for i := range tmpl.Parameters {
		v := s.Field(firstValue + i)
		if v != skippedMarker {
			values[i] = v
		}
	}
	return values
}

func content(tmpl Template, s interaction.State) string {
	next := tmpl.Parameters[nextParameter(tmpl, s)]
	if lock := s.Field(lockField); lock != "" {
		return fmt.Sprintf("%s\n<@%s>: select **%s**", tmpl.Title(), lock, next.Name)
	}
	return fmt.Sprintf("%s\nselect **%s**", tmpl.Title(), next.Name)
}

func rows(tmpl Template, s interaction.State) []interaction.Row {
	next := tmpl.Parameters[nextParameter(tmpl, s)]

	buttons := make([]interaction.Button, 0, len(next.Options)+1)
	for _, o := range next.Options {
		style := effects.StylePrimary
		if o.DirectRoll {
			style = effects.StyleSuccess
		}
		buttons = append(buttons, interaction.Button{Value: o.ID, Label: o.Label, Style: style})
	}
	if !s.IsEmpty() {
		buttons = append(buttons, interaction.Button{Value: ClearValue, Label: "Clear", Style: effects.StyleDanger})
	}

	var out []interaction.Row
	for len(buttons) > 0 {
		n := min(buttonsPerRow, len(buttons))
		out = append(out, interaction.Row{Buttons: buttons[:n]})
		buttons = buttons[n:]
	}
	return out
}

var _ interaction.Kind = (*Kind)(nil)
