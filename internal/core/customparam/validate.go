package customparam

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/example/dicebot/internal/apperrors"
	"github.com/example/dicebot/internal/core/interaction"
	"github.com/example/dicebot/internal/core/token"
)

// MaxActorIDLength bounds the lock field. Chat user ids are unsigned 64-bit
// snowflakes, at most 20 decimal digits.
const MaxActorIDLength = 20

// placeholderConfigID stands in for the id of a configuration not yet persisted.
const placeholderConfigID = "00000000-0000-0000-0000-000000000000"

// Validate parses the expression, then walks every reachable state and checks
// that each rendered button encodes inline within the token bound, and that
// every corner-case filled expression passes the dice syntax check.
func (k *Kind) Validate(cfg interaction.Configuration) error {
	tmpl, err := Parse(cfg.Body)
	if err != nil {
		return err
	}

	for _, p := range tmpl.Parameters {
		for _, o := range p.Options {
			if err := token.ValidateUserValue(o.Value); err != nil {
				return apperrors.Validation("parameter."+p.Name, err.Error())
			}
			if err := token.ValidateUserValue(o.Label); err != nil {
				return apperrors.Validation("parameter."+p.Name, err.Error())
			}
		}
	}

	configID := cfg.ID
	if configID == "" {
		configID = placeholderConfigID
	}
	if err := validateReachableTokens(tmpl, configID, strings.Repeat("9", MaxActorIDLength)); err != nil {
		return err
	}
	return k.validateExpressions(tmpl)
}

func validateReachableTokens(tmpl Template, configID, actor string) error {
	var walk func(s interaction.State) error
	walk = func(s interaction.State) error {
		next := nextParameter(tmpl, s)
		if next == len(tmpl.Parameters) {
			return nil
		}
		param := tmpl.Parameters[next]

		fields := schema.Fill(s.Fields)
		for _, row := range rows(tmpl, s) {
			for _, b := range row.Buttons {
				_, err := token.Encode(token.Token{Kind: string(Name), ButtonValue: b.Value, ConfigID: configID, Fields: fields})
				if err != nil {
					return apperrors.Validation("parameter."+param.Name,
						fmt.Sprintf("selecting %q after %s does not fit into a button id: %v", b.Label, describe(tmpl, s), err))
				}
			}
		}

		for _, o := range param.Options {
			if err := walk(advance(tmpl, s, next, o, actor)); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(interaction.State{})
}

func (k *Kind) validateExpressions(tmpl Template) error {
	var walk func(s interaction.State) error
	walk = func(s interaction.State) error {
		next := nextParameter(tmpl, s)
		if next == len(tmpl.Parameters) {
			expression := tmpl.Fill(selectedValues(tmpl, s))
			if err := k.check(expression); err != nil {
				return apperrors.Validation("body", fmt.Sprintf("expression %q after %s is invalid: %v", expression, describe(tmpl, s), err))
			}
			return nil
		}
		for _, o := range cornerOptions(tmpl.Parameters[next]) {
			if err := walk(advance(tmpl, s, next, o, "0")); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(interaction.State{})
}

func advance(tmpl Template, s interaction.State, index int, o Option, actor string) interaction.State {
	out := s.With(stateLength, lockField, actor).With(stateLength, firstValue+index, o.Value)
	if o.DirectRoll {
		for i := index + 1; i < len(tmpl.Parameters); i++ {
			out = out.With(stateLength, firstValue+i, skippedMarker)
		}
	}
	return out
}

// cornerOptions picks the options most likely to break an expression: the
// first and last, zero, non-numeric values and direct rolls.
func cornerOptions(p Parameter) []Option {
	picked := map[string]bool{}
	var out []Option
	add := func(o Option) {
		if !picked[o.ID] {
			picked[o.ID] = true
			out = append(out, o)
		}
	}

	add(p.Options[0])
	add(p.Options[len(p.Options)-1])
	for _, o := range p.Options {
		if _, err := strconv.Atoi(o.Value); err != nil || o.Value == "0" || o.DirectRoll {
			add(o)
		}
	}
	return out
}

func describe(tmpl Template, s interaction.State) string {
	if s.IsEmpty() {
		return "no selection"
	}
	parts := make([]string, 0, len(tmpl.Parameters))
	for i, p := range tmpl.Parameters {
		if v := s.Field(firstValue + i); v != "" && v != skippedMarker {
			parts = append(parts, p.Name+"="+v)
		}
	}
	return strings.Join(parts, ", ")
}
