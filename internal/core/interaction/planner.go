package interaction

import (
	"fmt"

	"github.com/example/dicebot/internal/core/effects"
	"github.com/example/dicebot/internal/core/token"
)

// ClickPlanInput contains pre-fetched data for planning one click.
type ClickPlanInput struct {
	Kind      Kind
	Config    Configuration
	Prior     State
	Next      State
	GuildID   string
	ChannelID string
	MessageID string
	Pinned    bool
	Locale    string // locale of the clicking user; the configuration locale wins
}

// ClickPlan represents the planned effects for one click, in mandatory order:
// edit origin, answer, replacement, then delete or persist.
type ClickPlan struct {
	KeepExisting bool
	Terminal     bool
	Advanced     bool
	Edit         effects.EditOriginEffect
	Answer       *effects.SendAnswerEffect
	Replacement  *effects.SendReplacementEffect
	DeleteOrigin *effects.DeleteOriginEffect
	PersistState *effects.PersistStateEffect
	Notes        []effects.LogEffect
}

// Effects returns all effects as a flat slice for execution.
func (p ClickPlan) Effects() []effects.Effect {
	result := make([]effects.Effect, 0, 4+len(p.Notes))
	for _, n := range p.Notes {
		result = append(result, n)
	}
	result = append(result, p.Edit)
	if p.Answer != nil {
		result = append(result, *p.Answer)
	}
	if p.Replacement != nil {
		result = append(result, *p.Replacement)
	}
	if p.DeleteOrigin != nil {
		result = append(result, *p.DeleteOrigin)
	}
	if p.PersistState != nil {
		result = append(result, *p.PersistState)
	}
	return result
}

// KeepExisting reports whether the clicked message survives the click: it is
// pinned, or answers go to another channel.
func KeepExisting(cfg Configuration, pinned bool) bool {
	return pinned || cfg.TargetChannelID != ""
}

// GenerateClickPlan creates the plan for a click whose state already moved
// from Prior to Next. This is a pure function - all input data must be pre-fetched.
func GenerateClickPlan(in ClickPlanInput) (ClickPlan, error) {
	kind, cfg := in.Kind, in.Config
	locale := cfg.Locale
	if locale == "" {
		locale = in.Locale
	}

	plan := ClickPlan{
		KeepExisting: KeepExisting(cfg, in.Pinned),
		Terminal:     kind.IsTerminal(cfg, in.Next),
		Advanced:     !in.Next.Equal(in.Prior),
	}
	if !plan.Advanced {
		plan.Notes = append(plan.Notes, effects.LogEffect{
			Level:   "debug",
			Message: "click did not advance state",
			Fields:  map[string]any{"kind": string(kind.Name()), "message_id": in.MessageID},
		})
	}

	// a terminal state is never stored; the next click starts a fresh round
	stored := in.Next
	if plan.Terminal {
		stored = State{}
	}

	if answer := kind.RenderAnswer(cfg, in.Next); answer != nil {
		channel := in.ChannelID
		if cfg.TargetChannelID != "" {
			channel = cfg.TargetChannelID
		}
		plan.Answer = &effects.SendAnswerEffect{
			ChannelID:  channel,
			Expression: answer.Expression,
			Label:      answer.Label,
			Format:     string(cfg.AnswerFormat),
		}
	}

	initial := kind.InitialMessage(cfg)

	if kind.WantsReplacement(cfg, in.Next) && cfg.TargetChannelID == "" {
		rows, err := RenderRows(kind, cfg, State{}, initial.Rows)
		if err != nil {
			return ClickPlan{}, fmt.Errorf("failed to render replacement: %w", err)
		}
		plan.Replacement = &effects.SendReplacementEffect{
			GuildID:          in.GuildID,
			ChannelID:        in.ChannelID,
			ConfigID:         cfg.ID,
			Kind:             string(kind.Name()),
			Content:          initial.Content,
			Rows:             rows,
			ExcludeMessageID: in.MessageID,
		}
	}

	deleteOrigin := plan.Replacement != nil && !plan.KeepExisting

	edit := effects.EditOriginEffect{Content: initial.Content}
	if deleteOrigin {
		edit.Content = Text(locale, TextProcessing)
	}
	if content, ok := kind.ContentOverride(cfg, in.Next); ok {
		edit.Content = content
	}
	if override, ok := kind.ComponentsOverride(cfg, in.Next); ok {
		rows, err := RenderRows(kind, cfg, in.Next, override)
		if err != nil {
			return ClickPlan{}, fmt.Errorf("failed to render components: %w", err)
		}
		edit.Rows = rows
	} else if !deleteOrigin {
		rows, err := RenderRows(kind, cfg, stored, initial.Rows)
		if err != nil {
			return ClickPlan{}, fmt.Errorf("failed to render components: %w", err)
		}
		edit.Rows = rows
	}
	plan.Edit = edit

	if deleteOrigin {
		plan.DeleteOrigin = &effects.DeleteOriginEffect{
			ChannelID:      in.ChannelID,
			MessageID:      in.MessageID,
			RestoreContent: plan.Replacement.Content,
			RestoreRows:    plan.Replacement.Rows,
		}
		return plan, nil
	}

	serialized, err := MarshalState(stored)
	if err != nil {
		return ClickPlan{}, err
	}
	plan.PersistState = &effects.PersistStateEffect{ChannelID: in.ChannelID, MessageID: in.MessageID, State: serialized}
	return plan, nil
}

// RenderRows encodes every button as a token carrying kind, configuration id
// and, for kinds with a state schema, the state inline.
func RenderRows(kind Kind, cfg Configuration, s State, rows []Row) ([]effects.Row, error) {
	var fields []string
	if schema := kind.Schema(); schema.Len() > 0 {
		fields = schema.Fill(s.Fields)
	}

	out := make([]effects.Row, 0, len(rows))
	for _, row := range rows {
		rendered := effects.Row{Buttons: make([]effects.Button, 0, len(row.Buttons))}
		for _, b := range row.Buttons {
			customID, err := token.EncodeOrReference(token.Token{
				Kind:        string(kind.Name()),
				ButtonValue: b.Value,
				ConfigID:    cfg.ID,
				Fields:      fields,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to encode button %q: %w", b.Value, err)
			}
			style := b.Style
			if style == "" {
				style = effects.StylePrimary
			}
			rendered.Buttons = append(rendered.Buttons, effects.Button{CustomID: customID, Label: b.Label, Style: style})
		}
		out = append(out, rendered)
	}
	return out, nil
}

// RenderMessage encodes a whole message for posting.
func RenderMessage(kind Kind, cfg Configuration, s State, msg Message) (string, []effects.Row, error) {
	rows, err := RenderRows(kind, cfg, s, msg.Rows)
	if err != nil {
		return "", nil, err
	}
	return msg.Content, rows, nil
}
