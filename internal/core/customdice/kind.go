// Package customdice implements the button board command: every button rolls
// its own expression and the board is reposted below the answer.
package customdice

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/example/dicebot/internal/apperrors"
	"github.com/example/dicebot/internal/core/interaction"
	"github.com/example/dicebot/internal/core/token"
)

// Name is the command kind carried in tokens.
const Name interaction.CommandKind = "custom_dice"

const (
	MaxButtons       = 25
	MaxRows          = 5
	MaxButtonsPerRow = 5
	MaxLabelLength   = 80

	buttonSeparator = ";"
	labelSeparator  = "@"
	defaultContent  = "Click a button to roll"
)

var schema = token.Schema{Fields: []token.Field{{Name: "button"}}}

// Entry is one configured button.
type Entry struct {
	ID         string
	Expression string
	Label      string
}

// Board is a parsed body: rows of entries.
type Board struct {
	Rows [][]Entry
}

// Entry returns the entry with the given id.
func (b Board) Entry(id string) (Entry, bool) {
	for _, row := range b.Rows {
		for _, e := range row {
			if e.ID == id {
				return e, true
			}
		}
	}
	return Entry{}, false
}

// Parse reads "expr@label;expr;;expr". An empty segment starts a new row.
func Parse(body string) (Board, error) {
	if err := token.ValidateUserValue(body); err != nil {
		return Board{}, apperrors.Validation("body", err.Error())
	}

	var board Board
	var row []Entry
	count := 0
	for _, segment := range strings.Split(body, buttonSeparator) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			if len(row) > 0 {
				board.Rows = append(board.Rows, row)
				row = nil
			}
			continue
		}
		if len(row) == MaxButtonsPerRow {
			board.Rows = append(board.Rows, row)
			row = nil
		}

		expression, label, _ := strings.Cut(segment, labelSeparator)
		expression, label = strings.TrimSpace(expression), strings.TrimSpace(label)
		if expression == "" {
			return Board{}, apperrors.Validation("body", fmt.Sprintf("button %d has no expression", count+1))
		}
		if label == "" {
			label = expression
		}
		if len(label) > MaxLabelLength {
			return Board{}, apperrors.Validation("body", fmt.Sprintf("label of button %d is longer than %d characters", count+1, MaxLabelLength))
		}

		count++
		row = append(row, Entry{ID: strconv.Itoa(count), Expression: expression, Label: label})
	}
	if len(row) > 0 {
		board.Rows = append(board.Rows, row)
	}

	switch {
	case count == 0:
		return Board{}, apperrors.Validation("body", "at least one button is required")
	case count > MaxButtons:
		return Board{}, apperrors.Validation("body", fmt.Sprintf("%d buttons configured, at most %d are allowed", count, MaxButtons))
	case len(board.Rows) > MaxRows:
		return Board{}, apperrors.Validation("body", fmt.Sprintf("%d rows configured, at most %d are allowed", len(board.Rows), MaxRows))
	}
	return board, nil
}

// Kind implements interaction.Kind for button boards.
type Kind struct {
	check interaction.ExpressionChecker
}

// New creates the kind. check validates every button expression at creation time.
func New(check interaction.ExpressionChecker) *Kind {
	if check == nil {
		check = interaction.AcceptAll
	}
	return &Kind{check: check}
}

func (k *Kind) Name() interaction.CommandKind { return Name }

func (k *Kind) Schema() token.Schema { return schema }

func (k *Kind) Validate(cfg interaction.Configuration) error {
	board, err := Parse(cfg.Body)
	if err != nil {
		return err
	}
	for _, row := range board.Rows {
		for _, e := range row {
			if err := k.check(e.Expression); err != nil {
				return apperrors.Validation("body", fmt.Sprintf("expression %q of button %s is invalid: %v", e.Expression, e.ID, err))
			}
		}
	}
	return nil
}

func (k *Kind) InitialMessage(cfg interaction.Configuration) interaction.Message {
	board, err := Parse(cfg.Body)
	if err != nil {
		return interaction.Message{Content: defaultContent}
	}
	msg := interaction.Message{Content: defaultContent}
	for _, row := range board.Rows {
		r := interaction.Row{}
		for _, e := range row {
			r.Buttons = append(r.Buttons, interaction.Button{Value: e.ID, Label: e.Label})
		}
		msg.Rows = append(msg.Rows, r)
	}
	return msg
}

// ApplyButton records the clicked button. Each valid click completes a round.
func (k *Kind) ApplyButton(cfg interaction.Configuration, prior interaction.State, buttonValue, actorID string) interaction.State {
	board, err := Parse(cfg.Body)
	if err != nil {
		return prior
	}
	if _, ok := board.Entry(buttonValue); !ok {
		return prior
	}
	return interaction.State{Fields: []string{buttonValue}}
}

func (k *Kind) IsTerminal(cfg interaction.Configuration, s interaction.State) bool {
	return k.RenderAnswer(cfg, s) != nil
}

func (k *Kind) RenderAnswer(cfg interaction.Configuration, s interaction.State) *interaction.Answer {
	board, err := Parse(cfg.Body)
	if err != nil {
		return nil
	}
	e, ok := board.Entry(s.Field(0))
	if !ok {
		return nil
	}
	return &interaction.Answer{Expression: e.Expression, Label: e.Label}
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

var _ interaction.Kind = (*Kind)(nil)
