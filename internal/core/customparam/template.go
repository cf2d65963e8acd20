// Package customparam implements the multi-step parameter command: the user
// fills up to four parameters of a dice expression by clicking option
// buttons, then the filled expression is rolled.
package customparam

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/example/dicebot/internal/apperrors"
	"github.com/example/dicebot/internal/core/token"
)

const (
	// MaxParameters is the number of state slots a token can carry.
	MaxParameters = 4
	// MaxOptions leaves room for the clear button in five rows of five.
	MaxOptions = 23
	// DefaultMin and DefaultMax bound the options of a bare {name} parameter.
	DefaultMin = 1
	DefaultMax = 15

	rangeSeparator  = "<=>"
	optionSeparator = "/"
	labelSeparator  = "@"
	directRollMark  = "!"
)

// Option is one selectable value of a parameter.
type Option struct {
	ID         string
	Value      string
	Label      string
	DirectRoll bool
}

// Parameter is one {...} placeholder of the expression.
type Parameter struct {
	Name    string
	Options []Option
}

// Option returns the option with the given id.
func (p Parameter) Option(id string) (Option, bool) {
	for _, o := range p.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// optionByValue finds the first option with value v, for labelling stored values.
func (p Parameter) optionByValue(v string) (Option, bool) {
	for _, o := range p.Options {
		if o.Value == v {
			return o, true
		}
	}
	return Option{}, false
}

// Template is a parsed expression with its parameters. Literals has one more
// element than Parameters: the expression is Literals[0] P0 Literals[1] P1 ...
type Template struct {
	Label      string
	Literals   []string
	Parameters []Parameter
}

// Title is the text shown above the buttons.
func (t Template) Title() string {
	if t.Label != "" {
		return t.Label
	}
	var b strings.Builder
	for i, lit := range t.Literals {
		b.WriteString(lit)
		if i < len(t.Parameters) {
			b.WriteString("{" + t.Parameters[i].Name + "}")
		}
	}
	return b.String()
}

// Fill substitutes values into the expression. Missing values substitute as "".
func (t Template) Fill(values []string) string {
	var b strings.Builder
	for i, lit := range t.Literals {
		b.WriteString(lit)
		if i < len(t.Parameters) && i < len(values) {
			b.WriteString(values[i])
		}
	}
	return b.String()
}

// Parse parses a parameter expression such as "1d{sides:4/6/8}+{bonus:0<=>5}@Attack".
func Parse(body string) (Template, error) {
	if err := token.ValidateUserValue(body); err != nil {
		return Template{}, apperrors.Validation("body", err.Error())
	}
	if strings.Contains(body, "\t") {
		return Template{}, apperrors.Validation("body", "expression must not contain tab characters")
	}

	expression, label := splitLabel(body)

	tmpl := Template{Label: strings.TrimSpace(label)}
	names := map[string]bool{}
	var literal, inner strings.Builder
	depth := 0

	for _, r := range expression {
		switch {
		case r == '{':
			if depth > 0 {
				return Template{}, apperrors.Validation("body", "nested parameter brackets are not allowed")
			}
			depth++
			inner.Reset()
		case r == '}':
			if depth == 0 {
				return Template{}, apperrors.Validation("body", "closing bracket without opening bracket")
			}
			depth--
			param, err := parseParameter(inner.String())
			if err != nil {
				return Template{}, err
			}
			if names[param.Name] {
				return Template{}, apperrors.Validation("parameter."+param.Name, fmt.Sprintf("parameter %q is defined twice", param.Name))
			}
			names[param.Name] = true
			tmpl.Literals = append(tmpl.Literals, literal.String())
			tmpl.Parameters = append(tmpl.Parameters, param)
			literal.Reset()
		case depth > 0:
			inner.WriteRune(r)
		default:
			literal.WriteRune(r)
		}
	}
	if depth != 0 {
		return Template{}, apperrors.Validation("body", "parameter bracket is not closed")
	}
	tmpl.Literals = append(tmpl.Literals, literal.String())

	switch {
	case len(tmpl.Parameters) == 0:
		return Template{}, apperrors.Validation("body", "expression needs at least one {parameter}")
	case len(tmpl.Parameters) > MaxParameters:
		return Template{}, apperrors.Validation("body", fmt.Sprintf("expression has %d parameters, at most %d are allowed", len(tmpl.Parameters), MaxParameters))
	}
	return tmpl, nil
}

// splitLabel cuts a trailing "@label" that is outside any brackets.
func splitLabel(body string) (string, string) {
	depth, cut := 0, -1
	for i, r := range body {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
		case '@':
			if depth == 0 {
				cut = i
			}
		}
	}
	if cut < 0 {
		return body, ""
	}
	return body[:cut], body[cut+1:]
}

func parseParameter(raw string) (Parameter, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Parameter{}, apperrors.Validation("body", "empty parameter brackets")
	}

	name, spec, hasSpec := strings.Cut(raw, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return Parameter{}, apperrors.Validation("body", fmt.Sprintf("parameter %q has no name", raw))
	}
	field := "parameter." + name

	switch {
	case !hasSpec:
		return Parameter{Name: name, Options: rangeOptions(DefaultMin, DefaultMax)}, nil
	case strings.Contains(spec, rangeSeparator):
		lo, hi, _ := strings.Cut(spec, rangeSeparator)
		minV, errMin := strconv.Atoi(strings.TrimSpace(lo))
		maxV, errMax := strconv.Atoi(strings.TrimSpace(hi))
		if errMin != nil || errMax != nil {
			return Parameter{}, apperrors.Validation(field, fmt.Sprintf("range of %q must be two integers", name))
		}
		if minV > maxV {
			return Parameter{}, apperrors.Validation(field, fmt.Sprintf("range of %q starts after it ends", name))
		}
		return Parameter{Name: name, Options: rangeOptions(minV, maxV)}, nil
	default:
		items := strings.Split(spec, optionSeparator)
		if len(items) > MaxOptions {
			return Parameter{}, apperrors.Validation(field, fmt.Sprintf("parameter %q has %d options, at most %d are allowed", name, len(items), MaxOptions))
		}
		options := make([]Option, 0, len(items))
		for i, item := range items {
			opt, err := parseOption(field, item)
			if err != nil {
				return Parameter{}, err
			}
			opt.ID = strconv.Itoa(i + 1)
			options = append(options, opt)
		}
		return Parameter{Name: name, Options: options}, nil
	}
}

func parseOption(field, item string) (Option, error) {
	value, label, _ := strings.Cut(item, labelSeparator)
	value = strings.TrimSpace(value)
	label = strings.TrimSpace(label)
	if value == "" {
		return Option{}, apperrors.Validation(field, "empty option value")
	}

	opt := Option{Value: value, Label: value}
	if strings.HasPrefix(label, directRollMark) {
		opt.DirectRoll = true
		label = strings.TrimSpace(strings.TrimPrefix(label, directRollMark))
	}
	if label != "" {
		opt.Label = label
	}
	if opt.Value == token.Empty || opt.Value == skippedMarker {
		return Option{}, apperrors.Validation(field, fmt.Sprintf("option value %q is reserved", opt.Value))
	}
	return opt, nil
}

// rangeOptions enumerates lo..hi, capped at MaxOptions values.
func rangeOptions(lo, hi int) []Option {
	if hi-lo+1 > MaxOptions {
		hi = lo + MaxOptions - 1
	}
	options := make([]Option, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		s := strconv.Itoa(v)
		options = append(options, Option{ID: strconv.Itoa(v - lo + 1), Value: s, Label: s})
	}
	return options
}
