// Package token encodes interaction progress into the custom id carried by a
// clickable component and decodes it back.
//
// This is part of the Functional Core - no I/O, only pure functions.
//
// A current token is a Delimiter-joined list of positional segments:
//
//	kind ␞ buttonValue ␞ configID|EMPTY [␞ stateField ...]
//
// A token with exactly three segments is a thin reference: the state lives in
// the message record. A token with state segments is self-describing. Trailing
// empty state fields are trimmed on encode and defaulted on decode, so tokens
// written by an older schema with fewer fields still decode.
package token

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/dicebot/internal/ids"
)

const (
	// Delimiter separates token segments and is reserved from user input.
	Delimiter = "\u001e"
	// Empty marks an absent optional segment.
	Empty = "EMPTY"
	// MaxLength is the platform bound on a component custom id.
	MaxLength = 100
)

// legacyDelimiters were used by earlier token formats.
var legacyDelimiters = []string{"\u0000", ","}

var (
	// ErrTooLong indicates an encoded token exceeds MaxLength.
	ErrTooLong = errors.New("token exceeds maximum length")
	// ErrReservedValue indicates a segment contains a reserved delimiter or sentinel.
	ErrReservedValue = errors.New("value contains a reserved delimiter or sentinel")
	// ErrMissingKind indicates a token without a command kind.
	ErrMissingKind = errors.New("token requires a command kind")
)

// Class classifies a decoded token.
type Class int

const (
	// ClassUnrecognized is an empty or structurally broken token.
	ClassUnrecognized Class = iota
	// ClassLegacy is a token written by an older, unsupported format.
	ClassLegacy
	// ClassCurrent is a token in the current format.
	ClassCurrent
)

func (c Class) String() string {
	switch c {
	case ClassCurrent:
		return "current"
	case ClassLegacy:
		return "legacy"
	default:
		return "unrecognized"
	}
}

// Token is the content carried by a component custom id.
type Token struct {
	Kind        string
	ButtonValue string
	ConfigID    string   // "" when the token carries no configuration id
	Fields      []string // nil for thin reference tokens; "" marks an absent field
}

// Inline reports whether the token carries its state.
func (t Token) Inline() bool {
	return t.Fields != nil
}

// Reference returns the thin reference form of the token.
func (t Token) Reference() Token {
	return Token{Kind: t.Kind, ButtonValue: t.ButtonValue, ConfigID: t.ConfigID}
}

// Decoded is the outcome of Decode. Token is only meaningful for ClassCurrent,
// except that Kind carries the best-effort leading word of a legacy token.
type Decoded struct {
	Class  Class
	Token  Token
	Reason string
}

// Current reports whether the token is in the current format.
func (d Decoded) Current() bool {
	return d.Class == ClassCurrent
}

// Encode renders t as a custom id. It fails when a segment contains a
// reserved delimiter or when the result exceeds MaxLength.
//
// Trailing empty fields are not written, so Decode returns fewer fields than
// were encoded. Round trips are exact up to Schema.Fill: for a token whose
// fields follow schema s, s.Fill(Decode(Encode(t)).Token.Fields) equals
// s.Fill(t.Fields).
func Encode(t Token) (string, error) {
	if t.Kind == "" {
		return "", ErrMissingKind
	}

	values := make([]string, 0, 3+len(t.Fields))
	values = append(values, t.Kind, t.ButtonValue, t.ConfigID)

	if t.Fields != nil {
		fields := trimTrailingEmpty(t.Fields)
		if len(fields) == 0 {
			// keep one segment so the token stays self-describing
			fields = []string{""}
		}
		values = append(values, fields...)
	}

	segments := make([]string, len(values))
	for i, v := range values {
		if v == Empty || strings.Contains(v, Delimiter) {
			return "", fmt.Errorf("%w: %q", ErrReservedValue, v)
		}
		segments[i] = orEmpty(v)
	}

	out := strings.Join(segments, Delimiter)
	if len(out) > MaxLength {
		return "", fmt.Errorf("%w: %d > %d", ErrTooLong, len(out), MaxLength)
	}
	return out, nil
}

// EncodeOrReference encodes t inline and falls back to the thin reference
// form when the inline form does not fit.
func EncodeOrReference(t Token) (string, error) {
	out, err := Encode(t)
	if err == nil || !errors.Is(err, ErrTooLong) || !t.Inline() {
		return out, err
	}
	return Encode(t.Reference())
}

// Decode parses a custom id. It never fails: malformed input is reported
// through the returned classification.
func Decode(raw string) Decoded {
	if raw == "" {
		return Decoded{Class: ClassUnrecognized, Reason: "empty token"}
	}

	if !strings.Contains(raw, Delimiter) {
		return Decoded{
			Class:  ClassLegacy,
			Token:  Token{Kind: legacyKind(raw)},
			Reason: "token without current delimiter",
		}
	}

	parts := strings.Split(raw, Delimiter)
	if parts[0] == "" || parts[0] == Empty {
		return Decoded{Class: ClassUnrecognized, Reason: "token without command kind"}
	}

	t := Token{Kind: parts[0], ButtonValue: fromEmpty(parts[1])}
	if len(parts) > 2 {
		t.ConfigID = fromEmpty(parts[2])
		if t.ConfigID != "" && !ids.IsConfigID(t.ConfigID) {
			return Decoded{Class: ClassUnrecognized, Reason: "malformed configuration id"}
		}
	}
	if len(parts) > 3 {
		t.Fields = make([]string, 0, len(parts)-3)
		for _, p := range parts[3:] {
			t.Fields = append(t.Fields, fromEmpty(p))
		}
	}

	return Decoded{Class: ClassCurrent, Token: t}
}

// ValidateUserValue rejects user-supplied values that would corrupt a token.
func ValidateUserValue(value string) error {
	if value == Empty {
		return fmt.Errorf("%w: %q is reserved", ErrReservedValue, Empty)
	}
	if strings.Contains(value, Delimiter) || strings.Contains(value, legacyDelimiters[0]) {
		return fmt.Errorf("%w: control character in %q", ErrReservedValue, value)
	}
	return nil
}

func legacyKind(raw string) string {
	cut := len(raw)
	for _, d := range legacyDelimiters {
		if i := strings.Index(raw, d); i >= 0 && i < cut {
			cut = i
		}
	}
	return raw[:cut]
}

func trimTrailingEmpty(fields []string) []string {
	end := len(fields)
	for end > 0 && fields[end-1] == "" {
		end--
	}
	return fields[:end]
}

func orEmpty(s string) string {
	if s == "" {
		return Empty
	}
	return s
}

func fromEmpty(s string) string {
	if s == Empty {
		return ""
	}
	return s
}
