package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/example/dicebot/internal/core/token"
)

// PrintDecoded writes a human-readable breakdown of a component token.
func PrintDecoded(out io.Writer, raw string) {
	d := token.Decode(raw)

	class := d.Class.String()
	switch d.Class {
	case token.ClassCurrent:
		class = color.New(color.FgGreen).Sprint(class)
	case token.ClassLegacy:
		class = color.New(color.FgYellow).Sprint(class)
	default:
		class = color.New(color.FgRed).Sprint(class)
	}

	fmt.Fprintf(out, "Class:   %s\n", class)
	fmt.Fprintf(out, "Length:  %d/%d\n", len(raw), token.MaxLength)
	if d.Token.Kind != "" {
		fmt.Fprintf(out, "Kind:    %s\n", d.Token.Kind)
	}
	if !d.Current() {
		if d.Reason != "" {
			fmt.Fprintf(out, "Reason:  %s\n", d.Reason)
		}
		return
	}

	fmt.Fprintf(out, "Button:  %s\n", d.Token.ButtonValue)
	fmt.Fprintf(out, "Config:  %s\n", orDefault(d.Token.ConfigID, "(none)"))
	if d.Token.Inline() {
		fields := make([]string, len(d.Token.Fields))
		for i, f := range d.Token.Fields {
			fields[i] = fmt.Sprintf("%q", f)
		}
		fmt.Fprintf(out, "Fields:  [%s]\n", strings.Join(fields, ", "))
	} else {
		fmt.Fprintln(out, "Fields:  (reference token, state kept in the message record)")
	}
}
