package interaction

import "fmt"

// FormatAnswer renders a rolled answer in the given format. An empty format is full.
func FormatAnswer(format AnswerFormat, label, expression string, total int, detail string) string {
	title := label
	if title == "" {
		title = expression
	}

	switch format {
	case FormatMinimal:
		return fmt.Sprintf("**%d**", total)
	case FormatCompact:
		return fmt.Sprintf("%s: **%d**", title, total)
	default:
		if label == "" || label == expression {
			return fmt.Sprintf("%s: %s = **%d**", expression, detail, total)
		}
		return fmt.Sprintf("%s (%s): %s = **%d**", label, expression, detail, total)
	}
}

// FormatRollError renders an answer whose expression could not be rolled.
func FormatRollError(label, expression string, err error) string {
	title := label
	if title == "" {
		title = expression
	}
	return fmt.Sprintf("%s: could not roll `%s` (%v)", title, expression, err)
}
