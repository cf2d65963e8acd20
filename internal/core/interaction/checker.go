package interaction

// ExpressionChecker reports whether a dice expression is syntactically valid.
// Kinds use it at configuration-creation time; it must not roll.
type ExpressionChecker func(expression string) error

// AcceptAll is an ExpressionChecker that accepts every expression.
func AcceptAll(string) error { return nil }
