package secondary

// DiceEvaluator defines the secondary port for rolling dice expressions.
type DiceEvaluator interface {
	// Roll evaluates expression.
	Roll(expression string) (RollResult, error)
}

// RollResult is the outcome of a roll.
type RollResult struct {
	Expression string
	Total      int
	Detail     string // per-term breakdown, e.g. "2d6[3,5] + 2"
}
