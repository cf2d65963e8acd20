// Package dice implements the small dice-expression evaluator used to answer
// clicks: sums of NdS terms (optionally keep-highest/keep-lowest) and integer
// constants.
package dice

import (
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/example/dicebot/internal/ports/secondary"
)

const (
	// MaxCount is the most dice a single term may roll.
	MaxCount = 100
	// MaxSides is the largest die.
	MaxSides = 1000
)

// ErrEmptyExpression indicates an expression without terms.
var ErrEmptyExpression = errors.New("expression is empty")

// ErrInvalidTerm indicates a term that is neither dice nor an integer.
var ErrInvalidTerm = errors.New("invalid term")

// ErrInvalidDiceSpec indicates a dice term with invalid count, sides or keep.
var ErrInvalidDiceSpec = errors.New("dice must have positive sides and count")

var dicePattern = regexp.MustCompile(`^(\d*)d(\d+)(?:(kh|kl)(\d+))?$`)

// Term is one signed summand of an expression.
type Term struct {
	Sign     int
	Count    int
	Sides    int
	Keep     int
	KeepLow  bool
	Constant int
}

// IsDice reports whether the term rolls dice.
func (t Term) IsDice() bool {
	return t.Sides > 0
}

func (t Term) String() string {
	if !t.IsDice() {
		return strconv.Itoa(t.Constant)
	}
	s := fmt.Sprintf("%dd%d", t.Count, t.Sides)
	switch {
	case t.Keep > 0 && t.KeepLow:
		s += fmt.Sprintf("kl%d", t.Keep)
	case t.Keep > 0:
		s += fmt.Sprintf("kh%d", t.Keep)
	}
	return s
}

// Parse parses an expression such as "2d20kh1+1d6-2". A trailing operator is
// tolerated so expressions with an unfilled last parameter stay rollable.
func Parse(expression string) ([]Term, error) {
	expr := strings.ToLower(strings.ReplaceAll(expression, " ", ""))
	expr = strings.TrimRight(expr, "+-")
	if expr == "" {
		return nil, ErrEmptyExpression
	}

	var terms []Term
	sign, start := 1, 0
	for i := 0; i <= len(expr); i++ {
		if i < len(expr) && expr[i] != '+' && expr[i] != '-' {
			continue
		}
		raw := expr[start:i]
		if raw == "" {
			if i != 0 {
				return nil, fmt.Errorf("%w: empty term in %q", ErrInvalidTerm, expression)
			}
		} else {
			term, err := parseTerm(raw)
			if err != nil {
				return nil, err
			}
			term.Sign = sign
			terms = append(terms, term)
		}
		if i < len(expr) {
			sign = 1
			if expr[i] == '-' {
				sign = -1
			}
		}
		start = i + 1
	}
	return terms, nil
}

func parseTerm(raw string) (Term, error) {
	if n, err := strconv.Atoi(raw); err == nil {
		return Term{Constant: n}, nil
	}

	m := dicePattern.FindStringSubmatch(raw)
	if m == nil {
		return Term{}, fmt.Errorf("%w: %q", ErrInvalidTerm, raw)
	}

	t := Term{Count: 1}
	if m[1] != "" {
		t.Count, _ = strconv.Atoi(m[1])
	}
	t.Sides, _ = strconv.Atoi(m[2])
	if m[3] != "" {
		t.Keep, _ = strconv.Atoi(m[4])
		t.KeepLow = m[3] == "kl"
	}

	if t.Count <= 0 || t.Sides <= 0 || t.Count > MaxCount || t.Sides > MaxSides {
		return Term{}, fmt.Errorf("%w: %q", ErrInvalidDiceSpec, raw)
	}
	if m[3] != "" && (t.Keep <= 0 || t.Keep > t.Count) {
		return Term{}, fmt.Errorf("%w: keep %d of %d", ErrInvalidDiceSpec, t.Keep, t.Count)
	}
	return t, nil
}

// Check reports whether expression parses. It does not roll.
func Check(expression string) error {
	_, err := Parse(expression)
	return err
}

// Roller rolls expressions with its own random source.
type Roller struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRoller creates a roller. The same seed yields the same sequence of rolls.
func NewRoller(seed int64) *Roller {
	return &Roller{rng: rand.New(rand.NewSource(seed))}
}

// Roll evaluates expression.
func (r *Roller) Roll(expression string) (secondary.RollResult, error) {
	terms, err := Parse(expression)
	if err != nil {
		return secondary.RollResult{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	total := 0
	parts := make([]string, 0, len(terms))
	for i, t := range terms {
		value, detail := r.rollTerm(t)
		total += t.Sign * value

		prefix := ""
		switch {
		case t.Sign < 0:
			prefix = "- "
		case i > 0:
			prefix = "+ "
		}
		parts = append(parts, prefix+detail)
	}

	return secondary.RollResult{
		Expression: expression,
		Total:      total,
		Detail:     strings.Join(parts, " "),
	}, nil
}

func (r *Roller) rollTerm(t Term) (int, string) {
	if !t.IsDice() {
		return t.Constant, strconv.Itoa(t.Constant)
	}

	results := make([]int, t.Count)
	for i := range results {
		results[i] = r.rng.Intn(t.Sides) + 1
	}

	kept := results
	if t.Keep > 0 {
		sorted := append([]int(nil), results...)
		sort.Ints(sorted)
		if t.KeepLow {
			kept = sorted[:t.Keep]
		} else {
			kept = sorted[len(sorted)-t.Keep:]
		}
	}

	sum := 0
	for _, v := range kept {
		sum += v
	}

	shown := make([]string, len(results))
	for i, v := range results {
		shown[i] = strconv.Itoa(v)
	}
	return sum, fmt.Sprintf("%s[%s]", t, strings.Join(shown, ","))
}

var _ secondary.DiceEvaluator = (*Roller)(nil)
