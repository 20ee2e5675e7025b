package engine

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/KirkDiggler/active-defence/internal/errors"
)

// MaxDiceCount caps the dice rolled by a single group
const MaxDiceCount = 100

var (
	dicePattern   = regexp.MustCompile(`^(\d*)d(\d+)(?:(kh|kl)(\d*))?`)
	numberPattern = regexp.MustCompile(`^\d+`)
)

// Parse reads a formula of the form [op] term (op term)*, where a term is
// a constant N or a dice group [N]dM with an optional khK or klK qualifier.
// Whitespace is ignored.
func Parse(formula string) (*Expression, error) {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, formula)
	if s == "" {
		return nil, errors.InvalidArgument("formula is required")
	}

	expr := &Expression{}
	op := OpAdd

	switch Operator(s[:1]) {
	case OpAdd, OpSubtract:
		op = Operator(s[:1])
		s = s[1:]
	case OpMultiply, OpDivide:
		return nil, errors.InvalidArgumentf("formula %q cannot start with %q", formula, s[:1])
	}

	for {
		term, rest, err := parseTerm(formula, s)
		if err != nil {
			return nil, err
		}
		term.Operator = op
		expr.Terms = append(expr.Terms, term)

		if rest == "" {
			return expr, nil
		}

		op = Operator(rest[:1])
		switch op {
		case OpAdd, OpSubtract, OpMultiply, OpDivide:
		default:
			return nil, errors.InvalidArgumentf("formula %q: expected an operator at %q", formula, rest)
		}
		s = rest[1:]
		if s == "" {
			return nil, errors.InvalidArgumentf("formula %q ends with an operator", formula)
		}
	}
}

func parseTerm(formula, s string) (*Term, string, error) {
	if m := dicePattern.FindStringSubmatch(s); m != nil {
		term := &Term{Count: 1, Keep: KeepAll}

		if m[1] != "" {
			term.Count, _ = strconv.Atoi(m[1])
		}
		term.Faces, _ = strconv.Atoi(m[2])

		if term.Count < 1 || term.Count > MaxDiceCount {
			return nil, "", errors.InvalidArgumentf("formula %q: dice count must be between 1 and %d", formula, MaxDiceCount)
		}
		if term.Faces < 1 {
			return nil, "", errors.InvalidArgumentf("formula %q: dice must have at least one face", formula)
		}

		switch m[3] {
		case "kh":
			term.Keep = KeepHighest
		case "kl":
			term.Keep = KeepLowest
		}
		if term.Keep != KeepAll {
			term.KeepCount = 1
			if m[4] != "" {
				term.KeepCount, _ = strconv.Atoi(m[4])
			}
			if term.KeepCount < 1 || term.KeepCount > term.Count {
				return nil, "", errors.InvalidArgumentf("formula %q: keep count must be between 1 and %d", formula, term.Count)
			}
		}

		return term, s[len(m[0]):], nil
	}

	if m := numberPattern.FindString(s); m != "" {
		value, err := strconv.Atoi(m)
		if err != nil {
			return nil, "", errors.InvalidArgumentf("formula %q: constant %q out of range", formula, m)
		}
		return &Term{Constant: value}, s[len(m):], nil
	}

	return nil, "", errors.InvalidArgumentf("formula %q: expected a number or dice term at %q", formula, s)
}

// Evaluate totals rolled terms. Multiplication and division bind tighter
// than addition and subtraction; division truncates toward zero.
func Evaluate(terms []*Term) (int, error) {
	total := 0
	product := 0

	for i, t := range terms {
		value := t.Value()
		switch t.Operator {
		case OpAdd:
			if i > 0 {
				total += product
			}
			product = value
		case OpSubtract:
			if i > 0 {
				total += product
			}
			product = -value
		case OpMultiply:
			product *= value
		case OpDivide:
			if value == 0 {
				return 0, errors.InvalidArgument("division by zero")
			}
			product /= value
		default:
			return 0, errors.InvalidArgumentf("unknown operator %q", t.Operator)
		}
	}

	return total + product, nil
}
