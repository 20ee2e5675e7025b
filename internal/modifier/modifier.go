// Package modifier validates and normalizes free-text situational dice
// modifiers so they can be appended to a base roll formula.
package modifier

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/KirkDiggler/active-defence/internal/engine"
	"github.com/KirkDiggler/active-defence/internal/errors"
)

// Modifier is a validated formula fragment safe to append to a base roll.
// The zero value is None.
type Modifier string

// None means no modifier was supplied or the supplied text was rejected.
const None Modifier = ""

var (
	numberTerm = regexp.MustCompile(`^[-+*/]?\d+$`)
	diceTerm   = regexp.MustCompile(`^[-+*/]?\d+d\d+$`)
	operators  = regexp.MustCompile(`[-+*/]`)
)

// IsNone reports whether m carries no modifier
func (m Modifier) IsNone() bool {
	return m == None
}

// String returns the fragment as it will be appended to a formula
func (m Modifier) String() string {
	return string(m)
}

// Validate checks raw against the term (operator term)* grammar.
//
// Empty input yields None with no error. Rejected input yields None and an
// INVALID_MODIFIER error that callers treat as "no modifier supplied".
// Accepted input is returned with its inner spacing untouched; a leading
// sign is prepended when the text does not start with an operator.
func Validate(raw string) (Modifier, error) {
	clean := stripSpace(raw)
	if clean == "" {
		return None, nil
	}

	if isTerm(clean) {
		op := ""
		if startsWithOperator(clean) {
			op = clean[:1]
		}
		if err := checkRollable(raw, op, strings.TrimLeft(clean, "+-*/")); err != nil {
			return None, err
		}
		if op != "" {
			return Modifier(raw), nil
		}
		return Modifier("+" + raw), nil
	}

	if err := checkTokens(raw, tokenize(clean)); err != nil {
		return None, err
	}

	if startsWithOperator(clean) {
		return Modifier(raw), nil
	}
	return Modifier(" + " + raw), nil
}

// checkTokens enforces strict alternation. A leading operator is the sign of
// the first term and flips which positions must hold terms.
func checkTokens(raw string, tokens []string) error {
	leadingSign := len(tokens) > 0 && isOperator(tokens[0])

	for i, tok := range tokens {
		wantOperator := i%2 == 0
		if !leadingSign {
			wantOperator = !wantOperator
		}

		if wantOperator {
			if !isOperator(tok) {
				return errors.InvalidModifier(raw, "expected an operator, got "+quote(tok))
			}
			continue
		}
		if !isTerm(tok) {
			return errors.InvalidModifier(raw, "expected a number or dice term, got "+quote(tok))
		}
		op := ""
		if i > 0 {
			op = tokens[i-1]
		}
		if err := checkRollable(raw, op, tok); err != nil {
			return err
		}
	}

	return nil
}

// tokenize splits s into terms and operators, keeping the operators.
// Adjacent operators leave an empty term between them.
func tokenize(s string) []string {
	var tokens []string
	last := 0
	for _, loc := range operators.FindAllStringIndex(s, -1) {
		tokens = append(tokens, s[last:loc[0]], s[loc[0]:loc[1]])
		last = loc[1]
	}
	tokens = append(tokens, s[last:])

	if len(tokens) > 0 && tokens[0] == "" {
		tokens = tokens[1:]
	}
	return tokens
}

// checkRollable rejects well-formed terms the dice engine cannot roll:
// dice counts outside 1..MaxDiceCount, zero-faced dice, constants that
// overflow int and division by a literal zero.
func checkRollable(raw, op, term string) error {
	if count, faces, ok := strings.Cut(term, "d"); ok {
		n, err := strconv.Atoi(count)
		if err != nil || n < 1 || n > engine.MaxDiceCount {
			return errors.InvalidModifier(raw, fmt.Sprintf("dice count must be between 1 and %d", engine.MaxDiceCount))
		}
		if f, err := strconv.Atoi(faces); err != nil || f < 1 {
			return errors.InvalidModifier(raw, "dice must have at least one face")
		}
		return nil
	}

	n, err := strconv.Atoi(term)
	if err != nil {
		return errors.InvalidModifier(raw, "constant "+quote(term)+" out of range")
	}
	if op == "/" && n == 0 {
		return errors.InvalidModifier(raw, "division by zero")
	}
	return nil
}

func isTerm(s string) bool {
	return numberTerm.MatchString(s) || diceTerm.MatchString(s)
}

func isOperator(s string) bool {
	switch s {
	case "+", "-", "*", "/":
		return true
	default:
		return false
	}
}

func startsWithOperator(s string) bool {
	return s != "" && isOperator(s[:1])
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func quote(tok string) string {
	if tok == "" {
		return "nothing"
	}
	return `"` + tok + `"`
}
