package engine

import (
	"fmt"
	"strings"
)

// Operator joins a term to the terms before it
type Operator string

// Supported operators
const (
	OpAdd      Operator = "+"
	OpSubtract Operator = "-"
	OpMultiply Operator = "*"
	OpDivide   Operator = "/"
)

// Keep selects which dice of a group count toward the total
type Keep int

// Keep modes
const (
	KeepAll Keep = iota
	KeepHighest
	KeepLowest
)

// String returns the formula qualifier for the keep mode
func (k Keep) String() string {
	switch k {
	case KeepHighest:
		return "kh"
	case KeepLowest:
		return "kl"
	default:
		return ""
	}
}

// DieResult is one rolled face
type DieResult struct {
	Result    int  `json:"result"`
	Discarded bool `json:"discarded"`
}

// Term is a dice group or a constant with the operator that precedes it
type Term struct {
	Operator Operator `json:"operator"`

	// Dice groups
	Count     int         `json:"count,omitempty"`
	Faces     int         `json:"faces,omitempty"`
	Keep      Keep        `json:"keep,omitempty"`
	KeepCount int         `json:"keep_count,omitempty"`
	Results   []DieResult `json:"results,omitempty"`

	// Constants
	Constant int `json:"constant,omitempty"`
}

// IsDice reports whether the term is a dice group
func (t *Term) IsDice() bool {
	return t.Faces > 0
}

// Value returns the sum of kept faces for dice, or the constant
func (t *Term) Value() int {
	if !t.IsDice() {
		return t.Constant
	}

	total := 0
	for _, r := range t.Results {
		if !r.Discarded {
			total += r.Result
		}
	}
	return total
}

// Kept returns the faces that count toward the total
func (t *Term) Kept() []int {
	return t.faces(false)
}

// Dropped returns the faces discarded by a keep qualifier
func (t *Term) Dropped() []int {
	return t.faces(true)
}

func (t *Term) faces(discarded bool) []int {
	var out []int
	for _, r := range t.Results {
		if r.Discarded == discarded {
			out = append(out, r.Result)
		}
	}
	return out
}

// Notation renders the term without its operator, e.g. "2d20kh" or "3"
func (t *Term) Notation() string {
	if !t.IsDice() {
		return fmt.Sprintf("%d", t.Constant)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%dd%d", t.Count, t.Faces)
	if t.Keep != KeepAll {
		sb.WriteString(t.Keep.String())
		if t.KeepCount != 1 {
			fmt.Fprintf(&sb, "%d", t.KeepCount)
		}
	}
	return sb.String()
}

// Expression is a parsed formula
type Expression struct {
	Terms []*Term
}

// String renders the expression in canonical form
func (e *Expression) String() string {
	var sb strings.Builder
	for i, t := range e.Terms {
		switch {
		case i > 0:
			fmt.Fprintf(&sb, " %s ", t.Operator)
		case t.Operator != OpAdd:
			sb.WriteString(string(t.Operator))
		}
		sb.WriteString(t.Notation())
	}
	return sb.String()
}

// Roll is the outcome of rolling a formula
type Roll struct {
	Formula string  `json:"formula"`
	Terms   []*Term `json:"terms"`
	Total   int     `json:"total"`
}

// DiceGroups returns the dice terms in formula order
func (r *Roll) DiceGroups() []*Term {
	var groups []*Term
	for _, t := range r.Terms {
		if t.IsDice() {
			groups = append(groups, t)
		}
	}
	return groups
}

// DiceTotal returns the signed sum of all kept dice, ignoring constants
func (r *Roll) DiceTotal() int {
	total := 0
	for _, t := range r.DiceGroups() {
		switch t.Operator {
		case OpSubtract:
			total -= t.Value()
		case OpAdd:
			total += t.Value()
		}
	}
	return total
}
