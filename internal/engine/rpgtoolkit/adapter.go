// Package rpgtoolkit implements the dice engine on top of rpg-toolkit's roller.
package rpgtoolkit

import (
	"context"
	"sort"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/active-defence/internal/engine"
	"github.com/KirkDiggler/active-defence/internal/errors"
)

// Adapter implements the engine.Engine interface using rpg-toolkit
type Adapter struct {
	diceRoller dice.Roller
}

// AdapterConfig contains configuration for creating a new Adapter
type AdapterConfig struct {
	DiceRoller dice.Roller
}

// Validate checks that all required dependencies are provided
func (c *AdapterConfig) Validate() error {
	if c.DiceRoller == nil {
		return errors.InvalidArgument("dice roller is required")
	}
	return nil
}

// NewAdapter creates a new rpg-toolkit engine adapter
func NewAdapter(cfg *AdapterConfig) (*Adapter, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Adapter{
		diceRoller: cfg.DiceRoller,
	}, nil
}

// Verify that Adapter implements engine.Engine interface
var _ engine.Engine = (*Adapter)(nil)

// Roll parses formula, rolls every dice group and totals the result
func (a *Adapter) Roll(ctx context.Context, formula string) (*engine.Roll, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeCanceled, "roll canceled")
	}

	expr, err := engine.Parse(formula)
	if err != nil {
		return nil, err
	}

	for _, term := range expr.Terms {
		if !term.IsDice() {
			continue
		}

		faces, err := a.diceRoller.RollN(term.Count, term.Faces)
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeRollEngine, "failed to roll "+term.Notation())
		}
		if len(faces) != term.Count {
			return nil, errors.RollEnginef("rolled %d dice for %s", len(faces), term.Notation())
		}

		term.Results = make([]engine.DieResult, len(faces))
		for i, face := range faces {
			term.Results[i] = engine.DieResult{Result: face}
		}
		markDiscarded(term)
	}

	total, err := engine.Evaluate(expr.Terms)
	if err != nil {
		return nil, err
	}

	return &engine.Roll{
		Formula: expr.String(),
		Terms:   expr.Terms,
		Total:   total,
	}, nil
}

// markDiscarded flags all but the KeepCount highest (or lowest) faces.
// On equal faces the earlier die is kept.
func markDiscarded(term *engine.Term) {
	if term.Keep == engine.KeepAll {
		return
	}

	order := make([]int, len(term.Results))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := term.Results[order[i]].Result, term.Results[order[j]].Result
		if term.Keep == engine.KeepHighest {
			return a > b
		}
		return a < b
	})

	for _, idx := range order[term.KeepCount:] {
		term.Results[idx].Discarded = true
	}
}
