package defence

import (
	"context"
	"strings"

	"github.com/KirkDiggler/active-defence/internal/engine"
	"github.com/KirkDiggler/active-defence/internal/errors"
	"github.com/KirkDiggler/active-defence/internal/modifier"
)

// Resolver rolls a defence through the dice engine and selects the
// accepted and discarded d20
type Resolver struct {
	engine engine.Engine
}

// NewResolver creates a resolver backed by the given dice engine
func NewResolver(e engine.Engine) (*Resolver, error) {
	if e == nil {
		return nil, errors.InvalidArgument("engine is required")
	}
	return &Resolver{engine: e}, nil
}

// BuildFormula joins the base formula for rollType and the modifier with a
// single space
func BuildFormula(rollType RollType, mod modifier.Modifier) string {
	base := rollType.Formula()
	if mod.IsNone() {
		return base
	}
	return base + " " + strings.TrimLeft(mod.String(), " \t")
}

// Resolve rolls once and never retries. The engine's discard marking decides
// which d20 is kept; a missing or malformed d20 group is a ROLL_ENGINE error.
func (r *Resolver) Resolve(ctx context.Context, armourClass int, rollType RollType, mod modifier.Modifier) (*ResolvedRoll, error) {
	if !rollType.Valid() {
		return nil, errors.InvalidArgumentf("unknown roll type %d", rollType)
	}

	formula := BuildFormula(rollType, mod)

	roll, err := r.engine.Roll(ctx, formula)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeRollEngine, "dice engine failed to roll "+formula)
	}
	if roll == nil {
		return nil, errors.RollEnginef("dice engine returned no result for %s", formula)
	}

	groups := roll.DiceGroups()
	if len(groups) == 0 {
		return nil, errors.RollEnginef("dice engine returned no die groups for %s", formula)
	}

	d20 := groups[0]
	if d20.Faces != 20 {
		return nil, errors.RollEnginef("first die group of %s is a d%d, expected a d20", formula, d20.Faces)
	}
	if len(d20.Results) != rollType.DiceCount() {
		return nil, errors.RollEnginef("expected %d d20 results for %s, got %d",
			rollType.DiceCount(), formula, len(d20.Results))
	}

	resolved := &ResolvedRoll{
		UsedExpression: formula,
		FormulaTotal:   roll.Total,
	}

	if rollType == RollTypeNormal {
		resolved.AcceptedDie = d20.Results[0].Result
	} else {
		kept, dropped := d20.Kept(), d20.Dropped()
		if len(kept) != 1 || len(dropped) != 1 {
			return nil, errors.RollEnginef("expected one kept and one discarded d20 for %s, got %d kept and %d discarded",
				formula, len(kept), len(dropped))
		}
		resolved.AcceptedDie = kept[0]
		discarded := dropped[0]
		resolved.DiscardedDie = &discarded
	}

	resolved.AcceptedTotal = resolved.AcceptedDie + armourClass

	return resolved, nil
}
