// Package dice implements the dice orchestrator for handling dice roll sessions
package dice

//go:generate mockgen -destination=mock/mock_service.go -package=dicemock github.com/KirkDiggler/active-defence/internal/orchestrators/dice Service

import (
	"context"
	"log/slog"
	"time"

	"github.com/KirkDiggler/active-defence/internal/engine"
	"github.com/KirkDiggler/active-defence/internal/errors"
	"github.com/KirkDiggler/active-defence/internal/pkg/idgen"
	dicesession "github.com/KirkDiggler/active-defence/internal/repositories/dice_session"
)

// DefaultSessionTTL is used when a roll does not specify one
const DefaultSessionTTL = 15 * time.Minute

// Service defines the interface for dice operations
type Service interface {
	RollDice(ctx context.Context, input *RollDiceInput) (*RollDiceOutput, error)
	GetRollSession(ctx context.Context, input *GetRollSessionInput) (*GetRollSessionOutput, error)
	ClearRollSession(ctx context.Context, input *ClearRollSessionInput) (*ClearRollSessionOutput, error)
}

// Config holds the dependencies for the dice orchestrator
type Config struct {
	Engine          engine.Engine
	DiceSessionRepo dicesession.Repository
	IDGenerator     idgen.Generator
	SessionTTL      time.Duration
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Engine == nil {
		vb.RequiredField("Engine")
	}
	if c.DiceSessionRepo == nil {
		vb.RequiredField("DiceSessionRepo")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}
	if c.SessionTTL < 0 {
		vb.Field("SessionTTL", "must not be negative")
	}

	return vb.Build()
}

type orchestrator struct {
	engine          engine.Engine
	diceSessionRepo dicesession.Repository
	idGen           idgen.Generator
	sessionTTL      time.Duration
}

// NewOrchestrator creates a new dice orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	ttl := cfg.SessionTTL
	if ttl == 0 {
		ttl = DefaultSessionTTL
	}

	return &orchestrator{
		engine:          cfg.Engine,
		diceSessionRepo: cfg.DiceSessionRepo,
		idGen:           cfg.IDGenerator,
		sessionTTL:      ttl,
	}, nil
}

// RollDice rolls a formula and appends the result to the entity's session
func (o *orchestrator) RollDice(ctx context.Context, input *RollDiceInput) (*RollDiceOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EntityID == "" {
		return nil, errors.InvalidArgument("entity ID is required")
	}
	if input.Context == "" {
		return nil, errors.InvalidArgument("context is required")
	}
	if input.Notation == "" {
		return nil, errors.InvalidArgument("dice notation is required")
	}

	result, err := o.engine.Roll(ctx, input.Notation)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to roll %s", input.Notation)
	}

	roll := NewDiceRoll(o.idGen.Generate(), result, input.Description)

	ttl := input.TTL
	if ttl == 0 {
		ttl = o.sessionTTL
	}

	appendOutput, err := o.diceSessionRepo.Append(ctx, dicesession.AppendInput{
		EntityID: input.EntityID,
		Context:  input.Context,
		Rolls:    []dicesession.DiceRoll{*roll},
		TTL:      ttl,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to record dice roll")
	}

	slog.Info("Dice rolled successfully",
		"entity_id", input.EntityID,
		"context", input.Context,
		"notation", roll.Notation,
		"total", roll.Total,
		"roll_id", roll.RollID,
	)

	return &RollDiceOutput{
		Roll:    roll,
		Session: appendOutput.Session,
	}, nil
}

// GetRollSession retrieves an existing dice roll session
func (o *orchestrator) GetRollSession(ctx context.Context, input *GetRollSessionInput) (*GetRollSessionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EntityID == "" {
		return nil, errors.InvalidArgument("entity ID is required")
	}
	if input.Context == "" {
		return nil, errors.InvalidArgument("context is required")
	}

	getOutput, err := o.diceSessionRepo.Get(ctx, dicesession.GetInput{
		EntityID: input.EntityID,
		Context:  input.Context,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get dice session")
	}

	return &GetRollSessionOutput{
		Session: getOutput.Session,
	}, nil
}

// ClearRollSession removes a dice roll session
func (o *orchestrator) ClearRollSession(ctx context.Context, input *ClearRollSessionInput) (*ClearRollSessionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EntityID == "" {
		return nil, errors.InvalidArgument("entity ID is required")
	}
	if input.Context == "" {
		return nil, errors.InvalidArgument("context is required")
	}

	deleteOutput, err := o.diceSessionRepo.Delete(ctx, dicesession.DeleteInput{
		EntityID: input.EntityID,
		Context:  input.Context,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to delete dice session")
	}

	slog.Info("Dice session cleared",
		"entity_id", input.EntityID,
		"context", input.Context,
		"rolls_deleted", deleteOutput.RollsDeleted,
	)

	return &ClearRollSessionOutput{
		RollsDeleted: deleteOutput.RollsDeleted,
	}, nil
}

// NewDiceRoll flattens an engine roll into a session record
func NewDiceRoll(rollID string, result *engine.Roll, description string) *dicesession.DiceRoll {
	roll := &dicesession.DiceRoll{
		RollID:      rollID,
		Notation:    result.Formula,
		Description: description,
		// nolint:gosec // dice totals are bounded by MaxDiceCount
		Total: int32(result.Total),
		// nolint:gosec // dice totals are bounded by MaxDiceCount
		DiceTotal: int32(result.DiceTotal()),
	}
	roll.Modifier = roll.Total - roll.DiceTotal

	for _, group := range result.DiceGroups() {
		roll.Dice = append(roll.Dice, toInt32(group.Kept())...)
		roll.Dropped = append(roll.Dropped, toInt32(group.Dropped())...)
	}

	return roll
}

func toInt32(values []int) []int32 {
	out := make([]int32, len(values))
	for i, v := range values {
		// nolint:gosec // die faces are small
		out[i] = int32(v)
	}
	return out
}
