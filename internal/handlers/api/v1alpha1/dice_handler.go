// Package v1alpha1 serves the generic dice gRPC API
package v1alpha1

import (
	"context"

	apiv1alpha1 "github.com/KirkDiggler/rpg-api-protos/gen/go/clients/api/v1alpha1"

	"github.com/KirkDiggler/active-defence/internal/errors"
	"github.com/KirkDiggler/active-defence/internal/orchestrators/dice"
	dicesession "github.com/KirkDiggler/active-defence/internal/repositories/dice_session"
)

// DiceHandlerConfig holds dependencies for the dice handler
type DiceHandlerConfig struct {
	DiceService dice.Service
}

// Validate ensures all required dependencies are present
func (c *DiceHandlerConfig) Validate() error {
	if c.DiceService == nil {
		return errors.InvalidArgument("dice service is required")
	}
	return nil
}

// DiceHandler implements the dice gRPC service
type DiceHandler struct {
	apiv1alpha1.UnimplementedDiceServiceServer
	diceService dice.Service
}

// NewDiceHandler creates a new dice handler with the given configuration
func NewDiceHandler(cfg *DiceHandlerConfig) (*DiceHandler, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &DiceHandler{
		diceService: cfg.DiceService,
	}, nil
}

func validateSessionKey(entityID, sessionContext string, vb *errors.ValidationBuilder) {
	errors.ValidateRequired("entity_id", entityID, vb)
	errors.ValidateRequired("context", sessionContext, vb)
}

// RollDice rolls a formula and returns every roll in the session
func (h *DiceHandler) RollDice(
	ctx context.Context,
	req *apiv1alpha1.RollDiceRequest,
) (*apiv1alpha1.RollDiceResponse, error) {
	vb := errors.NewValidationBuilder()
	validateSessionKey(req.GetEntityId(), req.GetContext(), vb)
	errors.ValidateRequired("notation", req.GetNotation(), vb)
	if err := vb.Build(); err != nil {
		return nil, errors.ToGRPCError(err)
	}

	output, err := h.diceService.RollDice(ctx, &dice.RollDiceInput{
		EntityID:    req.GetEntityId(),
		Context:     req.GetContext(),
		Notation:    req.GetNotation(),
		Description: req.GetModifierDescription(),
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return &apiv1alpha1.RollDiceResponse{
		Rolls:     toProtoRolls(output.Session.Rolls),
		ExpiresAt: output.Session.ExpiresAt.Unix(),
	}, nil
}

// GetRollSession retrieves an existing dice roll session
func (h *DiceHandler) GetRollSession(
	ctx context.Context,
	req *apiv1alpha1.GetRollSessionRequest,
) (*apiv1alpha1.GetRollSessionResponse, error) {
	vb := errors.NewValidationBuilder()
	validateSessionKey(req.GetEntityId(), req.GetContext(), vb)
	if err := vb.Build(); err != nil {
		return nil, errors.ToGRPCError(err)
	}

	output, err := h.diceService.GetRollSession(ctx, &dice.GetRollSessionInput{
		EntityID: req.GetEntityId(),
		Context:  req.GetContext(),
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return &apiv1alpha1.GetRollSessionResponse{
		Rolls:     toProtoRolls(output.Session.Rolls),
		ExpiresAt: output.Session.ExpiresAt.Unix(),
		CreatedAt: output.Session.CreatedAt.Unix(),
	}, nil
}

// ClearRollSession removes a dice roll session
func (h *DiceHandler) ClearRollSession(
	ctx context.Context,
	req *apiv1alpha1.ClearRollSessionRequest,
) (*apiv1alpha1.ClearRollSessionResponse, error) {
	vb := errors.NewValidationBuilder()
	validateSessionKey(req.GetEntityId(), req.GetContext(), vb)
	if err := vb.Build(); err != nil {
		return nil, errors.ToGRPCError(err)
	}

	output, err := h.diceService.ClearRollSession(ctx, &dice.ClearRollSessionInput{
		EntityID: req.GetEntityId(),
		Context:  req.GetContext(),
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return &apiv1alpha1.ClearRollSessionResponse{
		Message:      "Roll session cleared successfully",
		RollsCleared: output.RollsDeleted,
	}, nil
}

func toProtoRolls(rolls []dicesession.DiceRoll) []*apiv1alpha1.DiceRoll {
	out := make([]*apiv1alpha1.DiceRoll, 0, len(rolls))
	for _, roll := range rolls {
		out = append(out, &apiv1alpha1.DiceRoll{
			RollId:      roll.RollID,
			Notation:    roll.Notation,
			Dice:        roll.Dice,
			Total:       roll.Total,
			Dropped:     roll.Dropped,
			Description: roll.Description,
			DiceTotal:   roll.DiceTotal,
			Modifier:    roll.Modifier,
		})
	}
	return out
}
