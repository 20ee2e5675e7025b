// Package defence implements the active defence roll: modifier handling,
// d20 selection, visibility and roll history.
package defence

//go:generate mockgen -destination=mock/mock_service.go -package=defencemock github.com/KirkDiggler/active-defence/internal/orchestrators/defence Service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/KirkDiggler/active-defence/internal/engine"
	"github.com/KirkDiggler/active-defence/internal/errors"
	"github.com/KirkDiggler/active-defence/internal/modifier"
	"github.com/KirkDiggler/active-defence/internal/pkg/idgen"
	dicesession "github.com/KirkDiggler/active-defence/internal/repositories/dice_session"
)

const (
	// DefaultChatName titles a defence roll when no chat name is configured
	DefaultChatName = "Defence Roll"

	// HistoryContext groups defence rolls in an actor's dice session
	HistoryContext = "active_defence"

	// DefaultHistoryTTL is how long an actor's defence history is kept
	DefaultHistoryTTL = time.Hour

	tracerName = "github.com/KirkDiggler/active-defence/internal/orchestrators/defence"
)

// Service defines the interface for active defence rolls
type Service interface {
	RollDefence(ctx context.Context, input *RollDefenceInput) (*RollDefenceOutput, error)
	GetHistory(ctx context.Context, input *GetHistoryInput) (*GetHistoryOutput, error)
}

// Config holds the dependencies for the defence orchestrator
type Config struct {
	Engine          engine.Engine
	DiceSessionRepo dicesession.Repository
	IDGenerator     idgen.Generator

	// Optional; when set a DefenceRolled event is published per roll
	EventBus events.EventBus

	// Chat title; DefaultChatName when empty
	ChatName   string
	HistoryTTL time.Duration
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
	if c.HistoryTTL < 0 {
		vb.Field("HistoryTTL", "must not be negative")
	}

	return vb.Build()
}

type orchestrator struct {
	resolver        *Resolver
	diceSessionRepo dicesession.Repository
	idGen           idgen.Generator
	eventBus        events.EventBus
	chatName        string
	historyTTL      time.Duration
	tracer          trace.Tracer
}

// NewOrchestrator creates a new defence orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	resolver, err := NewResolver(cfg.Engine)
	if err != nil {
		return nil, err
	}

	chatName := cfg.ChatName
	if chatName == "" {
		chatName = DefaultChatName
	}
	ttl := cfg.HistoryTTL
	if ttl == 0 {
		ttl = DefaultHistoryTTL
	}

	return &orchestrator{
		resolver:        resolver,
		diceSessionRepo: cfg.DiceSessionRepo,
		idGen:           cfg.IDGenerator,
		eventBus:        cfg.EventBus,
		chatName:        chatName,
		historyTTL:      ttl,
		tracer:          otel.Tracer(tracerName),
	}, nil
}

func validateRollDefenceInput(input *RollDefenceInput) error {
	if input == nil {
		return errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	if input.Actor == nil {
		vb.RequiredField("Actor")
	} else {
		errors.ValidateRequired("Actor.ID", input.Actor.ID, vb)
	}
	if !input.RollType.Valid() {
		vb.Fieldf("RollType", "unknown roll type %d", input.RollType)
	}
	if !input.RollMode.Valid() {
		vb.Fieldf("RollMode", "unknown roll mode %d", input.RollMode)
	}
	if input.RollMode == RollModeSelf {
		errors.ValidateRequired("RequestedBy", input.RequestedBy, vb)
	}

	return vb.Build()
}

// RollDefence rolls an active defence for the actor. A rejected modifier is
// dropped and the roll proceeds without it. History failures are logged and
// do not fail the roll.
func (o *orchestrator) RollDefence(ctx context.Context, input *RollDefenceInput) (*RollDefenceOutput, error) {
	if err := validateRollDefenceInput(input); err != nil {
		return nil, err
	}

	ctx, span := o.tracer.Start(ctx, "defence.RollDefence", trace.WithAttributes(
		attribute.String("actor.id", input.Actor.ID),
		attribute.String("roll.type", input.RollType.String()),
		attribute.String("roll.mode", input.RollMode.String()),
	))
	defer span.End()

	output := &RollDefenceOutput{
		Title:      o.title(input.TitleSuffix),
		Visibility: VisibilityFor(input.RollMode, input.RequestedBy, input.Users),
	}

	mod, err := modifier.Validate(input.Modifier)
	if err != nil {
		slog.Warn("Ignoring invalid defence modifier",
			"actor_id", input.Actor.ID,
			"modifier", input.Modifier,
			"error", err,
		)
		span.AddEvent("modifier rejected")
		output.ModifierRejected = true
		mod = modifier.None
	}
	output.Modifier = mod.String()

	resolved, err := o.resolver.Resolve(ctx, input.Actor.ArmourClass, input.RollType, mod)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "defence roll failed")
		slog.Error("Defence roll failed",
			"actor_id", input.Actor.ID,
			"roll_type", input.RollType.String(),
			"error", err,
		)
		return nil, errors.Wrap(err, "failed to resolve defence roll")
	}

	output.Roll = resolved
	output.Outcome = OutcomeFor(resolved.AcceptedDie)
	output.RollID = o.idGen.Generate()

	span.SetAttributes(
		attribute.String("roll.formula", resolved.UsedExpression),
		attribute.Int("roll.accepted_die", resolved.AcceptedDie),
		attribute.Int("roll.accepted_total", resolved.AcceptedTotal),
	)

	o.recordHistory(ctx, input, output)
	o.publish(ctx, input, output)

	slog.Info("Defence rolled",
		"actor_id", input.Actor.ID,
		"roll_id", output.RollID,
		"formula", resolved.UsedExpression,
		"accepted_die", resolved.AcceptedDie,
		"accepted_total", resolved.AcceptedTotal,
		"outcome", string(output.Outcome),
		"mode", input.RollMode.String(),
	)

	return output, nil
}

// GetHistory returns the actor's recorded defence rolls
func (o *orchestrator) GetHistory(ctx context.Context, input *GetHistoryInput) (*GetHistoryOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.ActorID == "" {
		return nil, errors.InvalidArgument("actor ID is required")
	}

	getOutput, err := o.diceSessionRepo.Get(ctx, dicesession.GetInput{
		EntityID: input.ActorID,
		Context:  HistoryContext,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get defence history")
	}

	return &GetHistoryOutput{
		Session: getOutput.Session,
	}, nil
}

func (o *orchestrator) title(suffix string) string {
	if suffix == "" {
		return o.chatName
	}
	return o.chatName + " - " + suffix
}

// recordHistory appends the roll to the actor's session. The roll has
// already happened, so storage errors are only logged.
func (o *orchestrator) recordHistory(ctx context.Context, input *RollDefenceInput, output *RollDefenceOutput) {
	resolved := output.Roll

	roll := dicesession.DiceRoll{
		RollID:   output.RollID,
		Notation: resolved.UsedExpression,
		// nolint:gosec // d20 faces and armour classes are small
		Dice: []int32{int32(resolved.AcceptedDie)},
		// nolint:gosec // d20 faces and armour classes are small
		Total: int32(resolved.AcceptedTotal),
		// nolint:gosec // d20 faces and armour classes are small
		DiceTotal: int32(resolved.AcceptedDie),
		// nolint:gosec // d20 faces and armour classes are small
		Modifier:    int32(input.Actor.ArmourClass),
		Description: fmt.Sprintf("%s (%s, %s)", output.Title, input.RollType, input.RollMode.Label()),
	}
	if resolved.DiscardedDie != nil {
		// nolint:gosec // d20 faces are small
		roll.Dropped = []int32{int32(*resolved.DiscardedDie)}
	}

	_, err := o.diceSessionRepo.Append(ctx, dicesession.AppendInput{
		EntityID: input.Actor.ID,
		Context:  HistoryContext,
		Rolls:    []dicesession.DiceRoll{roll},
		TTL:      o.historyTTL,
	})
	if err != nil {
		slog.Warn("Failed to record defence roll history",
			"actor_id", input.Actor.ID,
			"roll_id", output.RollID,
			"error", err,
		)
	}
}
