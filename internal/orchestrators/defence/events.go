package defence

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/rpg-toolkit/events"
)

// EventDefenceRolled is published after every resolved defence roll.
// The actor is the event source; there is no target.
const EventDefenceRolled = "active_defence.rolled"

// Event context keys
const (
	EventKeyRollID        = "roll_id"
	EventKeyAcceptedDie   = "accepted_die"
	EventKeyAcceptedTotal = "accepted_total"
	EventKeyDiscardedDie  = "discarded_die"
	EventKeyRollType      = "roll_type"
	EventKeyOutcome       = "outcome"
	EventKeyBlind         = "blind"
)

func (o *orchestrator) publish(ctx context.Context, input *RollDefenceInput, output *RollDefenceOutput) {
	if o.eventBus == nil {
		return
	}

	event := events.NewGameEvent(EventDefenceRolled, input.Actor, nil)
	event.Context().Set(EventKeyRollID, output.RollID)
	event.Context().Set(EventKeyAcceptedDie, output.Roll.AcceptedDie)
	event.Context().Set(EventKeyAcceptedTotal, output.Roll.AcceptedTotal)
	event.Context().Set(EventKeyRollType, input.RollType.String())
	event.Context().Set(EventKeyOutcome, string(output.Outcome))
	event.Context().Set(EventKeyBlind, output.Visibility.Blind)
	if output.Roll.DiscardedDie != nil {
		event.Context().Set(EventKeyDiscardedDie, *output.Roll.DiscardedDie)
	}

	if err := o.eventBus.Publish(ctx, event); err != nil {
		slog.Warn("Failed to publish defence event",
			"actor_id", input.Actor.ID,
			"roll_id", output.RollID,
			"error", err,
		)
	}
}
