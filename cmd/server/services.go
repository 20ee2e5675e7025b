package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/KirkDiggler/active-defence/internal/config"
	"github.com/KirkDiggler/active-defence/internal/engine"
	"github.com/KirkDiggler/active-defence/internal/engine/rpgtoolkit"
	dicesvc "github.com/KirkDiggler/active-defence/internal/orchestrators/dice"
	"github.com/KirkDiggler/active-defence/internal/orchestrators/defence"
	"github.com/KirkDiggler/active-defence/internal/pkg/clock"
	"github.com/KirkDiggler/active-defence/internal/pkg/idgen"
	"github.com/KirkDiggler/active-defence/internal/redis"
	dicesession "github.com/KirkDiggler/active-defence/internal/repositories/dice_session"
)

// backend holds the session store and dice engine shared by the services
// each command builds
type backend struct {
	repo   dicesession.Repository
	engine engine.Engine
	close  func()
}

func newBackend(ctx context.Context, cfg config.Config, roller dice.Roller) (*backend, error) {
	repo, closeRepo, err := newDiceSessionRepository(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}

	adapter, err := rpgtoolkit.NewAdapter(&rpgtoolkit.AdapterConfig{
		DiceRoller: roller,
	})
	if err != nil {
		closeRepo()
		return nil, fmt.Errorf("failed to create dice engine: %w", err)
	}

	return &backend{
		repo:   repo,
		engine: adapter,
		close:  closeRepo,
	}, nil
}

func (b *backend) diceService(cfg config.Config) (dicesvc.Service, error) {
	service, err := dicesvc.NewOrchestrator(&dicesvc.Config{
		Engine:          b.engine,
		DiceSessionRepo: b.repo,
		IDGenerator:     idgen.NewUUID("roll"),
		SessionTTL:      cfg.Dice.SessionTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create dice service: %w", err)
	}
	return service, nil
}

func (b *backend) defenceService(cfg config.Config) (defence.Service, error) {
	var bus events.EventBus
	if cfg.Defence.PublishEvents {
		bus = events.NewBus()
		bus.SubscribeFunc(defence.EventDefenceRolled, 0, logDefenceEvent)
	}

	service, err := defence.NewOrchestrator(&defence.Config{
		Engine:          b.engine,
		DiceSessionRepo: b.repo,
		IDGenerator:     idgen.NewUUID("defence"),
		EventBus:        bus,
		ChatName:        cfg.Defence.ChatName,
		HistoryTTL:      cfg.Defence.HistoryTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create defence service: %w", err)
	}
	return service, nil
}

func logDefenceEvent(_ context.Context, event events.Event) error {
	rollID, _ := event.Context().Get(defence.EventKeyRollID)
	total, _ := event.Context().Get(defence.EventKeyAcceptedTotal)
	outcome, _ := event.Context().Get(defence.EventKeyOutcome)

	slog.Debug("Defence event published",
		"actor_id", event.Source().GetID(),
		"roll_id", rollID,
		"accepted_total", total,
		"outcome", outcome,
	)
	return nil
}

func newDiceSessionRepository(ctx context.Context, cfg config.Redis) (dicesession.Repository, func(), error) {
	if cfg.URL == "" {
		slog.Info("No Redis URL configured, using in-memory dice sessions")
		return dicesession.NewInMemory(clock.New()), func() {}, nil
	}

	client, err := redis.NewClient(cfg.URL, &redis.Options{
		PoolSize: cfg.PoolSize,
		UseTLS:   cfg.UseTLS,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create redis client: %w", err)
	}

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close() // nolint:errcheck // already failing
		return nil, nil, fmt.Errorf("failed to reach redis: %w", err)
	}

	repo, err := dicesession.NewRedisRepository(&dicesession.Config{
		Client: client,
		Clock:  clock.New(),
	})
	if err != nil {
		_ = client.Close() // nolint:errcheck // already failing
		return nil, nil, fmt.Errorf("failed to create dice session repository: %w", err)
	}

	closeFn := func() {
		if err := client.Close(); err != nil {
			slog.Warn("Failed to close redis client", "error", err)
		}
	}
	return repo, closeFn, nil
}
