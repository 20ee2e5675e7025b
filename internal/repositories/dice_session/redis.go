package dicesession

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/active-defence/internal/errors"
	"github.com/KirkDiggler/active-defence/internal/pkg/clock"
	redisclient "github.com/KirkDiggler/active-defence/internal/redis"
)

const (
	// Key pattern: dice_session:{entity_id}:{context}
	sessionKeyPrefix = "dice_session:"

	// Optimistic append attempts before giving up on a contended key
	maxAppendAttempts = 5
)

// Config holds the configuration for the Redis repository
type Config struct {
	Client redisclient.Client
	Clock  clock.Clock
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c.Client == nil {
		return errors.InvalidArgument("redis client is required")
	}
	if c.Clock == nil {
		return errors.InvalidArgument("clock is required")
	}
	return nil
}

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
}

// NewRedisRepository creates a new Redis repository for dice sessions
func NewRedisRepository(cfg *Config) (Repository, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  cfg.Clock,
	}, nil
}

// Ensure redisRepository implements Repository
var _ Repository = (*redisRepository)(nil)

// Append adds rolls under WATCH so concurrent appends to one key do not
// overwrite each other
func (r *redisRepository) Append(ctx context.Context, input AppendInput) (*AppendOutput, error) {
	if err := validateKey(input.EntityID, input.Context); err != nil {
		return nil, err
	}

	key := r.buildKey(input.EntityID, input.Context)

	var session *DiceSession
	txf := func(tx *redis.Tx) error {
		now := r.clock.Now()

		existing, err := r.read(ctx, tx, key)
		switch {
		case err != nil && !errors.IsNotFound(err):
			return err
		case err == nil && now.Before(existing.ExpiresAt):
			session = existing
		default:
			session = &DiceSession{
				EntityID:  input.EntityID,
				Context:   input.Context,
				CreatedAt: now,
				ExpiresAt: now.Add(ttlOrDefault(input.TTL)),
			}
		}

		session.Rolls = append(session.Rolls, input.Rolls...)

		sessionJSON, err := json.Marshal(session)
		if err != nil {
			return errors.Wrapf(err, "failed to marshal session")
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, sessionJSON, session.ExpiresAt.Sub(now))
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxAppendAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return &AppendOutput{Session: session}, nil
		}
		if stderrors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, errors.Wrapf(err, "failed to append to session in Redis")
	}

	return nil, errors.Unavailable("dice session is being modified concurrently")
}

// Get retrieves a dice session by entity ID and context
func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if err := validateKey(input.EntityID, input.Context); err != nil {
		return nil, err
	}

	key := r.buildKey(input.EntityID, input.Context)

	session, err := r.read(ctx, r.client, key)
	if err != nil {
		return nil, err
	}

	// Redis normally evicts first; this covers clock skew between hosts
	if r.clock.Now().After(session.ExpiresAt) {
		_ = r.client.Del(ctx, key)
		return nil, errors.NotFound("dice session has expired")
	}

	return &GetOutput{
		Session: session,
	}, nil
}

// Delete removes a dice session
func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if err := validateKey(input.EntityID, input.Context); err != nil {
		return nil, err
	}

	key := r.buildKey(input.EntityID, input.Context)

	var rollsDeleted int32
	if getOutput, err := r.Get(ctx, GetInput(input)); err == nil {
		// nolint:gosec // roll count is always small
		rollsDeleted = int32(len(getOutput.Session.Rolls))
	}

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to delete session from Redis")
	}

	return &DeleteOutput{
		RollsDeleted: rollsDeleted,
	}, nil
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *redisRepository) read(ctx context.Context, g getter, key string) (*DiceSession, error) {
	sessionJSON, err := g.Get(ctx, key).Bytes()
	if err != nil {
		if stderrors.Is(err, redis.Nil) {
			return nil, errors.NotFound("dice session not found")
		}
		return nil, errors.Wrapf(err, "failed to get session from Redis")
	}

	var session DiceSession
	if err := json.Unmarshal(sessionJSON, &session); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal session")
	}

	return &session, nil
}

// buildKey creates the Redis key for a dice session
func (r *redisRepository) buildKey(entityID, context string) string {
	return fmt.Sprintf("%s%s:%s", sessionKeyPrefix, entityID, context)
}

func validateKey(entityID, context string) error {
	if entityID == "" {
		return errors.InvalidArgument(errEntityIDEmpty)
	}
	if context == "" {
		return errors.InvalidArgument(errContextEmpty)
	}
	return nil
}
