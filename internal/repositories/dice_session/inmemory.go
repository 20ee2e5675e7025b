package dicesession

import (
	"context"
	"sync"

	"github.com/KirkDiggler/active-defence/internal/errors"
	"github.com/KirkDiggler/active-defence/internal/pkg/clock"
)

// InMemoryRepository implements Repository using in-memory storage.
// Used when no Redis endpoint is configured.
type InMemoryRepository struct {
	mu    sync.RWMutex
	clock clock.Clock
	store map[string]*DiceSession
}

// NewInMemory creates a new in-memory repository
func NewInMemory(clk clock.Clock) *InMemoryRepository {
	if clk == nil {
		clk = clock.New()
	}
	return &InMemoryRepository{
		clock: clk,
		store: make(map[string]*DiceSession),
	}
}

var _ Repository = (*InMemoryRepository)(nil)

// Append adds rolls to a session, creating it when missing or expired
func (r *InMemoryRepository) Append(_ context.Context, input AppendInput) (*AppendOutput, error) {
	if err := validateKey(input.EntityID, input.Context); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	key := memKey(input.EntityID, input.Context)

	session, ok := r.store[key]
	if !ok || !now.Before(session.ExpiresAt) {
		session = &DiceSession{
			EntityID:  input.EntityID,
			Context:   input.Context,
			CreatedAt: now,
			ExpiresAt: now.Add(ttlOrDefault(input.TTL)),
		}
		r.store[key] = session
	}
	session.Rolls = append(session.Rolls, copyRolls(input.Rolls)...)

	return &AppendOutput{Session: copySession(session)}, nil
}

// Get retrieves a dice session by entity ID and context
func (r *InMemoryRepository) Get(_ context.Context, input GetInput) (*GetOutput, error) {
	if err := validateKey(input.EntityID, input.Context); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := memKey(input.EntityID, input.Context)
	session, ok := r.store[key]
	if !ok {
		return nil, errors.NotFound("dice session not found")
	}
	if r.clock.Now().After(session.ExpiresAt) {
		delete(r.store, key)
		return nil, errors.NotFound("dice session has expired")
	}

	return &GetOutput{Session: copySession(session)}, nil
}

// Delete removes a dice session
func (r *InMemoryRepository) Delete(_ context.Context, input DeleteInput) (*DeleteOutput, error) {
	if err := validateKey(input.EntityID, input.Context); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := memKey(input.EntityID, input.Context)

	var rollsDeleted int32
	if session, ok := r.store[key]; ok && !r.clock.Now().After(session.ExpiresAt) {
		// nolint:gosec // roll count is always small
		rollsDeleted = int32(len(session.Rolls))
	}
	delete(r.store, key)

	return &DeleteOutput{RollsDeleted: rollsDeleted}, nil
}

func memKey(entityID, context string) string {
	return entityID + ":" + context
}

func copySession(s *DiceSession) *DiceSession {
	out := *s
	out.Rolls = copyRolls(s.Rolls)
	return &out
}

func copyRolls(rolls []DiceRoll) []DiceRoll {
	if rolls == nil {
		return nil
	}
	out := make([]DiceRoll, len(rolls))
	for i, roll := range rolls {
		out[i] = roll
		out[i].Dice = append([]int32(nil), roll.Dice...)
		out[i].Dropped = append([]int32(nil), roll.Dropped...)
	}
	return out
}
