// Package dicesession provides repository interface and types for dice roll sessions
package dicesession

import (
	"context"
	"time"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=dicesessionmock github.com/KirkDiggler/active-defence/internal/repositories/dice_session Repository

// DefaultTTL is used when a caller does not specify how long a session lives
const DefaultTTL = 15 * time.Minute

// DiceSession represents a collection of dice rolls grouped by entity and context
type DiceSession struct {
	// Entity that owns these rolls (e.g., "actor_123")
	EntityID string

	// Context for grouping related rolls (e.g., "active_defence")
	Context string

	// The actual dice rolls in this session
	Rolls []DiceRoll

	// When this session was created
	CreatedAt time.Time

	// When this session expires
	ExpiresAt time.Time
}

// DiceRoll represents a single dice roll result
type DiceRoll struct {
	// Unique identifier for this roll within the session
	RollID string

	// Formula that was rolled (e.g., "2d20kh + 1d4")
	Notation string

	// Dice values that counted toward the total
	Dice []int32

	// Final result after applying modifiers
	Total int32

	// Dice discarded by keep-highest or keep-lowest
	Dropped []int32

	// Human-readable description of the roll
	Description string

	// Raw dice total before modifiers
	DiceTotal int32

	// Modifier applied to get final total
	Modifier int32
}

// AppendInput contains parameters for adding rolls to a dice session.
// TTL applies only when the session does not exist yet.
type AppendInput struct {
	EntityID string
	Context  string
	Rolls    []DiceRoll
	TTL      time.Duration
}

// AppendOutput contains the session after the rolls were added
type AppendOutput struct {
	Session *DiceSession
}

// GetInput contains parameters for retrieving a dice session
type GetInput struct {
	EntityID string
	Context  string
}

// GetOutput contains the result of retrieving a dice session
type GetOutput struct {
	Session *DiceSession
}

// DeleteInput contains parameters for deleting a dice session
type DeleteInput struct {
	EntityID string
	Context  string
}

// DeleteOutput contains the result of deleting a dice session
type DeleteOutput struct {
	RollsDeleted int32
}

// Repository defines the interface for dice session storage operations
type Repository interface {
	// Append adds rolls to a session, creating it when missing or expired
	Append(ctx context.Context, input AppendInput) (*AppendOutput, error)

	// Get retrieves a dice session by entity ID and context
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Delete removes a dice session
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)
}

const (
	errEntityIDEmpty = "entity ID cannot be empty"
	errContextEmpty  = "context cannot be empty"
)

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}
