package defence

import (
	"strings"

	"github.com/KirkDiggler/rpg-toolkit/core"

	"github.com/KirkDiggler/active-defence/internal/errors"
	dicesession "github.com/KirkDiggler/active-defence/internal/repositories/dice_session"
)

// RollType selects how many d20s are rolled and which one is kept
type RollType int

// Roll types
const (
	RollTypeNormal RollType = iota
	RollTypeAdvantage
	RollTypeDisadvantage
)

// String returns the lowercase name of the roll type
func (t RollType) String() string {
	switch t {
	case RollTypeNormal:
		return "normal"
	case RollTypeAdvantage:
		return "advantage"
	case RollTypeDisadvantage:
		return "disadvantage"
	default:
		return "unknown"
	}
}

// Valid reports whether t is one of the defined roll types
func (t RollType) Valid() bool {
	return t >= RollTypeNormal && t <= RollTypeDisadvantage
}

// Formula returns the base d20 formula for the roll type
func (t RollType) Formula() string {
	switch t {
	case RollTypeAdvantage:
		return "2d20kh"
	case RollTypeDisadvantage:
		return "2d20kl"
	default:
		return "1d20"
	}
}

// DiceCount returns how many d20s the base formula rolls
func (t RollType) DiceCount() int {
	if t == RollTypeNormal {
		return 1
	}
	return 2
}

// ParseRollType parses "normal", "advantage" or "disadvantage" (or the
// short forms "adv" and "dis"). Empty input is Normal.
func ParseRollType(s string) (RollType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return RollTypeNormal, nil
	case "advantage", "adv":
		return RollTypeAdvantage, nil
	case "disadvantage", "dis":
		return RollTypeDisadvantage, nil
	default:
		return RollTypeNormal, errors.InvalidArgumentf("unknown roll type %q", s)
	}
}

// RollMode controls who sees a defence roll
type RollMode int

// Roll modes
const (
	RollModePublic RollMode = iota
	RollModePrivateGM
	RollModeBlindGM
	RollModeSelf
)

// String returns the host's roll mode identifier
func (m RollMode) String() string {
	switch m {
	case RollModePublic:
		return "roll"
	case RollModePrivateGM:
		return "gmroll"
	case RollModeBlindGM:
		return "blindroll"
	case RollModeSelf:
		return "selfroll"
	default:
		return "unknown"
	}
}

// Label returns the name shown in roll dialogs
func (m RollMode) Label() string {
	switch m {
	case RollModePublic:
		return "Public Roll"
	case RollModePrivateGM:
		return "Private GM Roll"
	case RollModeBlindGM:
		return "Blind GM Roll"
	case RollModeSelf:
		return "Self"
	default:
		return "Unknown"
	}
}

// Valid reports whether m is one of the defined roll modes
func (m RollMode) Valid() bool {
	return m >= RollModePublic && m <= RollModeSelf
}

// ParseRollMode accepts an identifier ("roll", "gmroll", "blindroll",
// "selfroll") or a dialog label. Empty input is Public.
func ParseRollMode(s string) (RollMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "roll", "public", "public roll":
		return RollModePublic, nil
	case "gmroll", "private", "private gm roll":
		return RollModePrivateGM, nil
	case "blindroll", "blind", "blind gm roll":
		return RollModeBlindGM, nil
	case "selfroll", "self":
		return RollModeSelf, nil
	default:
		return RollModePublic, errors.InvalidArgumentf("unknown roll mode %q", s)
	}
}

// Outcome classifies the accepted d20
type Outcome string

// Outcomes
const (
	OutcomeNormal   Outcome = "normal"
	OutcomeCritical Outcome = "critical"
	OutcomeFumble   Outcome = "fumble"
)

// OutcomeFor classifies an accepted d20 face
func OutcomeFor(face int) Outcome {
	switch face {
	case 20:
		return OutcomeCritical
	case 1:
		return OutcomeFumble
	default:
		return OutcomeNormal
	}
}

// Actor is the defending creature
type Actor struct {
	ID          string
	Name        string
	ArmourClass int
}

// GetID returns the actor's ID
func (a *Actor) GetID() string {
	return a.ID
}

// GetType returns the entity type for rpg-toolkit
func (a *Actor) GetType() string {
	return "actor"
}

var _ core.Entity = (*Actor)(nil)

// User is a player or game master who may receive whispered rolls
type User struct {
	ID   string
	IsGM bool
}

// Visibility lists the whisper recipients of a roll. An empty Whisper
// means the roll is public.
type Visibility struct {
	Whisper []string
	Blind   bool
}

// ResolvedRoll is the outcome of a single defence roll.
// AcceptedTotal is always AcceptedDie plus the armour class.
type ResolvedRoll struct {
	AcceptedTotal int
	AcceptedDie   int

	// Nil for normal rolls
	DiscardedDie *int

	// Formula submitted to the dice engine
	UsedExpression string

	// Engine total for the whole formula, modifier included. Display only.
	FormulaTotal int
}

// RollDefenceInput defines the request for an active defence roll
type RollDefenceInput struct {
	Actor *Actor

	// User asking for the roll; receives Self rolls
	RequestedBy string

	// Users known to the table; game masters receive GM rolls
	Users []User

	RollType RollType
	RollMode RollMode

	// Free-text situational modifier, e.g. "+2" or "1d4"
	Modifier string

	// Appended to the chat title when set
	TitleSuffix string
}

// RollDefenceOutput defines the response for an active defence roll
type RollDefenceOutput struct {
	RollID     string
	Title      string
	Roll       *ResolvedRoll
	Visibility Visibility
	Outcome    Outcome

	// Normalized modifier that was rolled, empty when none applied
	Modifier string

	// True when the supplied modifier text was rejected and ignored
	ModifierRejected bool
}

// GetHistoryInput defines the request for an actor's defence history
type GetHistoryInput struct {
	ActorID string
}

// GetHistoryOutput defines the response for an actor's defence history
type GetHistoryOutput struct {
	Session *dicesession.DiceSession
}
