// Package engine parses dice formulas and defines the dice engine contract
package engine

//go:generate mockgen -destination=mock/mock_engine.go -package=enginemock github.com/KirkDiggler/active-defence/internal/engine Engine

import (
	"context"
)

// Engine rolls dice formulas such as "2d20kh + 1d4".
//
// The returned Roll carries one Term per formula term. Dice terms list their
// faces in roll order with keep-highest/keep-lowest discards already marked.
type Engine interface {
	Roll(ctx context.Context, formula string) (*Roll, error)
}
