// internal/game/errors.go
package game

import "errors"

// Error kinds surfaced by game and session operations. Handlers match these
// with errors.Is and translate them into informational messages; none of
// them is fatal.
var (
	// ErrNotFound means an action referenced a game, seat or identity that
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrIllegalTransition means an action is not valid in the game's
	// current state (joining a started game, starting short-handed, etc.).
	// The game state is left untouched.
	ErrIllegalTransition = errors.New("illegal transition")

	// ErrOutOfTurn means a move was submitted by a seat other than the
	// active one. The move is dropped without side effects.
	ErrOutOfTurn = errors.New("out of turn")
)
