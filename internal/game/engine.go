// internal/game/engine.go
package game

import "encoding/json"

// Type names a supported game.
type Type string

const (
	Connect4 Type = "connect4"
	Checkers Type = "checkers"
	Uno      Type = "uno"
)

// ParseType validates a client-supplied game name.
func ParseType(s string) (Type, bool) {
	switch Type(s) {
	case Connect4, Checkers, Uno:
		return Type(s), true
	}
	return "", false
}

// State is the engine-agnostic view of a game state the room needs to drive turns.
// Every engine call returns a full replacement; states are never patched in place.
type State interface {
	CurrentSeat() int
	IsTerminal() bool
	// Winners returns the winning seats. Empty on a tie or while the game is running.
	Winners() []int
}

// Engine is a pure reducer over one game's state. Implementations do no I/O
// and never mutate the state they are given.
type Engine interface {
	Type() Type
	NewState(seats int, seed uint64) (State, error)
	Apply(s State, seat int, action json.RawMessage) (State, error)
	// View projects the state for one seat, hiding whatever that seat may not see.
	View(s State, seat int) any
	// Forfeit ends the game with the given seat losing.
	Forfeit(s State, seat int) State
}

// OutOfTurnActor is implemented by engines that accept some actions from a seat
// that is not currently to move.
type OutOfTurnActor interface {
	OutOfTurn(action json.RawMessage) bool
}

// LastCallState is implemented by states that track a seat which must announce
// its last card within a window enforced by the room.
type LastCallState interface {
	PendingLastCall() (seat int, ok bool)
}
