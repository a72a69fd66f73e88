// internal/game/errors.go
package game

// RuleError is an engine rejection. Code is sent to the offending client as is.
type RuleError struct {
	Code string
}

func (e *RuleError) Error() string {
	return "rule violation: " + e.Code
}

var (
	ErrGameOver    = &RuleError{Code: "GAME_OVER"}
	ErrNotYourTurn = &RuleError{Code: "NOT_YOUR_TURN"}
	ErrBadAction   = &RuleError{Code: "BAD_ACTION"}
	ErrWrongState  = &RuleError{Code: "WRONG_STATE"}
	ErrSeatCount   = &RuleError{Code: "SEAT_COUNT"}
	// ErrEngineFault replaces a panic recovered while applying an action.
	ErrEngineFault = &RuleError{Code: "ENGINE_FAULT"}
)
