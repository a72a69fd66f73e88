package connect4

import (
	"encoding/json"

	"github.com/jason-s-yu/tabletop/internal/game"
)

// Engine adapts the Connect-Four reducer to game.Engine.
type Engine struct{}

func (Engine) Type() game.Type { return game.Connect4 }

func (Engine) NewState(seats int, _ uint64) (game.State, error) {
	if seats != 2 {
		return nil, game.ErrSeatCount
	}
	return NewState(), nil
}

func (Engine) Apply(s game.State, seat int, raw json.RawMessage) (game.State, error) {
	st, ok := s.(*State)
	if !ok {
		return nil, game.ErrWrongState
	}
	var a Action
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, game.ErrBadAction
	}
	next, err := Apply(st, seat, a)
	if err != nil {
		return nil, err
	}
	return next, nil
}

// View returns the whole state; Connect-Four has no hidden information.
func (Engine) View(s game.State, _ int) any { return s }

func (Engine) Forfeit(s game.State, seat int) game.State {
	st, ok := s.(*State)
	if !ok {
		return s
	}
	return Forfeit(st, seat)
}
