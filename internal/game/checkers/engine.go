package checkers

import (
	"encoding/json"

	"github.com/jason-s-yu/tabletop/internal/game"
)

// Engine adapts the checkers reducer to game.Engine.
type Engine struct{}

func (Engine) Type() game.Type { return game.Checkers }

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

// view adds the mover's legal moves so clients can highlight them.
type view struct {
	*State
	LegalMoves []Move `json:"legalMoves"`
}

func (Engine) View(s game.State, seat int) any {
	st, ok := s.(*State)
	if !ok {
		return s
	}
	return view{State: st, LegalMoves: LegalMoves(st, seat)}
}

func (Engine) Forfeit(s game.State, seat int) game.State {
	st, ok := s.(*State)
	if !ok {
		return s
	}
	return Forfeit(st, seat)
}
