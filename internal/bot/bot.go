// internal/bot/bot.go
package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jason-s-yu/tabletop/internal/game"
	"github.com/jason-s-yu/tabletop/internal/game/checkers"
	"github.com/jason-s-yu/tabletop/internal/game/connect4"
	"github.com/jason-s-yu/tabletop/internal/metrics"
)

const (
	connect4MaxDepth = connect4.Rows * connect4.Cols
	checkersMaxDepth = 24
)

// Player chooses an action for the seat to move. The returned action is encoded
// the same way a client would send it.
type Player interface {
	ChooseAction(ctx context.Context, s game.State, seat int, budget time.Duration) (json.RawMessage, error)
}

// ForGame returns the bot for t, if the game has one.
func ForGame(t game.Type) (Player, bool) {
	switch t {
	case game.Connect4:
		return connect4Bot{}, true
	case game.Checkers:
		return checkersBot{}, true
	}
	return nil, false
}

type connect4Bot struct{}

func (connect4Bot) ChooseAction(ctx context.Context, s game.State, seat int, budget time.Duration) (json.RawMessage, error) {
	st, ok := s.(*connect4.State)
	if !ok {
		return nil, game.ErrWrongState
	}
	if st.Turn != seat {
		return nil, game.ErrNotYourTurn
	}
	defer observe(game.Connect4, time.Now())
	col, err := Search(ctx, NewConnect4Position(st), budget, connect4MaxDepth)
	if err != nil {
		return nil, fmt.Errorf("connect4 search: %w", err)
	}
	return json.Marshal(connect4.Action{Type: connect4.ActionPlaceToken, Column: col})
}

type checkersBot struct{}

// ChooseAction returns the first step of the chosen turn. Remaining chain steps are
// chosen on the following calls while the seat stays pinned.
func (checkersBot) ChooseAction(ctx context.Context, s game.State, seat int, budget time.Duration) (json.RawMessage, error) {
	st, ok := s.(*checkers.State)
	if !ok {
		return nil, game.ErrWrongState
	}
	if st.Turn != seat {
		return nil, game.ErrNotYourTurn
	}
	defer observe(game.Checkers, time.Now())
	turn, err := Search(ctx, NewCheckersPosition(st), budget, checkersMaxDepth)
	if err != nil {
		return nil, fmt.Errorf("checkers search: %w", err)
	}
	first := turn.Steps[0]
	return json.Marshal(checkers.Action{Type: checkers.ActionMove, From: first.From, To: first.To})
}

func observe(t game.Type, start time.Time) {
	metrics.BotSearchSeconds.WithLabelValues(string(t)).Observe(time.Since(start).Seconds())
}
