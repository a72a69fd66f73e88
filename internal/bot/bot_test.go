package bot

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jason-s-yu/tabletop/internal/game"
	"github.com/jason-s-yu/tabletop/internal/game/checkers"
	"github.com/jason-s-yu/tabletop/internal/game/connect4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const overrun = 150 * time.Millisecond

func playColumns(t *testing.T, cols ...int) *connect4.State {
	t.Helper()
	s := connect4.NewState()
	for _, c := range cols {
		next, err := connect4.Apply(s, s.Turn, connect4.Action{Type: connect4.ActionPlaceToken, Column: c})
		require.NoError(t, err)
		s = next
	}
	return s
}

func TestConnect4TakesImmediateWin(t *testing.T) {
	// Seat 0 has three in the bottom row at columns 0-2.
	s := playColumns(t, 0, 0, 1, 1, 2, 6)
	col, err := Search(context.Background(), NewConnect4Position(s), time.Second, connect4MaxDepth)
	require.NoError(t, err)
	assert.Equal(t, 3, col)
}

func TestConnect4BlocksImmediateLoss(t *testing.T) {
	// Seat 1 to move; seat 0 threatens column 3 on the bottom row.
	s := playColumns(t, 0, 6, 1, 6, 2)
	require.Equal(t, 1, s.Turn)
	col, err := Search(context.Background(), NewConnect4Position(s), time.Second, connect4MaxDepth)
	require.NoError(t, err)
	assert.Equal(t, 3, col)
}

func TestConnect4MoveIsLegalWithinBudget(t *testing.T) {
	budget := 100 * time.Millisecond
	p, ok := ForGame(game.Connect4)
	require.True(t, ok)

	for _, s := range []*connect4.State{connect4.NewState(), playColumns(t, 3, 3, 2, 4, 4)} {
		start := time.Now()
		raw, err := p.ChooseAction(context.Background(), s, s.Turn, budget)
		require.NoError(t, err)
		assert.Less(t, time.Since(start), budget+overrun)

		var a connect4.Action
		require.NoError(t, json.Unmarshal(raw, &a))
		assert.Contains(t, connect4.LegalMoves(s), a.Column)
	}
}

func TestCheckersMoveIsLegalWithinBudget(t *testing.T) {
	budget := 100 * time.Millisecond
	p, ok := ForGame(game.Checkers)
	require.True(t, ok)
	s := checkers.NewState()
	next, err := checkers.Apply(s, 0, checkers.Action{Type: checkers.ActionMove, From: checkers.Square{R: 5, C: 2}, To: checkers.Square{R: 4, C: 3}})
	require.NoError(t, err)

	start := time.Now()
	raw, err := p.ChooseAction(context.Background(), next, 1, budget)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), budget+overrun)

	var a checkers.Action
	require.NoError(t, json.Unmarshal(raw, &a))
	legal := checkers.LegalMoves(next, 1)
	found := false
	for _, m := range legal {
		if m.From == a.From && m.To == a.To {
			found = true
		}
	}
	assert.True(t, found, "bot move %+v not in legal set", a)
}

func TestCheckersTurnsFollowChains(t *testing.T) {
	s := &checkers.State{Status: checkers.StatusPlaying}
	s.Board[5][0] = checkers.Man
	s.Board[4][1] = -checkers.Man
	s.Board[2][3] = -checkers.Man
	s.Board[0][7] = -checkers.Man

	turns := NewCheckersPosition(s).Moves()
	require.Len(t, turns, 1)
	assert.Len(t, turns[0].Steps, 2)
	assert.Equal(t, 1, turns[0].result.Turn)

	raw, err := checkersBot{}.ChooseAction(context.Background(), s, 0, 50*time.Millisecond)
	require.NoError(t, err)
	var a checkers.Action
	require.NoError(t, json.Unmarshal(raw, &a))
	assert.Equal(t, checkers.Square{R: 3, C: 2}, a.To)
}

func TestCheckersLongChainIsOneTurn(t *testing.T) {
	s := &checkers.State{Status: checkers.StatusPlaying}
	s.Board[7][0] = checkers.Man
	s.Board[6][1] = -checkers.Man
	s.Board[4][3] = -checkers.Man
	s.Board[2][5] = -checkers.Man
	s.Board[0][1] = -checkers.Man

	turns := NewCheckersPosition(s).Moves()
	require.Len(t, turns, 1)
	assert.Len(t, turns[0].Steps, 3)
	assert.Nil(t, turns[0].result.ForcedFrom)
	assert.Equal(t, 1, turns[0].result.Turn)
	assert.Equal(t, checkers.Square{R: 1, C: 6}, turns[0].Steps[2].To)
}

func TestSearchStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	col, err := Search(ctx, NewConnect4Position(connect4.NewState()), time.Second, connect4MaxDepth)
	require.NoError(t, err)
	assert.Contains(t, []int{0, 1, 2, 3, 4, 5, 6}, col)
}

func TestNoBotForUno(t *testing.T) {
	_, ok := ForGame(game.Uno)
	assert.False(t, ok)
}

func TestBotRejectsWrongSeat(t *testing.T) {
	_, err := connect4Bot{}.ChooseAction(context.Background(), connect4.NewState(), 1, time.Millisecond)
	assert.ErrorIs(t, err, game.ErrNotYourTurn)
}
