package connect4

import (
	"encoding/json"
	"testing"

	"github.com/jason-s-yu/tabletop/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func place(t *testing.T, s *State, seat, col int) *State {
	t.Helper()
	next, err := Apply(s, seat, Action{Type: ActionPlaceToken, Column: col})
	require.NoError(t, err)
	return next
}

// assertWinningCells checks the four cells are colinear in a canonical direction and hold the winner's token.
func assertWinningCells(t *testing.T, s *State) {
	t.Helper()
	require.NotNil(t, s.WinnerIndex)
	require.Len(t, s.WinningCells, 4)
	dr := s.WinningCells[1].Row - s.WinningCells[0].Row
	dc := s.WinningCells[1].Col - s.WinningCells[0].Col
	assert.Contains(t, [][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}, [2]int{dr, dc})
	for i, cell := range s.WinningCells {
		assert.Equal(t, *s.WinnerIndex+1, s.Board[cell.Row][cell.Col])
		if i > 0 {
			assert.Equal(t, s.WinningCells[i-1].Row+dr, cell.Row)
			assert.Equal(t, s.WinningCells[i-1].Col+dc, cell.Col)
		}
	}
}

func TestHorizontalWinScenario(t *testing.T) {
	s := NewState()
	for col := 0; col < 3; col++ {
		s = place(t, s, 0, col)
		s = place(t, s, 1, col)
	}
	s = place(t, s, 0, 3)

	assert.Equal(t, StatusFinished, s.Status)
	require.NotNil(t, s.WinnerIndex)
	assert.Equal(t, 0, *s.WinnerIndex)
	require.Len(t, s.WinningCells, 4)
	for _, cell := range s.WinningCells {
		assert.Equal(t, 5, cell.Row)
	}
	assertWinningCells(t, s)
}

func TestVerticalAndDiagonalWins(t *testing.T) {
	s := NewState()
	for i := 0; i < 3; i++ {
		s = place(t, s, 0, 2)
		s = place(t, s, 1, 3)
	}
	s = place(t, s, 0, 2)
	assert.True(t, s.IsTerminal())
	assertWinningCells(t, s)

	// Rising diagonal for seat 0: (5,0) (4,1) (3,2) (2,3).
	s = NewState()
	for _, col := range []int{0, 1, 1, 2, 2, 3, 2, 3, 3, 6} {
		s = place(t, s, s.Turn, col)
	}
	s = place(t, s, 0, 3)
	assert.Equal(t, []int{0}, s.Winners())
	assertWinningCells(t, s)
}

func TestLongRunReportsWindowWithDroppedCell(t *testing.T) {
	s := NewState()
	for _, col := range []int{0, 0, 1, 1, 2, 2} {
		s = place(t, s, s.Turn, col)
	}
	s = place(t, s, 0, 4)
	s = place(t, s, 1, 4)
	s = place(t, s, 0, 5)
	s = place(t, s, 1, 5)
	// Filling column 3 joins 0-2 and 4-5 into a run of six.
	s = place(t, s, 0, 3)

	assertWinningCells(t, s)
	assert.Contains(t, s.WinningCells, Cell{Row: 5, Col: 3})
}

func TestRejections(t *testing.T) {
	s := NewState()

	_, err := Apply(s, 1, Action{Type: ActionPlaceToken, Column: 0})
	assert.ErrorIs(t, err, game.ErrNotYourTurn)

	_, err = Apply(s, 0, Action{Type: ActionPlaceToken, Column: 7})
	assert.ErrorIs(t, err, ErrColumnOutOfRange)

	_, err = Apply(s, 0, Action{Type: "DROP", Column: 1})
	assert.ErrorIs(t, err, game.ErrBadAction)

	for i := 0; i < Rows; i++ {
		s = place(t, s, s.Turn, 0)
	}
	_, err = Apply(s, s.Turn, Action{Type: ActionPlaceToken, Column: 0})
	assert.ErrorIs(t, err, ErrColumnFull)
	assert.NotContains(t, LegalMoves(s), 0)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	s := NewState()
	before := *s
	_ = place(t, s, 0, 3)
	assert.Equal(t, before, *s)
}

func TestFullBoardIsTie(t *testing.T) {
	// Column order that fills the board without four in a row.
	order := []int{0, 1, 0, 1, 0, 1, 1, 0, 1, 0, 1, 0,
		2, 3, 2, 3, 2, 3, 3, 2, 3, 2, 3, 2,
		4, 5, 4, 5, 4, 5, 5, 4, 5, 4, 5, 4,
		6, 6, 6, 6, 6, 6}
	s := NewState()
	for _, col := range order {
		require.False(t, s.IsTerminal())
		s = place(t, s, s.Turn, col)
	}
	assert.Equal(t, StatusFinished, s.Status)
	assert.Nil(t, s.WinnerIndex)
	assert.Empty(t, s.Winners())
}

func TestEngineAdapter(t *testing.T) {
	var e Engine
	st, err := e.NewState(2, 0)
	require.NoError(t, err)

	next, err := e.Apply(st, 0, json.RawMessage(`{"type":"PLACE_TOKEN","column":3}`))
	require.NoError(t, err)
	assert.Equal(t, 1, next.CurrentSeat())

	_, err = e.Apply(next, 1, json.RawMessage(`not json`))
	assert.ErrorIs(t, err, game.ErrBadAction)

	done := e.Forfeit(next, 1)
	assert.True(t, done.IsTerminal())
	assert.Equal(t, []int{0}, done.Winners())
}
