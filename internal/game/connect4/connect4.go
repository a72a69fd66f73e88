// internal/game/connect4/connect4.go
package connect4

import (
	"github.com/jason-s-yu/tabletop/internal/game"
)

const (
	Rows = 6
	Cols = 7

	StatusPlaying  = "playing"
	StatusFinished = "finished"

	ActionPlaceToken = "PLACE_TOKEN"
)

var (
	ErrColumnOutOfRange = &game.RuleError{Code: "COLUMN_OUT_OF_RANGE"}
	ErrColumnFull       = &game.RuleError{Code: "COLUMN_FULL"}
)

// directions checked through the dropped cell: horizontal, vertical and both diagonals.
var directions = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// State is a full Connect-Four position. Board cells hold 0 when empty, or seat+1.
// Row 0 is the top of the board.
type State struct {
	Board        [Rows][Cols]int `json:"board"`
	Turn         int             `json:"turn"`
	Status       string          `json:"status"`
	WinnerIndex  *int            `json:"winnerIndex"`
	WinningCells []Cell          `json:"winningCells,omitempty"`
	LastMove     *Cell           `json:"lastMove,omitempty"`
	Moves        int             `json:"moves"`
}

type Action struct {
	Type   string `json:"type"`
	Column int    `json:"column"`
}

func NewState() *State {
	return &State{Status: StatusPlaying}
}

func (s *State) CurrentSeat() int { return s.Turn }

func (s *State) IsTerminal() bool { return s.Status == StatusFinished }

func (s *State) Winners() []int {
	if s.WinnerIndex == nil {
		return nil
	}
	return []int{*s.WinnerIndex}
}

func (s *State) clone() *State {
	next := *s
	if s.WinnerIndex != nil {
		w := *s.WinnerIndex
		next.WinnerIndex = &w
	}
	if s.WinningCells != nil {
		next.WinningCells = append([]Cell(nil), s.WinningCells...)
	}
	if s.LastMove != nil {
		m := *s.LastMove
		next.LastMove = &m
	}
	return &next
}

// LegalMoves lists the columns that still accept a token.
func LegalMoves(s *State) []int {
	if s.IsTerminal() {
		return nil
	}
	cols := make([]int, 0, Cols)
	for c := 0; c < Cols; c++ {
		if s.Board[0][c] == 0 {
			cols = append(cols, c)
		}
	}
	return cols
}

// Apply drops the seat's token into the requested column and returns the resulting state.
func Apply(s *State, seat int, a Action) (*State, error) {
	if s.IsTerminal() {
		return nil, game.ErrGameOver
	}
	if seat != s.Turn {
		return nil, game.ErrNotYourTurn
	}
	if a.Type != ActionPlaceToken {
		return nil, game.ErrBadAction
	}
	if a.Column < 0 || a.Column >= Cols {
		return nil, ErrColumnOutOfRange
	}
	row := dropRow(&s.Board, a.Column)
	if row < 0 {
		return nil, ErrColumnFull
	}

	next := s.clone()
	next.Board[row][a.Column] = seat + 1
	next.Moves++
	next.LastMove = &Cell{Row: row, Col: a.Column}

	if cells := winningLine(&next.Board, row, a.Column); cells != nil {
		winner := seat
		next.Status = StatusFinished
		next.WinnerIndex = &winner
		next.WinningCells = cells
		return next, nil
	}
	if next.Moves == Rows*Cols {
		next.Status = StatusFinished
		next.WinnerIndex = nil
		return next, nil
	}
	next.Turn = 1 - seat
	return next, nil
}

// Forfeit ends the game in favour of the other seat.
func Forfeit(s *State, seat int) *State {
	next := s.clone()
	winner := 1 - seat
	next.Status = StatusFinished
	next.WinnerIndex = &winner
	next.WinningCells = nil
	return next
}

func dropRow(b *[Rows][Cols]int, col int) int {
	for r := Rows - 1; r >= 0; r-- {
		if b[r][col] == 0 {
			return r
		}
	}
	return -1
}

// winningLine returns exactly four cells of a run through (row, col), or nil.
// On runs longer than four the window is chosen so it includes the dropped cell.
func winningLine(b *[Rows][Cols]int, row, col int) []Cell {
	piece := b[row][col]
	for _, d := range directions {
		r, c := row, col
		for inBounds(r-d[0], c-d[1]) && b[r-d[0]][c-d[1]] == piece {
			r -= d[0]
			c -= d[1]
		}
		var run []Cell
		idx := 0
		for inBounds(r, c) && b[r][c] == piece {
			if r == row && c == col {
				idx = len(run)
			}
			run = append(run, Cell{Row: r, Col: c})
			r += d[0]
			c += d[1]
		}
		if len(run) < 4 {
			continue
		}
		start := min(idx, len(run)-4)
		return append([]Cell(nil), run[start:start+4]...)
	}
	return nil
}

func inBounds(r, c int) bool {
	return r >= 0 && r < Rows && c >= 0 && c < Cols
}
