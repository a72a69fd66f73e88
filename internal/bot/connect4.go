package bot

import (
	"github.com/jason-s-yu/tabletop/internal/game/connect4"
)

// columnOrder searches the centre first, which makes alpha-beta cut earlier.
var columnOrder = [connect4.Cols]int{3, 2, 4, 1, 5, 0, 6}

var centreWeights = [connect4.Cols]int{3, 4, 5, 7, 5, 4, 3}

type connect4Position struct {
	state  *connect4.State
	toMove int
}

// NewConnect4Position wraps s with the seat currently to move.
func NewConnect4Position(s *connect4.State) Position[int] {
	return connect4Position{state: s, toMove: s.Turn}
}

func (p connect4Position) Moves() []int {
	legal := connect4.LegalMoves(p.state)
	open := make(map[int]bool, len(legal))
	for _, c := range legal {
		open[c] = true
	}
	out := make([]int, 0, len(legal))
	for _, c := range columnOrder {
		if open[c] {
			out = append(out, c)
		}
	}
	return out
}

func (p connect4Position) Play(col int) Position[int] {
	next, err := connect4.Apply(p.state, p.toMove, connect4.Action{Type: connect4.ActionPlaceToken, Column: col})
	if err != nil {
		return p
	}
	return connect4Position{state: next, toMove: 1 - p.toMove}
}

func (p connect4Position) Outcome() (bool, int) {
	if !p.state.IsTerminal() {
		return false, 0
	}
	if p.state.WinnerIndex == nil {
		return true, 0
	}
	if *p.state.WinnerIndex == p.toMove {
		return true, 1
	}
	return true, -1
}

func (p connect4Position) Evaluate() int {
	return scoreConnect4(&p.state.Board, p.toMove+1) - scoreConnect4(&p.state.Board, 2-p.toMove)
}

// scoreConnect4 weights centre occupancy and every open window of four for piece.
func scoreConnect4(b *[connect4.Rows][connect4.Cols]int, piece int) int {
	score := 0
	for r := 0; r < connect4.Rows; r++ {
		for c := 0; c < connect4.Cols; c++ {
			if b[r][c] == piece {
				score += centreWeights[c]
			}
		}
	}
	dirs := [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}
	for r := 0; r < connect4.Rows; r++ {
		for c := 0; c < connect4.Cols; c++ {
			for _, d := range dirs {
				endR, endC := r+3*d[0], c+3*d[1]
				if endR < 0 || endR >= connect4.Rows || endC < 0 || endC >= connect4.Cols {
					continue
				}
				mine, empty := 0, 0
				for k := 0; k < 4; k++ {
					switch b[r+k*d[0]][c+k*d[1]] {
					case piece:
						mine++
					case 0:
						empty++
					}
				}
				switch {
				case mine == 3 && empty == 1:
					score += 50
				case mine == 2 && empty == 2:
					score += 10
				}
			}
		}
	}
	return score
}
