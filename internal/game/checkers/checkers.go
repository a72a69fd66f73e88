// internal/game/checkers/checkers.go
package checkers

import (
	"github.com/jason-s-yu/tabletop/internal/game"
)

const (
	Size = 8

	StatusPlaying  = "playing"
	StatusFinished = "finished"

	ActionMove = "MOVE"

	Man  = 1
	King = 2
)

var (
	ErrForcedPiece  = &game.RuleError{Code: "FORCED_PIECE"}
	ErrIllegalSq    = &game.RuleError{Code: "ILLEGAL_SQUARE"}
	ErrNotYourPiece = &game.RuleError{Code: "NOT_YOUR_PIECE"}
	ErrIllegalMove  = &game.RuleError{Code: "ILLEGAL_MOVE"}
	ErrMustCapture  = &game.RuleError{Code: "MUST_CAPTURE"}
)

type Square struct {
	R int `json:"r"`
	C int `json:"c"`
}

type Move struct {
	From     Square  `json:"from"`
	To       Square  `json:"to"`
	Captured *Square `json:"captured,omitempty"`
}

// State is a full checkers position. Seat 0 owns the positive pieces and moves
// toward row 0; seat 1 owns the negative pieces and moves toward row 7.
type State struct {
	Board       [Size][Size]int `json:"board"`
	Turn        int             `json:"turn"`
	ForcedFrom  *Square         `json:"forcedFrom"`
	Status      string          `json:"status"`
	WinnerIndex *int            `json:"winnerIndex"`
	LastMove    *Move           `json:"lastMove,omitempty"`
}

type Action struct {
	Type string `json:"type"`
	From Square `json:"from"`
	To   Square `json:"to"`
}

// NewState sets up the standard opening: three rows of men per side on dark squares.
func NewState() *State {
	s := &State{Status: StatusPlaying}
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if !isDark(r, c) {
				continue
			}
			switch {
			case r < 3:
				s.Board[r][c] = -Man
			case r > 4:
				s.Board[r][c] = Man
			}
		}
	}
	return s
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
	if s.ForcedFrom != nil {
		f := *s.ForcedFrom
		next.ForcedFrom = &f
	}
	if s.WinnerIndex != nil {
		w := *s.WinnerIndex
		next.WinnerIndex = &w
	}
	if s.LastMove != nil {
		m := *s.LastMove
		next.LastMove = &m
	}
	return &next
}

// LegalMoves returns the moves available to seat. A pinned chain square allows only
// its own captures, and any capture on the board excludes simple moves.
func LegalMoves(s *State, seat int) []Move {
	if s.IsTerminal() || seat != s.Turn {
		return nil
	}
	if s.ForcedFrom != nil {
		caps, _ := pieceMoves(&s.Board, *s.ForcedFrom)
		return caps
	}
	caps, simples := sideMoves(&s.Board, seat)
	if len(caps) > 0 {
		return caps
	}
	return simples
}

// Apply performs one step of a turn. A capture that leaves a further capture from the
// landing square keeps the same seat to move with ForcedFrom pinned to that square.
func Apply(s *State, seat int, a Action) (*State, error) {
	if s.IsTerminal() {
		return nil, game.ErrGameOver
	}
	if seat != s.Turn {
		return nil, game.ErrNotYourTurn
	}
	if a.Type != ActionMove {
		return nil, game.ErrBadAction
	}
	if !onBoard(a.From) || !onBoard(a.To) || !isDark(a.From.R, a.From.C) || !isDark(a.To.R, a.To.C) {
		return nil, ErrIllegalSq
	}
	if s.ForcedFrom != nil && a.From != *s.ForcedFrom {
		return nil, ErrForcedPiece
	}
	if owner(s.Board[a.From.R][a.From.C]) != seat {
		return nil, ErrNotYourPiece
	}

	var move *Move
	for _, m := range LegalMoves(s, seat) {
		if m.From == a.From && m.To == a.To {
			move = &m
			break
		}
	}
	if move == nil {
		_, simples := pieceMoves(&s.Board, a.From)
		for _, m := range simples {
			if m.To == a.To {
				return nil, ErrMustCapture
			}
		}
		return nil, ErrIllegalMove
	}

	next := s.clone()
	b := &next.Board
	piece := b[a.From.R][a.From.C]
	b[a.From.R][a.From.C] = 0
	if abs(piece) == Man && a.To.R == promotionRow(seat) {
		piece *= King
	}
	b[a.To.R][a.To.C] = piece
	if move.Captured != nil {
		b[move.Captured.R][move.Captured.C] = 0
	}
	next.LastMove = move

	opponent := 1 - seat
	if countPieces(b, opponent) == 0 {
		return finish(next, seat), nil
	}
	if move.Captured != nil {
		if caps, _ := pieceMoves(b, a.To); len(caps) > 0 {
			to := a.To
			next.ForcedFrom = &to
			return next, nil
		}
	}
	next.ForcedFrom = nil
	next.Turn = opponent
	if caps, simples := sideMoves(b, opponent); len(caps)+len(simples) == 0 {
		return finish(next, seat), nil
	}
	return next, nil
}

// Forfeit ends the game in favour of the other seat.
func Forfeit(s *State, seat int) *State {
	return finish(s.clone(), 1-seat)
}

func finish(s *State, winner int) *State {
	s.Status = StatusFinished
	s.WinnerIndex = &winner
	s.ForcedFrom = nil
	return s
}

// sideMoves collects captures and simple moves over every piece the seat owns.
func sideMoves(b *[Size][Size]int, seat int) (caps, simples []Move) {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if b[r][c] == 0 || owner(b[r][c]) != seat {
				continue
			}
			pc, ps := pieceMoves(b, Square{R: r, C: c})
			caps = append(caps, pc...)
			simples = append(simples, ps...)
		}
	}
	return caps, simples
}

// pieceMoves lists one-step moves and single jumps for the piece on sq. Men move and
// capture forward only; kings use all four diagonals.
func pieceMoves(b *[Size][Size]int, sq Square) (caps, simples []Move) {
	piece := b[sq.R][sq.C]
	if piece == 0 {
		return nil, nil
	}
	seat := owner(piece)
	fwd := forward(seat)
	dirs := [][2]int{{fwd, -1}, {fwd, 1}}
	if abs(piece) == King {
		dirs = append(dirs, [2]int{-fwd, -1}, [2]int{-fwd, 1})
	}
	for _, d := range dirs {
		step := Square{R: sq.R + d[0], C: sq.C + d[1]}
		if !onBoard(step) {
			continue
		}
		target := b[step.R][step.C]
		if target == 0 {
			simples = append(simples, Move{From: sq, To: step})
			continue
		}
		if owner(target) == seat {
			continue
		}
		land := Square{R: sq.R + 2*d[0], C: sq.C + 2*d[1]}
		if onBoard(land) && b[land.R][land.C] == 0 {
			captured := step
			caps = append(caps, Move{From: sq, To: land, Captured: &captured})
		}
	}
	return caps, simples
}

func countPieces(b *[Size][Size]int, seat int) int {
	n := 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if b[r][c] != 0 && owner(b[r][c]) == seat {
				n++
			}
		}
	}
	return n
}

func owner(piece int) int {
	if piece > 0 {
		return 0
	}
	if piece < 0 {
		return 1
	}
	return -1
}

func forward(seat int) int {
	if seat == 0 {
		return -1
	}
	return 1
}

func promotionRow(seat int) int {
	if seat == 0 {
		return 0
	}
	return Size - 1
}

func isDark(r, c int) bool { return (r+c)%2 == 1 }

func onBoard(sq Square) bool {
	return sq.R >= 0 && sq.R < Size && sq.C >= 0 && sq.C < Size
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
