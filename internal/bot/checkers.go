package bot

import (
	"github.com/jason-s-yu/tabletop/internal/game/checkers"
)

const (
	manValue     = 100
	kingValue    = 160
	centreBonus  = 6
	advanceBonus = 3
)

// CheckersTurn is a full turn: one step, or a chain of captures through forced continuations.
type CheckersTurn struct {
	Steps  []checkers.Move
	result *checkers.State
}

type checkersPosition struct {
	state  *checkers.State
	toMove int
}

// NewCheckersPosition wraps s. A state mid-chain yields turns that finish the chain.
func NewCheckersPosition(s *checkers.State) Position[CheckersTurn] {
	return checkersPosition{state: s, toMove: s.Turn}
}

func (p checkersPosition) Moves() []CheckersTurn {
	var out []CheckersTurn
	expandTurns(p.state, p.toMove, nil, &out)
	return out
}

// expandTurns walks forced continuations so each emitted turn hands the move to the
// opponent. Every capture removes a piece, so chains always end.
func expandTurns(s *checkers.State, seat int, prefix []checkers.Move, out *[]CheckersTurn) {
	for _, m := range checkers.LegalMoves(s, seat) {
		next, err := checkers.Apply(s, seat, checkers.Action{Type: checkers.ActionMove, From: m.From, To: m.To})
		if err != nil {
			continue
		}
		steps := append(append([]checkers.Move(nil), prefix...), m)
		if next.ForcedFrom != nil && !next.IsTerminal() {
			expandTurns(next, seat, steps, out)
			continue
		}
		*out = append(*out, CheckersTurn{Steps: steps, result: next})
	}
}

func (p checkersPosition) Play(t CheckersTurn) Position[CheckersTurn] {
	return checkersPosition{state: t.result, toMove: 1 - p.toMove}
}

func (p checkersPosition) Outcome() (bool, int) {
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

func (p checkersPosition) Evaluate() int {
	score := 0
	for r := 0; r < checkers.Size; r++ {
		for c := 0; c < checkers.Size; c++ {
			piece := p.state.Board[r][c]
			if piece == 0 {
				continue
			}
			v := manValue
			if piece == checkers.King || piece == -checkers.King {
				v = kingValue
			} else if piece > 0 {
				v += advanceBonus * (checkers.Size - 1 - r)
			} else {
				v += advanceBonus * r
			}
			if r >= 2 && r <= 5 && c >= 2 && c <= 5 {
				v += centreBonus
			}
			if (piece > 0) == (p.toMove == 0) {
				score += v
			} else {
				score -= v
			}
		}
	}
	return score
}
