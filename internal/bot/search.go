// internal/bot/search.go
package bot

import (
	"context"
	"errors"
	"time"
)

// WinScore bounds every heuristic evaluation. Wins found closer to the root score higher.
const WinScore = 1_000_000

var (
	ErrNoMoves = errors.New("bot: no legal moves")
	errAborted = errors.New("bot: search aborted")
)

// Position is a two-player, zero-sum game position seen from the side to move.
type Position[M any] interface {
	// Moves lists complete turns for the side to move. The order must be stable.
	Moves() []M
	// Play returns the position after m, with the other side to move.
	Play(m M) Position[M]
	// Outcome reports whether the game is over and, if so, the result for the
	// side to move: 1 won, 0 drawn, -1 lost.
	Outcome() (done bool, result int)
	// Evaluate scores a non-terminal position for the side to move.
	Evaluate() int
}

type searcher[M any] struct {
	ctx      context.Context
	deadline time.Time
}

func (s *searcher[M]) expired() bool {
	return time.Now().After(s.deadline) || s.ctx.Err() != nil
}

// negamax returns the score of pos for the side to move, or errAborted once the
// deadline passes. ply is the distance from the root.
func (s *searcher[M]) negamax(pos Position[M], depth, ply, alpha, beta int) (int, error) {
	if s.expired() {
		return 0, errAborted
	}
	if done, result := pos.Outcome(); done {
		return result * (WinScore - ply), nil
	}
	if depth == 0 {
		return pos.Evaluate(), nil
	}
	moves := pos.Moves()
	if len(moves) == 0 {
		return -(WinScore - ply), nil
	}
	best := -WinScore - 1
	for _, m := range moves {
		score, err := s.negamax(pos.Play(m), depth-1, ply+1, -beta, -alpha)
		if err != nil {
			return 0, err
		}
		score = -score
		if score > best {
			best = score
		}
		if best > alpha {
			alpha = best
		}
		if alpha >= beta {
			break
		}
	}
	return best, nil
}

// Search picks a move for the side to move within budget. It takes an immediate win,
// otherwise restricts itself to moves that do not hand the opponent one, and then runs
// iterative-deepening negamax with alpha-beta pruning. When the budget runs out in the
// middle of a depth the best move of the last completed depth is returned.
func Search[M any](ctx context.Context, root Position[M], budget time.Duration, maxDepth int) (M, error) {
	var zero M
	moves := root.Moves()
	if len(moves) == 0 {
		return zero, ErrNoMoves
	}
	if len(moves) == 1 {
		return moves[0], nil
	}

	children := make([]Position[M], len(moves))
	for i, m := range moves {
		children[i] = root.Play(m)
		if done, result := children[i].Outcome(); done && result < 0 {
			return m, nil
		}
	}

	candidates := make([]int, 0, len(moves))
	for i := range moves {
		if !hasImmediateWin(children[i]) {
			candidates = append(candidates, i)
		}
	}
	switch len(candidates) {
	case 0:
		for i := range moves {
			candidates = append(candidates, i)
		}
	case 1:
		return moves[candidates[0]], nil
	}

	s := &searcher[M]{ctx: ctx, deadline: time.Now().Add(budget)}
	best := candidates[0]
	for depth := 1; depth <= maxDepth; depth++ {
		order := append([]int{best}, without(candidates, best)...)
		bestScore := -WinScore - 1
		depthBest := -1
		alpha := -WinScore - 1
		aborted := false
		for _, i := range order {
			score, err := s.negamax(children[i], depth-1, 1, -WinScore-1, -alpha)
			if err != nil {
				aborted = true
				break
			}
			score = -score
			if score > bestScore {
				bestScore = score
				depthBest = i
			}
			if score > alpha {
				alpha = score
			}
		}
		if aborted {
			break
		}
		best = depthBest
		if bestScore >= WinScore-maxDepth {
			break
		}
	}
	return moves[best], nil
}

// hasImmediateWin reports whether the side to move in pos can win with one move.
func hasImmediateWin[M any](pos Position[M]) bool {
	if done, _ := pos.Outcome(); done {
		return false
	}
	for _, m := range pos.Moves() {
		if done, result := pos.Play(m).Outcome(); done && result < 0 {
			return true
		}
	}
	return false
}

func without(xs []int, x int) []int {
	out := make([]int, 0, len(xs))
	for _, v := range xs {
		if v != x {
			out = append(out, v)
		}
	}
	return out
}
