package uno

import (
	"encoding/json"

	"github.com/jason-s-yu/tabletop/internal/game"
)

// Engine adapts the UNO reducer to game.Engine.
type Engine struct {
	MaxHand int
}

func (Engine) Type() game.Type { return game.Uno }

func (e Engine) NewState(seats int, seed uint64) (game.State, error) {
	s, err := NewState(seats, seed, e.MaxHand)
	if err != nil {
		return nil, err
	}
	return s, nil
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

// OutOfTurn lets a seat announce its last card while another seat is to move.
func (Engine) OutOfTurn(raw json.RawMessage) bool {
	var a Action
	if err := json.Unmarshal(raw, &a); err != nil {
		return false
	}
	return a.Type == ActionCallLast
}

func (Engine) Forfeit(s game.State, seat int) game.State {
	st, ok := s.(*State)
	if !ok {
		return s
	}
	return Forfeit(st, seat)
}

// View is what one seat may see: its own hand, counts for everyone else and the discard top.
type View struct {
	Seat            int         `json:"seat"`
	Hand            []Card      `json:"hand"`
	HandCounts      []int       `json:"handCounts"`
	Top             Card        `json:"top"`
	DrawCount       int         `json:"drawCount"`
	DiscardCount    int         `json:"discardCount"`
	Color           Color       `json:"color"`
	Turn            int         `json:"turn"`
	Direction       int         `json:"direction"`
	PendingDraw     int         `json:"pendingDraw"`
	HasDrawn        bool        `json:"hasDrawn"`
	PendingLastCall *int        `json:"pendingLastCall"`
	Playable        []int       `json:"playable"`
	Status          string      `json:"status"`
	Winners         []int       `json:"winners"`
	EndReason       string      `json:"endReason,omitempty"`
	LastAction      *LastAction `json:"lastAction,omitempty"`
}

func (Engine) View(s game.State, seat int) any {
	st, ok := s.(*State)
	if !ok {
		return nil
	}
	v := View{
		Seat:            seat,
		HandCounts:      make([]int, len(st.Hands)),
		Top:             st.Top(),
		DrawCount:       len(st.DrawPile),
		DiscardCount:    len(st.Discard),
		Color:           st.Color,
		Turn:            st.Turn,
		Direction:       st.Direction,
		PendingDraw:     st.PendingDraw,
		HasDrawn:        st.HasDrawn,
		PendingLastCall: st.LastCall,
		Status:          st.Status,
		Winners:         st.WinnerSeats,
		EndReason:       st.EndReason,
		LastAction:      st.LastAction,
	}
	for i, h := range st.Hands {
		v.HandCounts[i] = len(h)
	}
	if seat >= 0 && seat < len(st.Hands) {
		v.Hand = st.Hands[seat]
		for _, c := range PlayableCards(st, seat) {
			v.Playable = append(v.Playable, c.ID)
		}
	}
	return v
}
