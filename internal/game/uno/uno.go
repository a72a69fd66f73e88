// internal/game/uno/uno.go
package uno

import (
	"math/rand/v2"
	"slices"

	"github.com/jason-s-yu/tabletop/internal/game"
)

const (
	HandSize       = 7
	DefaultMaxHand = 40
	MinSeats       = 2
	MaxSeats       = 10

	StatusPlaying  = "playing"
	StatusFinished = "finished"

	ActionPlayCard = "PLAY_CARD"
	ActionDrawCard = "DRAW_CARD"
	ActionPass     = "PASS"
	ActionCallLast = "CALL_LAST"

	EndEmptyHand = "empty_hand"
	EndMaxHand   = "max_hand"
	EndForfeit   = "forfeit"
)

var (
	ErrCardNotInHand = &game.RuleError{Code: "CARD_NOT_IN_HAND"}
	ErrUnplayable    = &game.RuleError{Code: "UNPLAYABLE_CARD"}
	ErrColorRequired = &game.RuleError{Code: "COLOR_REQUIRED"}
	ErrBadTarget     = &game.RuleError{Code: "BAD_TARGET"}
	ErrAlreadyDrew   = &game.RuleError{Code: "ALREADY_DREW"}
	ErrCannotPass    = &game.RuleError{Code: "CANNOT_PASS"}
	ErrNoLastCall    = &game.RuleError{Code: "NO_LAST_CALL"}
)

type Action struct {
	Type         string `json:"type"`
	CardID       *int   `json:"cardId,omitempty"`
	ChosenColor  Color  `json:"chosenColor,omitempty"`
	ChosenTarget *int   `json:"chosenTarget,omitempty"`
}

// LastAction is the public record of the previous action. Drawn cards are never named.
type LastAction struct {
	Seat  int    `json:"seat"`
	Type  string `json:"type"`
	Card  *Card  `json:"card,omitempty"`
	Drew  int    `json:"drew,omitempty"`
	Color Color  `json:"color,omitempty"`
}

// State is a full UNO game. The top of DrawPile and Discard is the last element.
// Reshuffles derive their order from Seed and the reshuffle count, so Apply stays pure.
type State struct {
	Hands       [][]Card    `json:"hands"`
	DrawPile    []Card      `json:"drawPile"`
	Discard     []Card      `json:"discard"`
	Color       Color       `json:"color"`
	Turn        int         `json:"turn"`
	Direction   int         `json:"direction"`
	PendingDraw int         `json:"pendingDraw"`
	HasDrawn    bool        `json:"hasDrawn"`
	LastCall    *int        `json:"pendingLastCall"`
	Status      string      `json:"status"`
	WinnerSeats []int       `json:"winners"`
	EndReason   string      `json:"endReason,omitempty"`
	MaxHand     int         `json:"maxHand"`
	Seed        uint64      `json:"-"`
	Reshuffles  int         `json:"reshuffles"`
	LastAction  *LastAction `json:"lastAction,omitempty"`
}

// NewState shuffles a fresh deck, deals HandSize cards per seat and turns up a number card.
func NewState(seats int, seed uint64, maxHand int) (*State, error) {
	if seats < MinSeats || seats > MaxSeats {
		return nil, game.ErrSeatCount
	}
	if maxHand <= 0 {
		maxHand = DefaultMaxHand
	}
	deck := NewDeck()
	rng := rand.New(rand.NewPCG(seed, 0))
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	s := &State{
		Hands:     make([][]Card, seats),
		Direction: 1,
		Status:    StatusPlaying,
		MaxHand:   maxHand,
		Seed:      seed,
	}
	for i := range s.Hands {
		s.Hands[i] = slices.Clone(deck[len(deck)-HandSize:])
		deck = deck[:len(deck)-HandSize]
	}
	for {
		top := deck[len(deck)-1]
		deck = deck[:len(deck)-1]
		if top.Kind == KindNumber {
			s.Discard = []Card{top}
			s.Color = top.Color
			break
		}
		deck = append([]Card{top}, deck...)
	}
	s.DrawPile = deck
	return s, nil
}

func (s *State) CurrentSeat() int { return s.Turn }

func (s *State) IsTerminal() bool { return s.Status == StatusFinished }

func (s *State) Winners() []int { return s.WinnerSeats }

func (s *State) PendingLastCall() (int, bool) {
	if s.LastCall == nil {
		return 0, false
	}
	return *s.LastCall, true
}

// Top returns the face-up discard.
func (s *State) Top() Card { return s.Discard[len(s.Discard)-1] }

// CardCount is the number of cards across hands, draw pile and discard pile.
func (s *State) CardCount() int {
	n := len(s.DrawPile) + len(s.Discard)
	for _, h := range s.Hands {
		n += len(h)
	}
	return n
}

func (s *State) clone() *State {
	next := *s
	next.Hands = make([][]Card, len(s.Hands))
	for i, h := range s.Hands {
		next.Hands[i] = slices.Clone(h)
	}
	next.DrawPile = slices.Clone(s.DrawPile)
	next.Discard = slices.Clone(s.Discard)
	next.WinnerSeats = slices.Clone(s.WinnerSeats)
	if s.LastCall != nil {
		seat := *s.LastCall
		next.LastCall = &seat
	}
	if s.LastAction != nil {
		la := *s.LastAction
		next.LastAction = &la
	}
	return &next
}

// Playable reports whether c may be played on the current discard. A pending draw
// penalty restricts play to cards that stack onto it.
func Playable(s *State, c Card) bool {
	if s.PendingDraw > 0 {
		return c.stacks()
	}
	if c.IsWild() || c.Color == s.Color {
		return true
	}
	top := s.Top()
	if c.Kind == KindNumber {
		return top.Kind == KindNumber && top.Value == c.Value
	}
	return c.Kind == top.Kind
}

// PlayableCards lists the cards the seat may play right now.
func PlayableCards(s *State, seat int) []Card {
	if s.IsTerminal() || seat != s.Turn {
		return nil
	}
	var out []Card
	for _, c := range s.Hands[seat] {
		if Playable(s, c) {
			out = append(out, c)
		}
	}
	return out
}

// Apply returns the state after seat performs a. CALL_LAST is the only action
// accepted out of turn.
func Apply(s *State, seat int, a Action) (*State, error) {
	if s.IsTerminal() {
		return nil, game.ErrGameOver
	}
	if seat < 0 || seat >= len(s.Hands) {
		return nil, game.ErrNotYourTurn
	}
	if a.Type == ActionCallLast {
		if s.LastCall == nil || *s.LastCall != seat {
			return nil, ErrNoLastCall
		}
		next := s.clone()
		next.LastCall = nil
		next.LastAction = &LastAction{Seat: seat, Type: ActionCallLast}
		return next, nil
	}
	if seat != s.Turn {
		return nil, game.ErrNotYourTurn
	}
	switch a.Type {
	case ActionPlayCard:
		return playCard(s, seat, a)
	case ActionDrawCard:
		return drawCard(s, seat)
	case ActionPass:
		if !s.HasDrawn {
			return nil, ErrCannotPass
		}
		next := s.clone()
		next.HasDrawn = false
		next.Turn = next.seatAfter(seat, 1)
		next.LastAction = &LastAction{Seat: seat, Type: ActionPass}
		return next, nil
	}
	return nil, game.ErrBadAction
}

func playCard(s *State, seat int, a Action) (*State, error) {
	if a.CardID == nil {
		return nil, game.ErrBadAction
	}
	idx := slices.IndexFunc(s.Hands[seat], func(c Card) bool { return c.ID == *a.CardID })
	if idx < 0 {
		return nil, ErrCardNotInHand
	}
	card := s.Hands[seat][idx]
	if !Playable(s, card) {
		return nil, ErrUnplayable
	}
	if card.IsWild() && !validColor(a.ChosenColor) {
		return nil, ErrColorRequired
	}
	target := -1
	if card.Kind == KindSwap {
		switch {
		case a.ChosenTarget != nil:
			target = *a.ChosenTarget
		case len(s.Hands) == 2:
			target = 1 - seat
		}
		if target < 0 || target >= len(s.Hands) || target == seat {
			return nil, ErrBadTarget
		}
	}

	next := s.clone()
	next.Hands[seat] = slices.Delete(next.Hands[seat], idx, idx+1)
	next.HasDrawn = false
	next.Color = card.Color
	if card.IsWild() {
		next.Color = a.ChosenColor
	}

	// A hand emptied by the play itself wins before any card effect applies.
	switch {
	case len(next.Hands[seat]) == 0:
	case card.Kind == KindDiscardAll:
		var keep, dump []Card
		for _, c := range next.Hands[seat] {
			if c.Color == card.Color {
				dump = append(dump, c)
			} else {
				keep = append(keep, c)
			}
		}
		next.Hands[seat] = keep
		next.Discard = append(next.Discard, dump...)
	case card.Kind == KindSwap:
		next.Hands[seat], next.Hands[target] = next.Hands[target], next.Hands[seat]
	case card.Kind == KindDraw2:
		next.PendingDraw += 2
	case card.Kind == KindWildDraw4:
		next.PendingDraw += 4
	case card.Kind == KindDouble:
		next.PendingDraw = max(next.PendingDraw, 1) * 2
	}
	next.Discard = append(next.Discard, card)
	played := card
	next.LastAction = &LastAction{Seat: seat, Type: ActionPlayCard, Card: &played, Color: next.Color}

	if next.settle() {
		return next, nil
	}

	step := 1
	switch card.Kind {
	case KindSkip:
		step = 2
	case KindReverse:
		next.Direction = -next.Direction
		if len(next.Hands) == 2 {
			step = 2
		}
	case KindSkipAll:
		step = 0
	}
	next.Turn = next.seatAfter(seat, step)
	next.refreshLastCall(seat)
	return next, nil
}

func drawCard(s *State, seat int) (*State, error) {
	if s.HasDrawn && s.PendingDraw == 0 {
		return nil, ErrAlreadyDrew
	}
	next := s.clone()
	var drew int
	if next.PendingDraw > 0 {
		drew = next.draw(seat, next.PendingDraw)
		next.PendingDraw = 0
		next.HasDrawn = false
		next.Turn = next.seatAfter(seat, 1)
	} else {
		drew = next.draw(seat, 1)
		next.HasDrawn = true
	}
	next.LastAction = &LastAction{Seat: seat, Type: ActionDrawCard, Drew: drew}
	next.refreshLastCall(seat)
	next.settle()
	return next, nil
}

// Forfeit ends the game with every other seat sharing the win.
func Forfeit(s *State, seat int) *State {
	next := s.clone()
	var winners []int
	for i := range next.Hands {
		if i != seat {
			winners = append(winners, i)
		}
	}
	next.finish(winners, EndForfeit)
	return next
}

// draw moves up to n cards into the seat's hand, reshuffling the discard pile
// under its top card when the draw pile runs out.
func (s *State) draw(seat, n int) int {
	drew := 0
	for ; drew < n; drew++ {
		if len(s.DrawPile) == 0 {
			s.reshuffle()
			if len(s.DrawPile) == 0 {
				break
			}
		}
		last := len(s.DrawPile) - 1
		s.Hands[seat] = append(s.Hands[seat], s.DrawPile[last])
		s.DrawPile = s.DrawPile[:last]
	}
	return drew
}

func (s *State) reshuffle() {
	if len(s.Discard) <= 1 {
		return
	}
	last := len(s.Discard) - 1
	pile := slices.Clone(s.Discard[:last])
	s.Discard = []Card{s.Discard[last]}
	s.Reshuffles++
	rng := rand.New(rand.NewPCG(s.Seed, uint64(s.Reshuffles)))
	rng.Shuffle(len(pile), func(i, j int) { pile[i], pile[j] = pile[j], pile[i] })
	s.DrawPile = append(s.DrawPile, pile...)
}

// settle ends the game when a hand is empty, or failing that when a hand has reached
// the ceiling, in which case the fewest cards win.
func (s *State) settle() bool {
	var empty []int
	for i, h := range s.Hands {
		if len(h) == 0 {
			empty = append(empty, i)
		}
	}
	if len(empty) > 0 {
		s.finish(empty, EndEmptyHand)
		return true
	}
	over := false
	fewest := -1
	for _, h := range s.Hands {
		if len(h) >= s.MaxHand {
			over = true
		}
		if fewest < 0 || len(h) < fewest {
			fewest = len(h)
		}
	}
	if !over {
		return false
	}
	var winners []int
	for i, h := range s.Hands {
		if len(h) == fewest {
			winners = append(winners, i)
		}
	}
	s.finish(winners, EndMaxHand)
	return true
}

func (s *State) finish(winners []int, reason string) {
	s.Status = StatusFinished
	s.WinnerSeats = winners
	s.EndReason = reason
	s.LastCall = nil
	s.PendingDraw = 0
}

// refreshLastCall flags the acting seat when it is down to one card and drops a
// stale flag once the flagged hand no longer holds exactly one card.
func (s *State) refreshLastCall(seat int) {
	if s.LastCall != nil && len(s.Hands[*s.LastCall]) != 1 {
		s.LastCall = nil
	}
	if len(s.Hands[seat]) == 1 && s.LastAction != nil && s.LastAction.Type == ActionPlayCard {
		flagged := seat
		s.LastCall = &flagged
	}
}

func (s *State) seatAfter(seat, step int) int {
	n := len(s.Hands)
	return ((seat+s.Direction*step)%n + n) % n
}
