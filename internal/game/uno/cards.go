// internal/game/uno/cards.go
package uno

type Color string

const (
	Red    Color = "red"
	Yellow Color = "yellow"
	Green  Color = "green"
	Blue   Color = "blue"
	// Black is the printed colour of wild-family cards. It is never the active colour.
	Black Color = "black"
)

var Colors = [4]Color{Red, Yellow, Green, Blue}

type Kind string

const (
	KindNumber     Kind = "number"
	KindSkip       Kind = "skip"
	KindReverse    Kind = "reverse"
	KindDraw2      Kind = "draw2"
	KindWild       Kind = "wild"
	KindWildDraw4  Kind = "wild_draw4"
	KindSwap       Kind = "swap"
	KindDiscardAll Kind = "discard_all"
	KindSkipAll    Kind = "skip_all"
	KindDouble     Kind = "double"
)

type Card struct {
	ID    int   `json:"id"`
	Color Color `json:"color"`
	Kind  Kind  `json:"kind"`
	Value int   `json:"value,omitempty"`
}

// IsWild reports whether the card can be played on anything and needs a chosen colour.
func (c Card) IsWild() bool {
	return c.Kind == KindWild || c.Kind == KindWildDraw4 || c.Kind == KindSwap
}

// stacks reports whether the card may answer a pending draw penalty.
func (c Card) stacks() bool {
	return c.Kind == KindDraw2 || c.Kind == KindWildDraw4 || c.Kind == KindDouble
}

// DeckSize is the card count of NewDeck.
const DeckSize = 124

// NewDeck builds the full deck in a fixed order: per colour one 0, two of each 1-9,
// two skip, reverse and draw2, and one each of discard_all, skip_all and double;
// then four wild, four wild_draw4 and four swap.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	add := func(color Color, kind Kind, value int) {
		deck = append(deck, Card{ID: len(deck), Color: color, Kind: kind, Value: value})
	}
	for _, color := range Colors {
		add(color, KindNumber, 0)
		for v := 1; v <= 9; v++ {
			add(color, KindNumber, v)
			add(color, KindNumber, v)
		}
		for _, kind := range []Kind{KindSkip, KindReverse, KindDraw2} {
			add(color, kind, 0)
			add(color, kind, 0)
		}
		for _, kind := range []Kind{KindDiscardAll, KindSkipAll, KindDouble} {
			add(color, kind, 0)
		}
	}
	for _, kind := range []Kind{KindWild, KindWildDraw4, KindSwap} {
		for i := 0; i < 4; i++ {
			add(Black, kind, 0)
		}
	}
	return deck
}

func validColor(c Color) bool {
	for _, k := range Colors {
		if c == k {
			return true
		}
	}
	return false
}
