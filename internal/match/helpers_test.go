package match

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jason-s-yu/tabletop/internal/bot"
	"github.com/jason-s-yu/tabletop/internal/cache"
	"github.com/jason-s-yu/tabletop/internal/game"
	"github.com/jason-s-yu/tabletop/internal/models"
)

// scriptState is a minimal two-seat game driven by named moves.
type scriptState struct {
	Turn     int   `json:"turn"`
	Over     bool  `json:"over"`
	Won      []int `json:"won"`
	LastCall *int  `json:"lastCall"`
}

func (s *scriptState) CurrentSeat() int { return s.Turn }
func (s *scriptState) IsTerminal() bool { return s.Over }
func (s *scriptState) Winners() []int   { return s.Won }

func (s *scriptState) PendingLastCall() (int, bool) {
	if s.LastCall == nil {
		return 0, false
	}
	return *s.LastCall, true
}

// scriptEngine registers under connect4 so rooms pick it up through WithEngine.
type scriptEngine struct{}

func (scriptEngine) Type() game.Type { return game.Connect4 }

func (scriptEngine) NewState(seats int, seed uint64) (game.State, error) {
	if seats != 2 {
		return nil, game.ErrSeatCount
	}
	return &scriptState{}, nil
}

func (scriptEngine) Apply(s game.State, seat int, raw json.RawMessage) (game.State, error) {
	st := s.(*scriptState)
	var a struct {
		Move string `json:"move"`
	}
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, game.ErrBadAction
	}
	if st.Over {
		return nil, game.ErrGameOver
	}
	next := *st
	switch a.Move {
	case "pass":
		next.Turn = 1 - st.Turn
		next.LastCall = nil
	case "win":
		next.Over = true
		next.Won = []int{seat}
	case "one":
		flagged := seat
		next.LastCall = &flagged
		next.Turn = 1 - st.Turn
	case "panic":
		panic("scripted panic")
	default:
		return nil, game.ErrBadAction
	}
	return &next, nil
}

func (scriptEngine) View(s game.State, seat int) any {
	cp := *s.(*scriptState)
	return &cp
}

func (scriptEngine) Forfeit(s game.State, seat int) game.State {
	next := *s.(*scriptState)
	next.Over = true
	next.Won = []int{1 - seat}
	next.LastCall = nil
	return &next
}

// scriptBot always answers with the same move, fails, or panics.
type scriptBot struct {
	move  string
	err   error
	crash bool
}

func (b scriptBot) ChooseAction(ctx context.Context, s game.State, seat int, budget time.Duration) (json.RawMessage, error) {
	if b.crash {
		panic("search blew up")
	}
	if b.err != nil {
		return nil, b.err
	}
	return json.RawMessage(fmt.Sprintf(`{"move":%q}`, b.move)), nil
}

func botsFor(p bot.Player) Option {
	return WithBots(func(game.Type) (bot.Player, bool) { return p, true })
}

type mockPublisher struct {
	mu       sync.Mutex
	lobby    map[string]int
	activity []cache.ActivityRecord
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{lobby: make(map[string]int)}
}

func (m *mockPublisher) PublishLobby(ctx context.Context, g string, entries []models.LobbyEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lobby[g]++
	return nil
}

func (m *mockPublisher) PublishActivity(ctx context.Context, rec cache.ActivityRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activity = append(m.activity, rec)
	return nil
}

func (m *mockPublisher) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.activity))
	for i, rec := range m.activity {
		out[i] = rec.Action
	}
	return out
}

func fastSettings() Settings {
	return Settings{
		BotThinkMin:    time.Millisecond,
		BotThinkMax:    2 * time.Millisecond,
		BotBudget:      50 * time.Millisecond,
		RematchTimeout: time.Second,
		ReconnectGrace: time.Second,
		LastCallWindow: time.Second,
	}
}

func seqCodes() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("ROOM%02d", n)
	}
}

func newTestRegistry(opts ...Option) *Registry {
	base := []Option{
		WithSettings(fastSettings()),
		WithCodeGenerator(seqCodes()),
		WithSeed(func() uint64 { return 7 }),
	}
	return NewRegistry(append(base, opts...)...)
}

var (
	alice = models.Player{ID: "p_alice", DisplayName: "Alice"}
	bob   = models.Player{ID: "p_bob", DisplayName: "Bob"}
	carol = models.Player{ID: "p_carol", DisplayName: "Carol"}
)

// startedPvP creates a PvP room with alice hosting and bob joined, and starts it.
func startedPvP(t *testing.T, r *Registry) (*Room, *Conn, *Conn) {
	t.Helper()
	ca, cb := NewConn(alice.ID, 64), NewConn(bob.ID, 64)
	room, err := r.Create(game.Connect4, alice, CreateOptions{MaxPlayers: 2}, ca)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := r.Join(room.Code(), bob, cb); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := r.Start(room.Code(), alice.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	return room, ca, cb
}

// nextEvent reads from c until a message of type typ arrives.
func nextEvent(t *testing.T, c *Conn, typ string) map[string]interface{} {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case msg := <-c.OutChan:
			if msg["type"] == typ {
				return msg
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", typ)
			return nil
		}
	}
}

// drain returns everything currently queued on c.
func drain(c *Conn) []map[string]interface{} {
	var out []map[string]interface{}
	for {
		select {
		case msg := <-c.OutChan:
			out = append(out, msg)
		default:
			return out
		}
	}
}

func move(m string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"move":%q}`, m))
}

func (room *Room) versionForTest() int {
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.version
}
