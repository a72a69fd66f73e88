// internal/match/registry.go
package match

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jason-s-yu/tabletop/internal/bot"
	"github.com/jason-s-yu/tabletop/internal/cache"
	"github.com/jason-s-yu/tabletop/internal/game"
	"github.com/jason-s-yu/tabletop/internal/game/checkers"
	"github.com/jason-s-yu/tabletop/internal/game/connect4"
	"github.com/jason-s-yu/tabletop/internal/game/uno"
	"github.com/jason-s-yu/tabletop/internal/metrics"
	"github.com/jason-s-yu/tabletop/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	codeAlphabet    = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength      = 6
	maxCodeAttempts = 16
)

// Publisher receives lobby listings and room activity for out-of-process consumers.
// cache.Publisher implements it.
type Publisher interface {
	PublishLobby(ctx context.Context, game string, entries []models.LobbyEntry) error
	PublishActivity(ctx context.Context, rec cache.ActivityRecord) error
}

// Registry owns every live room. Its mutex guards only its own maps; it never locks
// a room, so rooms may call into it while holding their own lock.
type Registry struct {
	mu       sync.Mutex
	rooms    map[string]*Room
	entries  map[game.Type]map[string]models.LobbyEntry
	watchers map[game.Type]map[*Conn]struct{}

	engines   map[game.Type]game.Engine
	bots      func(game.Type) (bot.Player, bool)
	settings  Settings
	newCode   func() string
	seed      func() uint64
	publisher Publisher
	logger    *logrus.Logger
}

type Option func(*Registry)

func WithSettings(s Settings) Option {
	return func(r *Registry) { r.settings = s.withDefaults() }
}

// WithCodeGenerator replaces the random room-code source.
func WithCodeGenerator(gen func() string) Option {
	return func(r *Registry) { r.newCode = gen }
}

func WithSeed(seed func() uint64) Option {
	return func(r *Registry) { r.seed = seed }
}

func WithPublisher(p Publisher) Option {
	return func(r *Registry) { r.publisher = p }
}

func WithLogger(l *logrus.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

func WithEngine(e game.Engine) Option {
	return func(r *Registry) { r.engines[e.Type()] = e }
}

func WithBots(lookup func(game.Type) (bot.Player, bool)) Option {
	return func(r *Registry) { r.bots = lookup }
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		rooms:    make(map[string]*Room),
		entries:  make(map[game.Type]map[string]models.LobbyEntry),
		watchers: make(map[game.Type]map[*Conn]struct{}),
		engines: map[game.Type]game.Engine{
			game.Connect4: connect4.Engine{},
			game.Checkers: checkers.Engine{},
			game.Uno:      uno.Engine{MaxHand: uno.DefaultMaxHand},
		},
		bots:     bot.ForGame,
		settings: DefaultSettings(),
		newCode:  RandomCode,
		seed:     rand.Uint64,
		logger:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RandomCode returns a room code drawn from an alphabet without look-alike characters.
func RandomCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[rand.IntN(len(codeAlphabet))]
	}
	return string(b)
}

// CreateOptions are the client-chosen room parameters.
type CreateOptions struct {
	MaxPlayers int
	VsBot      bool
}

// Create opens a room with creator in seat 0. A bot match seats the bot in seat 1
// and is full from the start.
func (r *Registry) Create(g game.Type, creator models.Player, opts CreateOptions, conn *Conn) (*Room, error) {
	engine, ok := r.engines[g]
	if !ok {
		return nil, ErrUnknownGame
	}
	if (opts.VsBot && opts.MaxPlayers != 1) || (!opts.VsBot && opts.MaxPlayers != 2) {
		return nil, ErrInvalidMaxPlayers
	}
	var opponent bot.Player
	if opts.VsBot {
		if opponent, ok = r.bots(g); !ok {
			return nil, ErrNoBot
		}
	}

	// The room is locked before it is published so nobody can join ahead of its creator.
	room := newRoom(r, g, engine, opponent, opts)
	room.mu.Lock()
	defer room.mu.Unlock()
	if err := r.reserve(room); err != nil {
		return nil, err
	}

	room.seatUnsafe(creator, conn)
	room.createdBy = room.seats[0].player.ID
	if opts.VsBot {
		room.seatUnsafe(models.Player{ID: "bot_" + room.code, DisplayName: "Bot", IsBot: true}, nil)
	}
	room.updateStatusUnsafe()
	room.refreshLobbyUnsafe()
	room.logActivityUnsafe(creator.ID, "create")
	room.logger.WithField("vsBot", opts.VsBot).Info("room created")
	return room, nil
}

// reserve assigns room a free code and registers it.
func (r *Registry) reserve(room *Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := 0; i < maxCodeAttempts; i++ {
		code := r.newCode()
		if _, taken := r.rooms[code]; taken {
			continue
		}
		room.code = code
		room.logger = r.logger.WithFields(logrus.Fields{"room": code, "game": room.game})
		r.rooms[code] = room
		metrics.RoomsActive.WithLabelValues(string(room.game)).Inc()
		return nil
	}
	return ErrCodeSpace
}

func (r *Registry) Get(code string) (*Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[code]
	return room, ok
}

// Remove destroys the room with the given code, if any.
func (r *Registry) Remove(code string) {
	room, ok := r.Get(code)
	if !ok {
		return
	}
	room.Destroy()
}

// drop is called by a room that is being destroyed, with the room lock held.
func (r *Registry) drop(room *Room) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rooms[room.code] != room {
		return
	}
	delete(r.rooms, room.code)
	delete(r.entries[room.game], room.code)
	metrics.RoomsActive.WithLabelValues(string(room.game)).Dec()
	r.broadcastLobbyLocked(room.game)
}

// Join, Start, Act, Leave and the other helpers below resolve the room code first,
// reporting NOT_FOUND for rooms that are gone.

func (r *Registry) Join(code string, p models.Player, conn *Conn) (models.Reason, error) {
	room, ok := r.Get(code)
	if !ok {
		return "", models.ErrNotFound
	}
	return room.Join(p, conn)
}

func (r *Registry) Start(code, playerID string) error {
	room, ok := r.Get(code)
	if !ok {
		return models.ErrNotFound
	}
	return room.Start(playerID)
}

func (r *Registry) Act(code, playerID string, action json.RawMessage) error {
	room, ok := r.Get(code)
	if !ok {
		return models.ErrNotFound
	}
	return room.Act(playerID, action)
}

func (r *Registry) Leave(code, playerID, reason string) error {
	room, ok := r.Get(code)
	if !ok {
		return models.ErrNotFound
	}
	return room.Leave(playerID, reason)
}

func (r *Registry) Continue(code, playerID string, conn *Conn) (Snapshot, error) {
	room, ok := r.Get(code)
	if !ok {
		return Snapshot{}, models.ErrNotFound
	}
	return room.Continue(playerID, conn)
}

func (r *Registry) Resume(code, playerID string, conn *Conn) (Snapshot, error) {
	room, ok := r.Get(code)
	if !ok {
		return Snapshot{}, models.ErrNotFound
	}
	return room.Resume(playerID, conn)
}

func (r *Registry) RequestRematch(code, playerID string) error {
	room, ok := r.Get(code)
	if !ok {
		return models.ErrNotFound
	}
	return room.RequestRematch(playerID)
}

func (r *Registry) CancelRematch(code, playerID string) error {
	room, ok := r.Get(code)
	if !ok {
		return models.ErrNotFound
	}
	return room.CancelRematch(playerID)
}

// Disconnect marks conn's seats as disconnected in every room it is attached to.
func (r *Registry) Disconnect(conn *Conn) {
	r.Unwatch(conn)
	for _, code := range conn.Rooms() {
		if room, ok := r.Get(code); ok {
			room.Disconnect(conn)
		}
	}
}

// logActivity publishes rec without blocking the caller.
func (r *Registry) logActivity(rec cache.ActivityRecord) {
	if r.publisher == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := r.publisher.PublishActivity(ctx, rec); err != nil {
			r.logger.WithError(err).WithField("room", rec.RoomCode).Warn("failed to publish room activity")
		}
	}()
}
