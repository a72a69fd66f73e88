// internal/match/room.go
package match

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jason-s-yu/tabletop/internal/auth"
	"github.com/jason-s-yu/tabletop/internal/bot"
	"github.com/jason-s-yu/tabletop/internal/cache"
	"github.com/jason-s-yu/tabletop/internal/game"
	"github.com/jason-s-yu/tabletop/internal/metrics"
	"github.com/jason-s-yu/tabletop/internal/models"
	"github.com/sirupsen/logrus"
)

type Status string

const (
	StatusWaiting    Status = "WAITING"
	StatusFull       Status = "FULL"
	StatusInProgress Status = "IN_PROGRESS"
	StatusFinished   Status = "FINISHED"
	StatusDestroyed  Status = "DESTROYED"
)

// seats per room. maxPlayers counts human seats only; a bot match fills the other.
const roomSeats = 2

type seat struct {
	player models.Player
	conn   *Conn
	grace  *time.Timer
}

// Room owns one match. Every exported method takes mu; methods suffixed Unsafe
// assume it is already held.
type Room struct {
	mu sync.Mutex

	code     string
	game     game.Type
	engine   game.Engine
	bot      bot.Player
	registry *Registry
	settings Settings
	logger   *logrus.Entry

	seats      []*seat
	maxPlayers int
	vsBot      bool
	createdBy  string
	createdAt  time.Time

	status  Status
	state   game.State
	version int

	rematch      *RematchVote
	rematchTimer *time.Timer

	botJob        *botJob
	lastCallTimer *time.Timer
	lastCallSeat  int
}

func newRoom(r *Registry, g game.Type, engine game.Engine, opponent bot.Player, opts CreateOptions) *Room {
	return &Room{
		game:       g,
		engine:     engine,
		bot:        opponent,
		registry:   r,
		settings:   r.settings,
		logger:     r.logger.WithField("game", g),
		maxPlayers: opts.MaxPlayers,
		vsBot:      opts.VsBot,
		createdAt:  time.Now(),
		status:     StatusWaiting,
	}
}

func (room *Room) Code() string    { return room.code }
func (room *Room) Game() game.Type { return room.game }

func (room *Room) Status() Status {
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.status
}

// Players returns a copy of the seated players ordered by seat.
func (room *Room) Players() []models.Player {
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.playersUnsafe()
}

// Join seats p. Joining a room one already sits in re-attaches conn and reports ALREADY_JOINED.
func (room *Room) Join(p models.Player, conn *Conn) (models.Reason, error) {
	room.mu.Lock()
	defer room.mu.Unlock()

	if room.status == StatusDestroyed {
		return "", models.ErrNotFound
	}
	if s := room.seatOfUnsafe(p.ID); s != nil {
		room.attachUnsafe(s, conn)
		return models.ReasonAlreadyJoined, nil
	}
	if room.vsBot {
		return "", models.ErrBotMatch
	}
	if room.status == StatusInProgress || room.status == StatusFinished {
		return "", models.ErrStarted
	}
	if room.humansUnsafe() >= room.maxPlayers {
		return "", models.ErrFull
	}

	s := room.seatUnsafe(p, conn)
	room.updateStatusUnsafe()
	room.broadcastUnsafe(map[string]interface{}{
		"type":       EventUpdate,
		"codigo":     room.code,
		"jugadores":  room.humansUnsafe(),
		"maxPlayers": room.maxPlayers,
		"status":     room.status,
		"players":    room.playersUnsafe(),
	})
	room.refreshLobbyUnsafe()
	room.logActivityUnsafe(s.player.ID, "join")
	room.logger.WithField("player", s.player.ID).Info("player joined")
	return "", nil
}

// Start begins the match. Only the host may start, and only a full room.
func (room *Room) Start(requesterID string) error {
	room.mu.Lock()
	defer room.mu.Unlock()

	if room.status == StatusDestroyed {
		return models.ErrNotFound
	}
	if requesterID != room.createdBy {
		return models.ErrNotHost
	}
	if room.status == StatusInProgress || room.status == StatusFinished {
		return models.ErrStarted
	}
	if room.status != StatusFull {
		return models.ErrNotFull
	}
	if err := room.startGameUnsafe(); err != nil {
		return err
	}
	room.broadcastUnsafe(map[string]interface{}{
		"type":        EventStarted,
		"codigo":      room.code,
		"propietario": room.hostNameUnsafe(),
	})
	room.broadcastStateUnsafe()
	room.refreshLobbyUnsafe()
	room.logActivityUnsafe(requesterID, "start")
	room.logger.Info("match started")
	room.afterMoveUnsafe()
	return nil
}

// startGameUnsafe installs a fresh initial state.
func (room *Room) startGameUnsafe() error {
	state, err := room.engine.NewState(len(room.seats), room.registry.seed())
	if err != nil {
		return fmt.Errorf("creating %s state: %w", room.game, err)
	}
	room.cancelTimersUnsafe()
	room.state = state
	room.version++
	room.status = StatusInProgress
	room.rematch = nil
	return nil
}

// Act applies a player's action. A rejected action leaves the room untouched and is
// reported to that player alone.
func (room *Room) Act(playerID string, action json.RawMessage) error {
	room.mu.Lock()
	defer room.mu.Unlock()

	s := room.seatOfUnsafe(playerID)
	if room.status == StatusDestroyed || s == nil {
		return models.ErrNotFound
	}
	err := room.actUnsafe(s, action)
	if err != nil {
		code := "REJECTED"
		var ruleErr *game.RuleError
		if errors.As(err, &ruleErr) {
			code = ruleErr.Code
		}
		metrics.RejectedTotal.WithLabelValues(string(room.game), code).Inc()
		if s.conn != nil {
			s.conn.WriteError(code, room.code)
		}
	}
	return err
}

func (room *Room) actUnsafe(s *seat, action json.RawMessage) error {
	if room.status != StatusInProgress {
		return ErrNotInProgress
	}
	idx := s.player.SeatIndex
	if idx != room.state.CurrentSeat() {
		ot, ok := room.engine.(game.OutOfTurnActor)
		if !ok || !ot.OutOfTurn(action) {
			return game.ErrNotYourTurn
		}
	}
	return room.applyUnsafe(idx, action, "human")
}

// applyUnsafe runs the engine and, on success, replaces the state and fans it out.
// A panic inside the engine is treated as a rejection.
func (room *Room) applyUnsafe(idx int, action json.RawMessage, actor string) (err error) {
	var next game.State
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				room.logger.WithField("panic", rec).Error("engine panicked applying action")
				next, err = nil, game.ErrEngineFault
			}
		}()
		next, err = room.engine.Apply(room.state, idx, action)
	}()
	if err != nil {
		return err
	}

	room.state = next
	room.version++
	metrics.MovesTotal.WithLabelValues(string(room.game), actor).Inc()
	room.broadcastStateUnsafe()
	room.afterMoveUnsafe()
	return nil
}

// afterMoveUnsafe ends the match on a terminal state, otherwise schedules whatever
// the new state needs: a bot move or a last-card deadline.
func (room *Room) afterMoveUnsafe() {
	room.cancelBotUnsafe()
	if room.state.IsTerminal() {
		room.finishUnsafe(EndCompleted)
		return
	}
	room.scheduleBotUnsafe()
	room.armLastCallUnsafe()
}

// forfeitUnsafe ends the match with the seat at idx losing.
func (room *Room) forfeitUnsafe(idx int, reason string) {
	room.state = room.engine.Forfeit(room.state, idx)
	room.version++
	room.broadcastStateUnsafe()
	room.finishUnsafe(reason)
}

func (room *Room) finishUnsafe(reason string) {
	room.status = StatusFinished
	room.cancelTimersUnsafe()

	winners := room.state.Winners()
	names := make([]string, 0, len(winners))
	for _, w := range winners {
		if pos := room.seatPosUnsafe(w); pos >= 0 {
			names = append(names, room.seats[pos].player.DisplayName)
		}
	}
	room.broadcastUnsafe(map[string]interface{}{
		"type":        EventEnded,
		"codigo":      room.code,
		"reason":      reason,
		"winners":     winners,
		"winnerNames": names,
	})
	metrics.MatchesFinished.WithLabelValues(string(room.game), reason).Inc()
	room.refreshLobbyUnsafe()
	room.logActivityUnsafe("", "end:"+reason)
	room.logger.WithFields(logrus.Fields{"reason": reason, "winners": winners}).Info("match finished")
}

// Leave removes the player's seat. An in-progress PvP match is abandoned in favour
// of the remaining player; an empty room is destroyed.
func (room *Room) Leave(playerID, reason string) error {
	room.mu.Lock()
	defer room.mu.Unlock()

	s := room.seatOfUnsafe(playerID)
	if room.status == StatusDestroyed || s == nil {
		return models.ErrNotFound
	}
	if reason != LeaveDisconnect {
		reason = LeaveExplicit
	}
	room.leaveUnsafe(s, reason)
	return nil
}

func (room *Room) leaveUnsafe(s *seat, reason string) {
	if s.grace != nil {
		s.grace.Stop()
		s.grace = nil
	}
	if s.conn != nil {
		s.conn.detach(room.code)
		s.conn = nil
	}
	pos := room.seatPosUnsafe(s.player.SeatIndex)
	room.seats = append(room.seats[:pos], room.seats[pos+1:]...)

	room.broadcastUnsafe(map[string]interface{}{
		"type":   EventPlayerLeft,
		"codigo": room.code,
		"nombre": s.player.DisplayName,
		"reason": reason,
	})
	room.logActivityUnsafe(s.player.ID, "leave:"+reason)
	room.logger.WithFields(logrus.Fields{"player": s.player.ID, "reason": reason}).Info("player left")

	if room.rematch != nil {
		cancel := CancelLeft
		if reason == LeaveDisconnect {
			cancel = CancelDisconnected
		}
		room.cancelRematchUnsafe(cancel)
	}

	if room.humansUnsafe() == 0 {
		room.destroyUnsafe()
		return
	}

	if room.createdBy == s.player.ID {
		for _, other := range room.seats {
			if !other.player.IsBot {
				room.createdBy = other.player.ID
				break
			}
		}
	}

	switch room.status {
	case StatusInProgress:
		room.forfeitUnsafe(s.player.SeatIndex, EndAbandoned)
	case StatusWaiting, StatusFull:
		room.updateStatusUnsafe()
		room.refreshLobbyUnsafe()
	default:
		room.refreshLobbyUnsafe()
	}
}

// Destroy tears the room down regardless of who is seated.
func (room *Room) Destroy() {
	room.mu.Lock()
	defer room.mu.Unlock()
	if room.status != StatusDestroyed {
		room.destroyUnsafe()
	}
}

func (room *Room) destroyUnsafe() {
	room.status = StatusDestroyed
	room.cancelTimersUnsafe()
	if room.rematchTimer != nil {
		room.rematchTimer.Stop()
		room.rematchTimer = nil
	}
	room.rematch = nil
	for _, s := range room.seats {
		if s.grace != nil {
			s.grace.Stop()
			s.grace = nil
		}
		if s.conn != nil {
			s.conn.detach(room.code)
		}
	}
	room.registry.drop(room)
	room.logger.Info("room destroyed")
}

// seatUnsafe places p in the lowest free seat index.
func (room *Room) seatUnsafe(p models.Player, conn *Conn) *seat {
	taken := make(map[int]bool, len(room.seats))
	for _, s := range room.seats {
		taken[s.player.SeatIndex] = true
	}
	idx := 0
	for taken[idx] {
		idx++
	}
	p.SeatIndex = idx
	p.DisplayName = auth.SanitizeDisplayName(p.DisplayName)
	p.Connected = p.IsBot || conn != nil
	s := &seat{player: p}
	room.attachUnsafe(s, conn)

	pos := len(room.seats)
	for i, other := range room.seats {
		if other.player.SeatIndex > idx {
			pos = i
			break
		}
	}
	room.seats = append(room.seats, nil)
	copy(room.seats[pos+1:], room.seats[pos:])
	room.seats[pos] = s
	return s
}

// attachUnsafe points the seat at conn, replacing any previous connection.
func (room *Room) attachUnsafe(s *seat, conn *Conn) {
	if conn == nil {
		return
	}
	if s.conn != nil && s.conn != conn {
		s.conn.detach(room.code)
	}
	s.conn = conn
	s.player.Connected = true
	conn.attach(room.code)
}

func (room *Room) updateStatusUnsafe() {
	if room.status != StatusWaiting && room.status != StatusFull {
		return
	}
	if len(room.seats) >= roomSeats && room.humansUnsafe() >= room.maxPlayers {
		room.status = StatusFull
	} else {
		room.status = StatusWaiting
	}
}

func (room *Room) seatOfUnsafe(playerID string) *seat {
	for _, s := range room.seats {
		if s.player.ID == playerID {
			return s
		}
	}
	return nil
}

// seatPosUnsafe maps a seat index to its position in room.seats, or -1.
func (room *Room) seatPosUnsafe(idx int) int {
	for i, s := range room.seats {
		if s.player.SeatIndex == idx {
			return i
		}
	}
	return -1
}

func (room *Room) humansUnsafe() int {
	n := 0
	for _, s := range room.seats {
		if !s.player.IsBot {
			n++
		}
	}
	return n
}

func (room *Room) playersUnsafe() []models.Player {
	out := make([]models.Player, len(room.seats))
	for i, s := range room.seats {
		out[i] = s.player
	}
	return out
}

func (room *Room) hostNameUnsafe() string {
	if s := room.seatOfUnsafe(room.createdBy); s != nil {
		return s.player.DisplayName
	}
	return auth.FallbackName
}

func (room *Room) broadcastUnsafe(msg map[string]interface{}) {
	for _, s := range room.seats {
		if s.conn != nil {
			s.conn.Write(msg)
		}
	}
}

// broadcastStateUnsafe sends each seat its own projection of the state.
func (room *Room) broadcastStateUnsafe() {
	for _, s := range room.seats {
		if s.conn == nil {
			continue
		}
		s.conn.Write(map[string]interface{}{
			"type":    EventState,
			"codigo":  room.code,
			"version": room.version,
			"status":  room.status,
			"seat":    s.player.SeatIndex,
			"state":   room.engine.View(room.state, s.player.SeatIndex),
		})
	}
}

func (room *Room) snapshotUnsafe(s *seat) Snapshot {
	snap := Snapshot{
		Codigo:      room.code,
		Game:        room.game,
		Status:      room.status,
		Version:     room.version,
		Propietario: room.hostNameUnsafe(),
		Players:     room.playersUnsafe(),
		Seat:        s.player.SeatIndex,
	}
	if room.state != nil {
		snap.State = room.engine.View(room.state, s.player.SeatIndex)
	}
	if room.rematch != nil {
		vote := *room.rematch
		vote.Voters = append([]string(nil), room.rematch.Voters...)
		snap.Rematch = &vote
	}
	return snap
}

func (room *Room) entryUnsafe() models.LobbyEntry {
	status := models.LobbyFull
	if room.status == StatusWaiting {
		status = models.LobbyOpen
	}
	return models.LobbyEntry{
		Codigo:      room.code,
		Game:        string(room.game),
		Propietario: room.hostNameUnsafe(),
		Jugadores:   room.humansUnsafe(),
		MaxPlayers:  room.maxPlayers,
		VsBot:       room.vsBot,
		Status:      status,
		CreatedAt:   room.createdAt,
	}
}

func (room *Room) refreshLobbyUnsafe() {
	room.registry.updateEntry(room.game, room.entryUnsafe())
}

func (room *Room) logActivityUnsafe(actorID, action string) {
	room.registry.logActivity(cache.ActivityRecord{
		RoomCode: room.code,
		Game:     string(room.game),
		Version:  room.version,
		ActorID:  actorID,
		Action:   action,
	})
}

// cancelTimersUnsafe stops the bot job and the last-card deadline.
func (room *Room) cancelTimersUnsafe() {
	room.cancelBotUnsafe()
	if room.lastCallTimer != nil {
		room.lastCallTimer.Stop()
		room.lastCallTimer = nil
	}
}
