// internal/match/reconnect.go
package match

import (
	"time"

	"github.com/jason-s-yu/tabletop/internal/models"
)

// Disconnect marks the seat bound to conn as disconnected and starts its grace
// period. The seat is released if no connection re-attaches before it runs out.
func (room *Room) Disconnect(conn *Conn) {
	room.mu.Lock()
	defer room.mu.Unlock()

	if room.status == StatusDestroyed {
		return
	}
	var s *seat
	for _, candidate := range room.seats {
		if candidate.conn == conn {
			s = candidate
			break
		}
	}
	if s == nil {
		return
	}
	s.conn = nil
	s.player.Connected = false
	conn.detach(room.code)

	room.broadcastUnsafe(map[string]interface{}{
		"type":   EventPlayerDisconnected,
		"codigo": room.code,
		"nombre": s.player.DisplayName,
	})
	room.logger.WithField("player", s.player.ID).Info("player disconnected")
	if room.rematch != nil {
		room.cancelRematchUnsafe(CancelDisconnected)
	}
	room.refreshLobbyUnsafe()

	if s.grace != nil {
		s.grace.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(room.settings.ReconnectGrace, func() {
		room.mu.Lock()
		defer room.mu.Unlock()
		// Stale timer or the player came back.
		if room.status == StatusDestroyed || s.grace != timer || s.conn != nil {
			return
		}
		s.grace = nil
		if room.seatOfUnsafe(s.player.ID) != s {
			return
		}
		room.leaveUnsafe(s, LeaveDisconnect)
	})
	s.grace = timer
}

// Continue re-attaches a seated player to the room and returns a snapshot of it.
func (room *Room) Continue(playerID string, conn *Conn) (Snapshot, error) {
	room.mu.Lock()
	defer room.mu.Unlock()

	s := room.seatOfUnsafe(playerID)
	if room.status == StatusDestroyed || s == nil {
		return Snapshot{}, models.ErrNotFound
	}
	room.reattachUnsafe(s, conn)
	return room.snapshotUnsafe(s), nil
}

// Resume is Continue for a client that expects a running match. The player is
// still re-attached when the room is back to waiting, but the call reports
// WAITING_FOR_PLAYERS alongside the snapshot.
func (room *Room) Resume(playerID string, conn *Conn) (Snapshot, error) {
	room.mu.Lock()
	defer room.mu.Unlock()

	s := room.seatOfUnsafe(playerID)
	if room.status == StatusDestroyed || s == nil {
		return Snapshot{}, models.ErrNotFound
	}
	room.reattachUnsafe(s, conn)
	snap := room.snapshotUnsafe(s)
	if room.status == StatusWaiting {
		return snap, models.ErrWaitingForPlayers
	}
	return snap, nil
}

func (room *Room) reattachUnsafe(s *seat, conn *Conn) {
	if s.grace != nil {
		s.grace.Stop()
		s.grace = nil
	}
	wasConnected := s.conn != nil
	room.attachUnsafe(s, conn)
	if wasConnected || s.conn == nil {
		return
	}
	room.broadcastUnsafe(map[string]interface{}{
		"type":   EventPlayerReconnected,
		"codigo": room.code,
		"nombre": s.player.DisplayName,
	})
	room.refreshLobbyUnsafe()
	room.logger.WithField("player", s.player.ID).Info("player reconnected")
}
