// internal/match/rematch.go
package match

import (
	"slices"
	"time"

	"github.com/jason-s-yu/tabletop/internal/metrics"
	"github.com/jason-s-yu/tabletop/internal/models"
	"github.com/sirupsen/logrus"
)

// RequestRematch records playerID's vote. Voting twice is a no-op. When every
// human has voted, a bot match restarts in place and a PvP match moves both
// players to a fresh room.
func (room *Room) RequestRematch(playerID string) error {
	room.mu.Lock()
	defer room.mu.Unlock()

	s := room.seatOfUnsafe(playerID)
	if room.status == StatusDestroyed || s == nil {
		return models.ErrNotFound
	}
	if room.status != StatusFinished || len(room.seats) < roomSeats {
		return ErrRematchUnavailable
	}

	if room.rematch == nil {
		vote := &RematchVote{Active: true, Required: room.humansUnsafe()}
		room.rematch = vote
		room.rematchTimer = time.AfterFunc(room.settings.RematchTimeout, func() {
			room.mu.Lock()
			defer room.mu.Unlock()
			if room.rematch != vote {
				return
			}
			room.cancelRematchUnsafe(CancelTimeout)
		})
	}
	if slices.Contains(room.rematch.Voters, playerID) {
		return nil
	}
	room.rematch.Voters = append(room.rematch.Voters, playerID)
	room.broadcastUnsafe(map[string]interface{}{
		"type":     EventRematchVote,
		"codigo":   room.code,
		"votes":    len(room.rematch.Voters),
		"required": room.rematch.Required,
	})
	room.logActivityUnsafe(playerID, "rematch:vote")

	if len(room.rematch.Voters) < room.rematch.Required {
		return nil
	}
	return room.completeRematchUnsafe()
}

// CancelRematch withdraws a pending vote on behalf of playerID.
func (room *Room) CancelRematch(playerID string) error {
	room.mu.Lock()
	defer room.mu.Unlock()

	if room.status == StatusDestroyed || room.seatOfUnsafe(playerID) == nil {
		return models.ErrNotFound
	}
	if room.rematch == nil {
		return ErrNoPendingRematch
	}
	room.cancelRematchUnsafe(CancelLeft)
	return nil
}

func (room *Room) cancelRematchUnsafe(reason string) {
	if room.rematchTimer != nil {
		room.rematchTimer.Stop()
		room.rematchTimer = nil
	}
	room.rematch = nil
	room.broadcastUnsafe(map[string]interface{}{
		"type":   EventRematchCancelled,
		"codigo": room.code,
		"reason": reason,
	})
	metrics.Rematches.WithLabelValues(string(room.game), "cancelled").Inc()
	room.logger.WithField("reason", reason).Info("rematch cancelled")
}

func (room *Room) completeRematchUnsafe() error {
	if room.rematchTimer != nil {
		room.rematchTimer.Stop()
		room.rematchTimer = nil
	}
	room.rematch = nil

	if room.vsBot {
		if err := room.startGameUnsafe(); err != nil {
			return err
		}
		metrics.Rematches.WithLabelValues(string(room.game), "restarted").Inc()
		room.broadcastUnsafe(map[string]interface{}{
			"type":   EventRematchStart,
			"codigo": room.code,
		})
		room.broadcastUnsafe(map[string]interface{}{
			"type":        EventStarted,
			"codigo":      room.code,
			"propietario": room.hostNameUnsafe(),
		})
		room.broadcastStateUnsafe()
		room.refreshLobbyUnsafe()
		room.logger.Info("rematch started in place")
		room.afterMoveUnsafe()
		return nil
	}

	next, err := room.registry.createRematch(room)
	if err != nil {
		room.logger.WithError(err).Error("failed to open rematch room")
		return err
	}
	metrics.Rematches.WithLabelValues(string(room.game), "moved").Inc()
	room.broadcastUnsafe(map[string]interface{}{
		"type":     EventRematchStart,
		"codigo":   next.code,
		"previous": room.code,
	})
	room.logger.WithField("next", next.code).Info("rematch moved to new room")
	if err := next.Start(room.createdBy); err != nil {
		room.logger.WithError(err).Error("failed to start rematch room")
	}
	room.destroyUnsafe()
	return nil
}

// createRematch opens a full room seating old's players in the same order.
// The caller holds old's lock.
func (r *Registry) createRematch(old *Room) (*Room, error) {
	room := newRoom(r, old.game, old.engine, old.bot, CreateOptions{MaxPlayers: old.maxPlayers, VsBot: old.vsBot})
	room.mu.Lock()
	defer room.mu.Unlock()
	if err := r.reserve(room); err != nil {
		return nil, err
	}

	for _, s := range old.seats {
		room.seatUnsafe(s.player, s.conn)
	}
	room.createdBy = old.createdBy
	room.updateStatusUnsafe()
	room.refreshLobbyUnsafe()
	room.logActivityUnsafe(room.createdBy, "create")
	room.logger.WithFields(logrus.Fields{"previous": old.code}).Info("rematch room created")
	return room, nil
}
