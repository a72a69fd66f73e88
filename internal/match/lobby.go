// internal/match/lobby.go
package match

import (
	"context"
	"sort"
	"time"

	"github.com/jason-s-yu/tabletop/internal/game"
	"github.com/jason-s-yu/tabletop/internal/models"
)

// updateEntry stores a room's listing and pushes the game's lobby to its watchers.
// Rooms call it with their own lock held.
func (r *Registry) updateEntry(g game.Type, entry models.LobbyEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, live := r.rooms[entry.Codigo]; !live {
		return
	}
	if r.entries[g] == nil {
		r.entries[g] = make(map[string]models.LobbyEntry)
	}
	r.entries[g][entry.Codigo] = entry
	r.broadcastLobbyLocked(g)
}

// ListByGame returns the listing for one game, oldest room first.
func (r *Registry) ListByGame(g game.Type) []models.LobbyEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listLocked(g)
}

// Page returns one page of ListByGame plus the total entry count. Pages start at 1.
func (r *Registry) Page(g game.Type, page, size int) ([]models.LobbyEntry, int) {
	all := r.ListByGame(g)
	if size <= 0 {
		size = 20
	}
	if page < 1 {
		page = 1
	}
	pages := len(all) / size
	if len(all)%size != 0 {
		pages++
	}
	if page > pages {
		return []models.LobbyEntry{}, len(all)
	}
	start := (page - 1) * size
	end := min(start+size, len(all))
	return all[start:end], len(all)
}

func (r *Registry) listLocked(g game.Type) []models.LobbyEntry {
	out := make([]models.LobbyEntry, 0, len(r.entries[g]))
	for _, e := range r.entries[g] {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Codigo < out[j].Codigo
	})
	return out
}

// Watch subscribes conn to one game's lobby and sends the current listing.
// A connection watches at most one game at a time.
func (r *Registry) Watch(g game.Type, conn *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, set := range r.watchers {
		delete(set, conn)
	}
	if r.watchers[g] == nil {
		r.watchers[g] = make(map[*Conn]struct{})
	}
	r.watchers[g][conn] = struct{}{}
	conn.Write(lobbyMessage(g, r.listLocked(g)))
}

func (r *Registry) Unwatch(conn *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, set := range r.watchers {
		delete(set, conn)
	}
}

func (r *Registry) broadcastLobbyLocked(g game.Type) {
	entries := r.listLocked(g)
	msg := lobbyMessage(g, entries)
	for conn := range r.watchers[g] {
		conn.Write(msg)
	}
	if r.publisher == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := r.publisher.PublishLobby(ctx, string(g), entries); err != nil {
			r.logger.WithError(err).WithField("game", g).Warn("failed to publish lobby listing")
		}
	}()
}

func lobbyMessage(g game.Type, entries []models.LobbyEntry) map[string]interface{} {
	return map[string]interface{}{
		"type":    EventLobbyList,
		"game":    g,
		"entries": entries,
	}
}
