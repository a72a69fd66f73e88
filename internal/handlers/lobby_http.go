// internal/handlers/lobby_http.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/jason-s-yu/tabletop/internal/game"
	"github.com/jason-s-yu/tabletop/internal/match"
	"github.com/jason-s-yu/tabletop/internal/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type lobbyPage struct {
	Game    game.Type           `json:"game"`
	Page    int                 `json:"page"`
	Size    int                 `json:"size"`
	Total   int                 `json:"total"`
	Entries []models.LobbyEntry `json:"entries"`
}

// ListLobbiesHandler serves GET /lobby/list?game=&page=&size=.
func ListLobbiesHandler(reg *match.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		q := r.URL.Query()
		g, ok := game.ParseType(q.Get("game"))
		if !ok {
			http.Error(w, "unknown game", http.StatusBadRequest)
			return
		}
		page := queryInt(q.Get("page"), 1)
		size := min(queryInt(q.Get("size"), defaultPageSize), maxPageSize)

		entries, total := reg.Page(g, page, size)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(lobbyPage{Game: g, Page: page, Size: size, Total: total, Entries: entries})
	}
}

func queryInt(raw string, def int) int {
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return def
	}
	return v
}
