// internal/models/lobby.go
package models

import "time"

const (
	LobbyOpen = "OPEN"
	LobbyFull = "FULL"
)

// LobbyEntry is the public listing of one room. It carries only the room code and
// the host's sanitized name, never a player id.
type LobbyEntry struct {
	Codigo      string    `json:"codigo"`
	Game        string    `json:"game"`
	Propietario string    `json:"propietario"`
	Jugadores   int       `json:"jugadores"`
	MaxPlayers  int       `json:"maxPlayers"`
	VsBot       bool      `json:"vsBot"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}
