// internal/match/events.go
package match

import (
	"github.com/jason-s-yu/tabletop/internal/game"
	"github.com/jason-s-yu/tabletop/internal/models"
)

// Server-to-client event names.
const (
	EventUpdate             = "match:update"
	EventStarted            = "match:started"
	EventState              = "match:state"
	EventError              = "match:error"
	EventEnded              = "match:ended"
	EventPlayerLeft         = "match:player_left"
	EventPlayerDisconnected = "match:player_disconnected"
	EventPlayerReconnected  = "match:player_reconnected"
	EventRematchVote        = "rematch:vote"
	EventRematchStart       = "rematch:start"
	EventRematchCancelled   = "rematch:cancelled"
	EventLobbyList          = "lobby:list"
)

// Leave reasons.
const (
	LeaveExplicit   = "leave"
	LeaveDisconnect = "disconnect"
)

// Ways a match can end.
const (
	EndCompleted  = "completed"
	EndAbandoned  = "abandoned"
	EndBotForfeit = "bot_forfeit"
	EndLastCall   = "last_call"
)

// Rematch cancellation reasons.
const (
	CancelDisconnected = "player_disconnected"
	CancelLeft         = "player_left"
	CancelTimeout      = "timeout"
)

// RematchVote tracks post-game votes. Voters holds player ids.
type RematchVote struct {
	Active   bool     `json:"active"`
	Voters   []string `json:"voters"`
	Required int      `json:"required"`
}

// Snapshot is what a (re)attaching client receives: the room and its view of the state.
type Snapshot struct {
	Codigo      string          `json:"codigo"`
	Game        game.Type       `json:"game"`
	Status      Status          `json:"status"`
	Version     int             `json:"version"`
	Propietario string          `json:"propietario"`
	Players     []models.Player `json:"players"`
	Seat        int             `json:"seat"`
	State       any             `json:"state,omitempty"`
	Rematch     *RematchVote    `json:"rematch,omitempty"`
}
