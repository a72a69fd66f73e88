// internal/match/settings.go
package match

import (
	"errors"
	"time"

	"github.com/jason-s-yu/tabletop/internal/game"
)

// Settings holds the room timers. Zero values are replaced by DefaultSettings.
type Settings struct {
	BotThinkMin    time.Duration
	BotThinkMax    time.Duration
	BotBudget      time.Duration
	RematchTimeout time.Duration
	ReconnectGrace time.Duration
	LastCallWindow time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		BotThinkMin:    400 * time.Millisecond,
		BotThinkMax:    1200 * time.Millisecond,
		BotBudget:      800 * time.Millisecond,
		RematchTimeout: 30 * time.Second,
		ReconnectGrace: 20 * time.Second,
		LastCallWindow: 5 * time.Second,
	}
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.BotThinkMin <= 0 {
		s.BotThinkMin = d.BotThinkMin
	}
	if s.BotThinkMax < s.BotThinkMin {
		s.BotThinkMax = s.BotThinkMin
	}
	if s.BotBudget <= 0 {
		s.BotBudget = d.BotBudget
	}
	if s.RematchTimeout <= 0 {
		s.RematchTimeout = d.RematchTimeout
	}
	if s.ReconnectGrace <= 0 {
		s.ReconnectGrace = d.ReconnectGrace
	}
	if s.LastCallWindow <= 0 {
		s.LastCallWindow = d.LastCallWindow
	}
	return s
}

var (
	ErrUnknownGame       = errors.New("unknown game")
	ErrInvalidMaxPlayers = errors.New("maxPlayers must be 1 for bot matches and 2 otherwise")
	ErrNoBot             = errors.New("game has no bot opponent")
	ErrCodeSpace         = errors.New("could not allocate a free room code")

	ErrNotInProgress      = &game.RuleError{Code: "NOT_IN_PROGRESS"}
	ErrRematchUnavailable = &game.RuleError{Code: "REMATCH_UNAVAILABLE"}
	ErrNoPendingRematch   = &game.RuleError{Code: "NO_PENDING_REMATCH"}
)
