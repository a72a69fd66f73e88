// internal/models/player.go
package models

// Player is one seat in a room. ID is the hashed external identity and
// DisplayName is already sanitized, so both are safe to broadcast.
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	IsBot       bool   `json:"isBot"`
	Connected   bool   `json:"connected"`
	SeatIndex   int    `json:"seatIndex"`
}
