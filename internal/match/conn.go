// internal/match/conn.go
package match

import (
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Conn is one client's presence as seen by rooms and the lobby. Rooms only ever
// push onto OutChan; the transport drains it.
type Conn struct {
	PlayerID string
	OutChan  chan map[string]interface{}

	mu    sync.Mutex
	rooms map[string]struct{}
}

func NewConn(playerID string, buffer int) *Conn {
	return &Conn{
		PlayerID: playerID,
		OutChan:  make(chan map[string]interface{}, buffer),
		rooms:    make(map[string]struct{}),
	}
}

// Write pushes a message onto OutChan without blocking. A full channel drops the message.
func (c *Conn) Write(msg map[string]interface{}) {
	select {
	case c.OutChan <- msg:
	default:
		msgType, _ := msg["type"].(string)
		log.WithFields(log.Fields{"player": c.PlayerID, "type": msgType}).Warn("outbound channel full, dropping message")
	}
}

// WriteError sends a targeted error to this client only.
func (c *Conn) WriteError(code, room string) {
	c.Write(map[string]interface{}{
		"type":   EventError,
		"codigo": room,
		"code":   code,
	})
}

// Rooms returns the codes of rooms this connection is attached to.
func (c *Conn) Rooms() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.rooms))
	for code := range c.rooms {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

func (c *Conn) attach(code string) {
	c.mu.Lock()
	c.rooms[code] = struct{}{}
	c.mu.Unlock()
}

func (c *Conn) detach(code string) {
	c.mu.Lock()
	delete(c.rooms, code)
	c.mu.Unlock()
}
