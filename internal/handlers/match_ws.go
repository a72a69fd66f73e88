// internal/handlers/match_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/tabletop/internal/match"
	"github.com/jason-s-yu/tabletop/internal/metrics"
	"github.com/jason-s-yu/tabletop/internal/middleware"
	"github.com/sirupsen/logrus"
)

const (
	matchSubprotocol = "match"
	outBuffer        = 32
	pingInterval     = 30 * time.Second
	writeTimeout     = 5 * time.Second
)

// MatchWSHandler serves the single match socket. The player identity comes from the
// handshake token; nothing in a client payload can change it.
func MatchWSHandler(logger *logrus.Logger, reg *match.Registry, names NameLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{matchSubprotocol},
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != matchSubprotocol {
			c.Close(BadSubprotocolError, "client must speak the match subprotocol")
			return
		}

		player, err := resolvePlayer(r.Context(), r, names)
		if err != nil {
			logger.WithError(err).WithField("remote", r.RemoteAddr).Warn("socket authentication failed")
			c.Close(InvalidAuthTokenError, "authentication failed")
			return
		}

		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)
		metrics.SocketsOpen.Inc()
		defer metrics.SocketsOpen.Dec()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		conn := match.NewConn(player.ID, outBuffer)
		d := &dispatcher{reg: reg, player: player, conn: conn, logger: logger}

		go writePump(ctx, c, conn, logger)
		readErr := readPump(ctx, c, d, logger)

		// Seats held by this socket enter their reconnect grace period.
		reg.Disconnect(conn)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, readErr)
	}
}

// readPump decodes envelopes until the socket closes and hands each one to d.
func readPump(ctx context.Context, c *websocket.Conn, d *dispatcher, logger *logrus.Logger) error {
	for {
		typ, msg, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if typ != websocket.MessageText {
			logger.WithField("player", d.player.ID).Warn("ignoring non-text frame")
			continue
		}

		var env envelope
		if err := json.Unmarshal(msg, &env); err != nil || env.Type == "" {
			d.conn.Write(nack(env.ID, "", "BAD_ENVELOPE"))
			continue
		}
		d.conn.Write(d.handle(env))
	}
}

// writePump drains the connection's outbound channel onto the socket and pings it.
func writePump(ctx context.Context, c *websocket.Conn, conn *match.Conn, logger *logrus.Logger) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer c.Close(websocket.StatusGoingAway, "write pump stopping")

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-conn.OutChan:
			data, err := json.Marshal(msg)
			if err != nil {
				logger.Warnf("failed to marshal outgoing msg for player %s: %v", conn.PlayerID, err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("failed to write to websocket for player %s: %v", conn.PlayerID, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("failed to ping player %s: %v", conn.PlayerID, err)
				return
			}
		}
	}
}
