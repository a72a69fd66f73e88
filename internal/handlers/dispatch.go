// internal/handlers/dispatch.go
package handlers

import (
	"encoding/json"
	"errors"

	"github.com/jason-s-yu/tabletop/internal/game"
	"github.com/jason-s-yu/tabletop/internal/match"
	"github.com/jason-s-yu/tabletop/internal/models"
	"github.com/sirupsen/logrus"
)

// envelope is one client request. ID is echoed in the ack.
type envelope struct {
	ID   int64           `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// request is the union of every inbound payload; each handler reads its own fields.
type request struct {
	Codigo     string          `json:"codigo"`
	Game       string          `json:"game"`
	MaxPlayers int             `json:"maxPlayers"`
	VsBot      bool            `json:"vsBot"`
	Reason     string          `json:"reason"`
	Action     json.RawMessage `json:"action"`
}

type dispatcher struct {
	reg    *match.Registry
	player models.Player
	conn   *match.Conn
	logger *logrus.Logger
}

// handle runs one request against the registry and returns its ack.
func (d *dispatcher) handle(env envelope) map[string]interface{} {
	var req request
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &req); err != nil {
			return nack(env.ID, "", "BAD_PAYLOAD")
		}
	}

	switch env.Type {
	case "ping":
		return ack(env.ID)

	case "match:create":
		g, ok := game.ParseType(req.Game)
		if !ok {
			return nack(env.ID, "", "UNKNOWN_GAME")
		}
		room, err := d.reg.Create(g, d.player, match.CreateOptions{MaxPlayers: req.MaxPlayers, VsBot: req.VsBot}, d.conn)
		if err != nil {
			return d.fail(env, err)
		}
		resp := ack(env.ID)
		resp["codigo"] = room.Code()
		return resp

	case "match:join":
		reason, err := d.reg.Join(req.Codigo, d.player, d.conn)
		if err != nil {
			return d.fail(env, err)
		}
		resp := ack(env.ID)
		resp["codigo"] = req.Codigo
		if reason != "" {
			resp["reason"] = reason
		}
		return resp

	case "match:start":
		return d.result(env, d.reg.Start(req.Codigo, d.player.ID))

	case "match:leave":
		reason := req.Reason
		if reason != match.LeaveDisconnect {
			reason = match.LeaveExplicit
		}
		return d.result(env, d.reg.Leave(req.Codigo, d.player.ID, reason))

	case "match:continue":
		snap, err := d.reg.Continue(req.Codigo, d.player.ID, d.conn)
		if err != nil {
			return d.fail(env, err)
		}
		resp := ack(env.ID)
		resp["codigo"] = snap.Codigo
		resp["state"] = snap
		return resp

	case "match:resume":
		snap, err := d.reg.Resume(req.Codigo, d.player.ID, d.conn)
		if errors.Is(err, models.ErrWaitingForPlayers) {
			resp := nack(env.ID, models.ReasonWaitingForPlayers, "")
			resp["codigo"] = snap.Codigo
			resp["state"] = snap
			return resp
		}
		if err != nil {
			return d.fail(env, err)
		}
		resp := ack(env.ID)
		resp["codigo"] = snap.Codigo
		resp["state"] = snap
		return resp

	case "match:act":
		if len(req.Action) == 0 {
			return nack(env.ID, "", "BAD_PAYLOAD")
		}
		return d.result(env, d.reg.Act(req.Codigo, d.player.ID, req.Action))

	case "match:rematch":
		return d.result(env, d.reg.RequestRematch(req.Codigo, d.player.ID))

	case "match:rematch_cancel":
		return d.result(env, d.reg.CancelRematch(req.Codigo, d.player.ID))

	case "lobby:watch":
		g, ok := game.ParseType(req.Game)
		if !ok {
			return nack(env.ID, "", "UNKNOWN_GAME")
		}
		d.reg.Watch(g, d.conn)
		return ack(env.ID)

	case "lobby:unwatch":
		d.reg.Unwatch(d.conn)
		return ack(env.ID)
	}

	d.logger.WithFields(logrus.Fields{"player": d.player.ID, "type": env.Type}).Warn("unknown request type")
	return nack(env.ID, "", "UNKNOWN_TYPE")
}

func (d *dispatcher) result(env envelope, err error) map[string]interface{} {
	if err != nil {
		return d.fail(env, err)
	}
	return ack(env.ID)
}

// fail maps an error to a negative ack. Protocol failures carry a reason from the
// closed set; rule violations carry the engine's code.
func (d *dispatcher) fail(env envelope, err error) map[string]interface{} {
	var ackErr *models.AckError
	if errors.As(err, &ackErr) {
		return nack(env.ID, ackErr.Reason, "")
	}
	var ruleErr *game.RuleError
	if errors.As(err, &ruleErr) {
		return nack(env.ID, "", ruleErr.Code)
	}
	switch {
	case errors.Is(err, match.ErrUnknownGame):
		return nack(env.ID, "", "UNKNOWN_GAME")
	case errors.Is(err, match.ErrInvalidMaxPlayers):
		return nack(env.ID, "", "INVALID_MAX_PLAYERS")
	case errors.Is(err, match.ErrNoBot):
		return nack(env.ID, "", "NO_BOT")
	}
	d.logger.WithError(err).WithFields(logrus.Fields{"player": d.player.ID, "type": env.Type}).Error("request failed")
	return nack(env.ID, "", "INTERNAL")
}

func ack(id int64) map[string]interface{} {
	return map[string]interface{}{"type": "ack", "id": id, "ok": true}
}

func nack(id int64, reason models.Reason, code string) map[string]interface{} {
	resp := map[string]interface{}{"type": "ack", "id": id, "ok": false}
	if reason != "" {
		resp["reason"] = reason
	}
	if code != "" {
		resp["error"] = code
	}
	return resp
}
