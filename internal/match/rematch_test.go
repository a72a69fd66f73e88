package match

import (
	"testing"
	"time"

	"github.com/jason-s-yu/tabletop/internal/game"
	"github.com/jason-s-yu/tabletop/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finishedPvP(t *testing.T, r *Registry) (*Room, *Conn, *Conn) {
	t.Helper()
	room, ca, cb := startedPvP(t, r)
	require.NoError(t, r.Act(room.Code(), alice.ID, move("win")))
	drain(ca)
	drain(cb)
	return room, ca, cb
}

func TestRematchUnavailableWhileRunning(t *testing.T) {
	r := newTestRegistry(WithEngine(scriptEngine{}))
	room, _, _ := startedPvP(t, r)

	assert.ErrorIs(t, r.RequestRematch(room.Code(), alice.ID), ErrRematchUnavailable)
	assert.ErrorIs(t, r.RequestRematch(room.Code(), carol.ID), models.ErrNotFound)
	assert.ErrorIs(t, r.CancelRematch(room.Code(), alice.ID), ErrNoPendingRematch)
}

func TestRematchPvPMovesToNewRoom(t *testing.T) {
	r := newTestRegistry(WithEngine(scriptEngine{}))
	room, ca, cb := finishedPvP(t, r)
	oldCode := room.Code()

	require.NoError(t, r.RequestRematch(oldCode, alice.ID))
	vote := nextEvent(t, cb, EventRematchVote)
	assert.Equal(t, 1, vote["votes"])
	assert.Equal(t, 2, vote["required"])

	// A second vote from the same player changes nothing.
	require.NoError(t, r.RequestRematch(oldCode, alice.ID))
	assert.Empty(t, drain(cb))

	snap, err := r.Continue(oldCode, bob.ID, cb)
	require.NoError(t, err)
	require.NotNil(t, snap.Rematch)
	assert.Equal(t, []string{alice.ID}, snap.Rematch.Voters)

	require.NoError(t, r.RequestRematch(oldCode, bob.ID))

	start := nextEvent(t, ca, EventRematchStart)
	newCode, _ := start["codigo"].(string)
	assert.NotEqual(t, oldCode, newCode)
	assert.Equal(t, oldCode, start["previous"])
	assert.Equal(t, newCode, nextEvent(t, ca, EventStarted)["codigo"])
	assert.Equal(t, newCode, nextEvent(t, cb, EventRematchStart)["codigo"])

	_, ok := r.Get(oldCode)
	assert.False(t, ok)
	assert.Equal(t, StatusDestroyed, room.Status())

	next, ok := r.Get(newCode)
	require.True(t, ok)
	assert.Equal(t, StatusInProgress, next.Status())
	players := next.Players()
	require.Len(t, players, 2)
	assert.Equal(t, alice.ID, players[0].ID)
	assert.Equal(t, bob.ID, players[1].ID)
	assert.Equal(t, []string{newCode}, ca.Rooms())
	assert.Equal(t, []string{newCode}, cb.Rooms())

	require.NoError(t, r.Act(newCode, alice.ID, move("pass")))
}

func TestRematchVsBotRestartsInPlace(t *testing.T) {
	r := newTestRegistry(WithEngine(scriptEngine{}), botsFor(scriptBot{move: "pass"}))
	ca := NewConn(alice.ID, 64)
	room, err := r.Create(game.Connect4, alice, CreateOptions{MaxPlayers: 1, VsBot: true}, ca)
	require.NoError(t, err)
	require.NoError(t, r.Start(room.Code(), alice.ID))
	require.NoError(t, r.Act(room.Code(), alice.ID, move("win")))
	drain(ca)

	require.NoError(t, r.RequestRematch(room.Code(), alice.ID))
	vote := nextEvent(t, ca, EventRematchVote)
	assert.Equal(t, 1, vote["required"])
	assert.Equal(t, room.Code(), nextEvent(t, ca, EventRematchStart)["codigo"])
	assert.Equal(t, StatusInProgress, room.Status())
	assert.Equal(t, 3, room.versionForTest())

	_, ok := r.Get(room.Code())
	assert.True(t, ok)
	require.NoError(t, r.Act(room.Code(), alice.ID, move("pass")))
}

func TestRematchCancelledWhenPlayerLeaves(t *testing.T) {
	r := newTestRegistry(WithEngine(scriptEngine{}))
	room, ca, _ := finishedPvP(t, r)

	require.NoError(t, r.RequestRematch(room.Code(), alice.ID))
	require.NoError(t, r.Leave(room.Code(), bob.ID, LeaveExplicit))

	cancelled := nextEvent(t, ca, EventRematchCancelled)
	assert.Equal(t, CancelLeft, cancelled["reason"])
	assert.ErrorIs(t, r.RequestRematch(room.Code(), alice.ID), ErrRematchUnavailable)
}

func TestRematchCancelledOnDisconnect(t *testing.T) {
	r := newTestRegistry(WithEngine(scriptEngine{}))
	room, ca, cb := finishedPvP(t, r)

	require.NoError(t, r.RequestRematch(room.Code(), alice.ID))
	r.Disconnect(cb)

	assert.Equal(t, CancelDisconnected, nextEvent(t, ca, EventRematchCancelled)["reason"])
}

func TestRematchExplicitCancel(t *testing.T) {
	r := newTestRegistry(WithEngine(scriptEngine{}))
	room, ca, cb := finishedPvP(t, r)

	require.NoError(t, r.RequestRematch(room.Code(), alice.ID))
	require.NoError(t, r.CancelRematch(room.Code(), bob.ID))

	for _, c := range []*Conn{ca, cb} {
		assert.Equal(t, CancelLeft, nextEvent(t, c, EventRematchCancelled)["reason"])
	}
	assert.ErrorIs(t, r.CancelRematch(room.Code(), bob.ID), ErrNoPendingRematch)
}

func TestRematchTimeout(t *testing.T) {
	settings := fastSettings()
	settings.RematchTimeout = 30 * time.Millisecond
	r := newTestRegistry(WithSettings(settings), WithEngine(scriptEngine{}))
	room, ca, _ := finishedPvP(t, r)

	require.NoError(t, r.RequestRematch(room.Code(), alice.ID))
	assert.Equal(t, CancelTimeout, nextEvent(t, ca, EventRematchCancelled)["reason"])
	assert.Equal(t, StatusFinished, room.Status())

	// Voting starts over after a timeout.
	require.NoError(t, r.RequestRematch(room.Code(), bob.ID))
	assert.Equal(t, 1, nextEvent(t, ca, EventRematchVote)["votes"])
}
