package match

import (
	"testing"
	"time"

	"github.com/jason-s-yu/tabletop/internal/game"
	"github.com/jason-s-yu/tabletop/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconnectWithinGrace(t *testing.T) {
	r := newTestRegistry(WithEngine(scriptEngine{}))
	room, ca, cb := startedPvP(t, r)

	r.Disconnect(cb)
	gone := nextEvent(t, ca, EventPlayerDisconnected)
	assert.Equal(t, "Bob", gone["nombre"])
	assert.False(t, room.Players()[1].Connected)
	assert.Empty(t, cb.Rooms())

	// Play continues while bob is away.
	require.NoError(t, r.Act(room.Code(), alice.ID, move("pass")))

	cb2 := NewConn(bob.ID, 64)
	snap, err := r.Continue(room.Code(), bob.ID, cb2)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Seat)
	assert.Equal(t, StatusInProgress, snap.Status)
	assert.Equal(t, 2, snap.Version)
	assert.Equal(t, "Alice", snap.Propietario)
	require.NotNil(t, snap.State)
	assert.Equal(t, 1, snap.State.(*scriptState).Turn)

	assert.Equal(t, "Bob", nextEvent(t, ca, EventPlayerReconnected)["nombre"])
	assert.True(t, room.Players()[1].Connected)
	assert.Equal(t, []string{room.Code()}, cb2.Rooms())

	require.NoError(t, r.Act(room.Code(), bob.ID, move("pass")))
	assert.Equal(t, 3, nextEvent(t, cb2, EventState)["version"])
}

func TestGraceExpiryReleasesSeat(t *testing.T) {
	settings := fastSettings()
	settings.ReconnectGrace = 30 * time.Millisecond
	r := newTestRegistry(WithSettings(settings), WithEngine(scriptEngine{}))
	room, ca, cb := startedPvP(t, r)

	r.Disconnect(cb)

	left := nextEvent(t, ca, EventPlayerLeft)
	assert.Equal(t, LeaveDisconnect, left["reason"])
	ended := nextEvent(t, ca, EventEnded)
	assert.Equal(t, EndAbandoned, ended["reason"])
	assert.Equal(t, []int{0}, ended["winners"])

	_, err := r.Continue(room.Code(), bob.ID, NewConn(bob.ID, 4))
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestGraceExpiryDestroysEmptyRoom(t *testing.T) {
	settings := fastSettings()
	settings.ReconnectGrace = 20 * time.Millisecond
	r := newTestRegistry(WithSettings(settings))
	ca := NewConn(alice.ID, 64)
	room, err := r.Create(game.Uno, alice, CreateOptions{MaxPlayers: 2}, ca)
	require.NoError(t, err)

	r.Disconnect(ca)
	require.Eventually(t, func() bool {
		_, ok := r.Get(room.Code())
		return !ok
	}, time.Second, 5*time.Millisecond)

	_, err = r.Continue(room.Code(), alice.ID, NewConn(alice.ID, 4))
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDisconnectOfReplacedConnIsIgnored(t *testing.T) {
	r := newTestRegistry(WithEngine(scriptEngine{}))
	room, ca, cb := startedPvP(t, r)

	cb2 := NewConn(bob.ID, 64)
	_, err := r.Continue(room.Code(), bob.ID, cb2)
	require.NoError(t, err)
	assert.Empty(t, cb.Rooms())

	r.Disconnect(cb)
	assert.True(t, room.Players()[1].Connected)
	for _, msg := range drain(ca) {
		assert.NotEqual(t, EventPlayerDisconnected, msg["type"])
	}
}

func TestResumeWhileWaiting(t *testing.T) {
	r := newTestRegistry()
	room, err := r.Create(game.Checkers, alice, CreateOptions{MaxPlayers: 2}, nil)
	require.NoError(t, err)

	snap, err := r.Resume(room.Code(), alice.ID, NewConn(alice.ID, 4))
	assert.ErrorIs(t, err, models.ErrWaitingForPlayers)
	assert.Equal(t, room.Code(), snap.Codigo)
	assert.Equal(t, StatusWaiting, snap.Status)
	assert.Nil(t, snap.State)

	_, err = r.Resume(room.Code(), bob.ID, NewConn(bob.ID, 4))
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestResumeInProgress(t *testing.T) {
	r := newTestRegistry()
	room, _, _ := startedPvP(t, r)

	snap, err := r.Resume(room.Code(), alice.ID, NewConn(alice.ID, 4))
	require.NoError(t, err)
	assert.Equal(t, game.Connect4, snap.Game)
	assert.Equal(t, 0, snap.Seat)
	assert.NotNil(t, snap.State)
}
