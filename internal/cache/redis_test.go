package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConnectFailsWithoutServer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	p, err := Connect(ctx, "127.0.0.1:1", 0, "test")
	assert.Error(t, err)
	assert.Nil(t, p)
}

func TestChannelNames(t *testing.T) {
	p := &Publisher{prefix: "tabletop"}
	assert.Equal(t, "tabletop:lobby:checkers", p.lobbyChannel("checkers"))
	assert.Equal(t, "tabletop:activity", p.activityQueue())
}
