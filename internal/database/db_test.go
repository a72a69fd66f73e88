package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectRejectsMalformedURL(t *testing.T) {
	pool, err := Connect(context.Background(), "postgres://%zz")
	assert.ErrorContains(t, err, "unable to parse pgx config")
	assert.Nil(t, pool)
}
