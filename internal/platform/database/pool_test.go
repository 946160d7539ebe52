package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 25, cfg.MaxOpenConns)
	assert.Equal(t, 5, cfg.MaxIdleConns)
	assert.Equal(t, 5*time.Minute, cfg.ConnMaxLifetime)
}

func TestNewWithoutURL(t *testing.T) {
	pool, err := New(DefaultConfig())

	require.NoError(t, err)
	assert.Nil(t, pool)
}

func TestNilPoolHealth(t *testing.T) {
	var pool *Pool

	assert.Error(t, pool.Health(context.Background()))
	assert.NoError(t, pool.Close())
}
