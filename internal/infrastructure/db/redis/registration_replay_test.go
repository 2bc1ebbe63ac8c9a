package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReplay(t *testing.T, ttl time.Duration) (*RegistrationReplay, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRegistrationReplay(client, ttl), srv
}

func TestRegistrationReplay_RememberAndLookup(t *testing.T) {
	ctx := context.Background()
	replay, srv := newTestReplay(t, time.Hour)

	_, found, err := replay.Lookup(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, replay.Remember(ctx, "k1", "u1"))
	assert.True(t, srv.Exists("idempotency:register:k1"))

	userID, found, err := replay.Lookup(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "u1", userID)
}

func TestRegistrationReplay_FirstBindingWins(t *testing.T) {
	ctx := context.Background()
	replay, _ := newTestReplay(t, time.Hour)

	require.NoError(t, replay.Remember(ctx, "k1", "u1"))
	require.NoError(t, replay.Remember(ctx, "k1", "u2"))

	userID, _, err := replay.Lookup(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}

func TestRegistrationReplay_Expires(t *testing.T) {
	ctx := context.Background()
	replay, srv := newTestReplay(t, time.Minute)

	require.NoError(t, replay.Remember(ctx, "k1", "u1"))
	srv.FastForward(2 * time.Minute)

	_, found, err := replay.Lookup(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRegistrationReplay_DefaultTTL(t *testing.T) {
	replay, srv := newTestReplay(t, 0)

	require.NoError(t, replay.Remember(context.Background(), "k1", "u1"))
	assert.Equal(t, defaultReplayTTL, srv.TTL("idempotency:register:k1"))
}

func TestRegistrationReplay_ServerDown(t *testing.T) {
	replay, srv := newTestReplay(t, time.Hour)
	srv.Close()

	_, _, err := replay.Lookup(context.Background(), "k1")
	assert.Error(t, err)
}
