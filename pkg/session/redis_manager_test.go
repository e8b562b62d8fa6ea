package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
	})

	return mr, client
}

func TestRedisManager_RoundTrip(t *testing.T) {
	_, client := newTestRedis(t)
	manager := NewRedisManager(client, "twofa", 0)
	store := manager.Session("session-1")
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "two_factor_auth_uid", "jos"))
	require.NoError(t, store.Set(ctx, "two_factor_remember_login", true))

	value, err := store.Get(ctx, "two_factor_auth_uid")
	require.NoError(t, err)
	assert.Equal(t, "jos", value)

	value, err = store.Get(ctx, "two_factor_remember_login")
	require.NoError(t, err)
	assert.Equal(t, true, value)
}

func TestRedisManager_MissingKeyIsNil(t *testing.T) {
	_, client := newTestRedis(t)
	manager := NewRedisManager(client, "twofa", 0)
	store := manager.Session("session-1")

	value, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestRedisManager_ExistsRemove(t *testing.T) {
	_, client := newTestRedis(t)
	manager := NewRedisManager(client, "twofa", 0)
	store := manager.Session("session-1")
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "app_password", "token-name"))

	exists, err := store.Exists(ctx, "app_password")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Remove(ctx, "app_password"))

	exists, err = store.Exists(ctx, "app_password")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRedisManager_KeysArePrefixed(t *testing.T) {
	mr, client := newTestRedis(t)
	manager := NewRedisManager(client, "twofa", 0)
	store := manager.Session("session-1")

	require.NoError(t, store.Set(context.Background(), "two_factor_auth_uid", "jos"))
	assert.True(t, mr.Exists("twofa:session-1:two_factor_auth_uid"))
}

func TestRedisManager_SessionsAreIsolated(t *testing.T) {
	_, client := newTestRedis(t)
	manager := NewRedisManager(client, "twofa", 0)
	ctx := context.Background()

	first := manager.Session("session-1")
	second := manager.Session("session-2")
	require.NoError(t, first.Set(ctx, "two_factor_auth_uid", "jos"))

	value, err := second.Get(ctx, "two_factor_auth_uid")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestRedisManager_TTLExpiry(t *testing.T) {
	mr, client := newTestRedis(t)
	manager := NewRedisManager(client, "twofa", time.Minute)
	store := manager.Session("session-1")
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "two_factor_auth_uid", "jos"))

	mr.FastForward(2 * time.Minute)

	value, err := store.Get(ctx, "two_factor_auth_uid")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestNewManager(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		manager, err := NewManager("memory", ManagerConfig{})
		require.NoError(t, err)
		assert.IsType(t, &MemoryManager{}, manager)
	})

	t.Run("Redis", func(t *testing.T) {
		_, client := newTestRedis(t)
		manager, err := NewManager("redis", ManagerConfig{Client: client, Prefix: "twofa"})
		require.NoError(t, err)
		assert.IsType(t, &RedisManager{}, manager)
	})

	t.Run("RedisWithoutClient", func(t *testing.T) {
		_, err := NewManager("redis", ManagerConfig{})
		assert.Error(t, err)
	})

	t.Run("Unsupported", func(t *testing.T) {
		_, err := NewManager("memcached", ManagerConfig{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported session backend")
	})
}
