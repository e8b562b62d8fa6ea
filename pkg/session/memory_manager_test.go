package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryManager_RoundTrip(t *testing.T) {
	manager := NewMemoryManager(0)
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

func TestMemoryManager_MissingKeyIsNil(t *testing.T) {
	manager := NewMemoryManager(0)
	store := manager.Session("session-1")

	value, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestMemoryManager_ExistsRemove(t *testing.T) {
	manager := NewMemoryManager(0)
	store := manager.Session("session-1")
	ctx := context.Background()

	exists, err := store.Exists(ctx, "app_password")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Set(ctx, "app_password", "token-name"))

	exists, err = store.Exists(ctx, "app_password")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Remove(ctx, "app_password"))

	exists, err = store.Exists(ctx, "app_password")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryManager_SessionsAreIsolated(t *testing.T) {
	manager := NewMemoryManager(0)
	ctx := context.Background()

	first := manager.Session("session-1")
	second := manager.Session("session-2")
	require.NoError(t, first.Set(ctx, "two_factor_auth_uid", "jos"))

	value, err := second.Get(ctx, "two_factor_auth_uid")
	require.NoError(t, err)
	assert.Nil(t, value)

	assert.Equal(t, "session-1", first.ID())
	assert.Equal(t, "session-2", second.ID())
}

func TestMemoryManager_TTLExpiry(t *testing.T) {
	manager := NewMemoryManager(20 * time.Millisecond)
	store := manager.Session("session-1")
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "two_factor_auth_uid", "jos"))

	time.Sleep(50 * time.Millisecond)

	value, err := store.Get(ctx, "two_factor_auth_uid")
	require.NoError(t, err)
	assert.Nil(t, value)
}
