package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemRepository_GetProviderStates(t *testing.T) {
	repo := NewInMemRepository()
	ctx := context.Background()

	t.Run("UnknownUserIsEmptyMap", func(t *testing.T) {
		states, err := repo.GetProviderStates(ctx, "nobody")
		require.NoError(t, err)
		assert.NotNil(t, states)
		assert.Empty(t, states)
	})

	t.Run("ReturnsRecordedStates", func(t *testing.T) {
		require.NoError(t, repo.EnableProviderFor(ctx, "jos", "email"))
		require.NoError(t, repo.DisableProviderFor(ctx, "jos", "totp"))

		states, err := repo.GetProviderStates(ctx, "jos")
		require.NoError(t, err)
		assert.Equal(t, map[string]bool{"email": true, "totp": false}, states)
	})

	t.Run("UsersAreIsolated", func(t *testing.T) {
		require.NoError(t, repo.EnableProviderFor(ctx, "other", "totp"))

		states, err := repo.GetProviderStates(ctx, "jos")
		require.NoError(t, err)
		assert.Equal(t, map[string]bool{"email": true, "totp": false}, states)
	})

	t.Run("ReturnedMapIsACopy", func(t *testing.T) {
		states, err := repo.GetProviderStates(ctx, "jos")
		require.NoError(t, err)
		states["email"] = false

		again, err := repo.GetProviderStates(ctx, "jos")
		require.NoError(t, err)
		assert.True(t, again["email"])
	})
}

func TestInMemRepository_EnableDisableRoundTrip(t *testing.T) {
	repo := NewInMemRepository()
	ctx := context.Background()

	require.NoError(t, repo.EnableProviderFor(ctx, "jos", "email"))
	states, err := repo.GetProviderStates(ctx, "jos")
	require.NoError(t, err)
	assert.True(t, states["email"])

	require.NoError(t, repo.DisableProviderFor(ctx, "jos", "email"))
	states, err = repo.GetProviderStates(ctx, "jos")
	require.NoError(t, err)
	enabled, known := states["email"]
	assert.True(t, known)
	assert.False(t, enabled)
}
