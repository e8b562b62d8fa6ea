package twofa

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareTwoFactorLogin(t *testing.T) {
	setup := newTestSetup()
	ctx := context.Background()

	err := setup.service.PrepareTwoFactorLogin(ctx, setup.sess, "jos", true)
	require.NoError(t, err)

	assert.Equal(t, "jos", setup.sess.values[SESSION_KEY_UID])
	assert.Equal(t, true, setup.sess.values[SESSION_KEY_REMEMBER])

	// Token 42 is now marked as awaiting its second factor
	keys, err := setup.prefs.GetUserKeys(ctx, "jos", PREF_APP_LOGIN_TOKEN)
	require.NoError(t, err)
	assert.Equal(t, []string{"42"}, keys)
}

func TestPrepareTwoFactorLogin_RememberLoginOff(t *testing.T) {
	setup := newTestSetup()

	err := setup.service.PrepareTwoFactorLogin(context.Background(), setup.sess, "jos", false)
	require.NoError(t, err)
	assert.Equal(t, false, setup.sess.values[SESSION_KEY_REMEMBER])
}

func TestPrepareTwoFactorLogin_TokenFailurePropagates(t *testing.T) {
	setup := newTestSetup()
	setup.tokens.err = fmt.Errorf("session has no token")

	err := setup.service.PrepareTwoFactorLogin(context.Background(), setup.sess, "jos", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login token")
}

func TestNeedsSecondFactor_EmptyUser(t *testing.T) {
	setup := newTestSetup()

	needed, err := setup.service.NeedsSecondFactor(context.Background(), setup.sess, "")
	require.NoError(t, err)
	assert.False(t, needed)
}

func TestNeedsSecondFactor_AppPasswordBypasses(t *testing.T) {
	setup := newTestSetup()
	ctx := context.Background()

	setup.loader.providers = []Provider{newEmailProvider(true)}
	require.NoError(t, setup.service.PrepareTwoFactorLogin(ctx, setup.sess, "jos", false))
	require.NoError(t, setup.sess.Set(ctx, SESSION_KEY_APP_PASSWORD, "token-name"))

	needed, err := setup.service.NeedsSecondFactor(ctx, setup.sess, "jos")
	require.NoError(t, err)
	assert.False(t, needed)
}

func TestNeedsSecondFactor_PendingLogin(t *testing.T) {
	setup := newTestSetup()
	ctx := context.Background()

	setup.loader.providers = []Provider{newEmailProvider(true)}
	require.NoError(t, setup.service.PrepareTwoFactorLogin(ctx, setup.sess, "jos", false))

	needed, err := setup.service.NeedsSecondFactor(ctx, setup.sess, "jos")
	require.NoError(t, err)
	assert.True(t, needed)
}

func TestNeedsSecondFactor_NoProvidersLeft(t *testing.T) {
	setup := newTestSetup()
	ctx := context.Background()

	// Pending marker from an earlier login, but every provider has
	// been disabled since
	require.NoError(t, setup.service.PrepareTwoFactorLogin(ctx, setup.sess, "jos", false))

	needed, err := setup.service.NeedsSecondFactor(ctx, setup.sess, "jos")
	require.NoError(t, err)
	assert.False(t, needed)

	_, stillPending := setup.sess.values[SESSION_KEY_UID]
	assert.False(t, stillPending)
}

func TestNeedsSecondFactor_UnloadableProviderStillGates(t *testing.T) {
	setup := newTestSetup()
	ctx := context.Background()

	require.NoError(t, setup.service.PrepareTwoFactorLogin(ctx, setup.sess, "jos", false))
	setup.registry.setState("jos", "email", true)

	needed, err := setup.service.NeedsSecondFactor(ctx, setup.sess, "jos")
	require.NoError(t, err)
	assert.True(t, needed)
}

func TestNeedsSecondFactor_DoneMarker(t *testing.T) {
	setup := newTestSetup()
	ctx := context.Background()

	setup.loader.providers = []Provider{newEmailProvider(true)}
	require.NoError(t, setup.sess.Set(ctx, SESSION_KEY_UID_DONE, "jos"))
	// Prove the done marker decides before any token lookup
	setup.tokens.err = fmt.Errorf("must not be called")

	needed, err := setup.service.NeedsSecondFactor(ctx, setup.sess, "jos")
	require.NoError(t, err)
	assert.False(t, needed)
}

func TestNeedsSecondFactor_DoneMarkerForOtherUser(t *testing.T) {
	setup := newTestSetup()
	ctx := context.Background()

	setup.loader.providers = []Provider{newEmailProvider(true)}
	require.NoError(t, setup.sess.Set(ctx, SESSION_KEY_UID_DONE, "someone-else"))
	require.NoError(t, setup.prefs.SetUserValue(ctx, "jos", PREF_APP_LOGIN_TOKEN, "42", "1"))

	needed, err := setup.service.NeedsSecondFactor(ctx, setup.sess, "jos")
	require.NoError(t, err)
	assert.True(t, needed)
}

func TestNeedsSecondFactor_TokenNotPending(t *testing.T) {
	setup := newTestSetup()
	ctx := context.Background()

	// Fresh session, token 42 is not in the pending set: it finished
	// 2FA in some earlier session
	setup.loader.providers = []Provider{newEmailProvider(true)}

	needed, err := setup.service.NeedsSecondFactor(ctx, setup.sess, "jos")
	require.NoError(t, err)
	assert.False(t, needed)
	assert.Equal(t, "jos", setup.sess.values[SESSION_KEY_UID_DONE])
}

func TestNeedsSecondFactor_TokenStillPending(t *testing.T) {
	setup := newTestSetup()
	ctx := context.Background()

	setup.loader.providers = []Provider{newEmailProvider(true)}
	require.NoError(t, setup.prefs.SetUserValue(ctx, "jos", PREF_APP_LOGIN_TOKEN, "42", "1724371200"))

	needed, err := setup.service.NeedsSecondFactor(ctx, setup.sess, "jos")
	require.NoError(t, err)
	assert.True(t, needed)

	_, done := setup.sess.values[SESSION_KEY_UID_DONE]
	assert.False(t, done)
}

func TestNeedsSecondFactor_InvalidTokenRecovered(t *testing.T) {
	setup := newTestSetup()

	setup.loader.providers = []Provider{newEmailProvider(true)}
	setup.tokens.err = fmt.Errorf("token expired")

	needed, err := setup.service.NeedsSecondFactor(context.Background(), setup.sess, "jos")
	require.NoError(t, err)
	assert.False(t, needed)
}

func TestNeedsSecondFactor_AdapterErrorsPropagate(t *testing.T) {
	t.Run("Session", func(t *testing.T) {
		setup := newTestSetup()
		setup.sess.err = fmt.Errorf("session store down")

		_, err := setup.service.NeedsSecondFactor(context.Background(), setup.sess, "jos")
		require.Error(t, err)
	})

	t.Run("Prefs", func(t *testing.T) {
		setup := newTestSetup()
		setup.prefs.err = fmt.Errorf("prefs down")

		_, err := setup.service.NeedsSecondFactor(context.Background(), setup.sess, "jos")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "pending token markers")
	})
}
