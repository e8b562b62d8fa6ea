package emailcode

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-twofa/pkg/notification"
	"github.com/tendant/simple-twofa/pkg/prefs"
	"github.com/tendant/simple-twofa/pkg/ratelimit"
)

func newTestProvider(t *testing.T, opts ...Option) (*Provider, *notification.MockNotifier) {
	t.Helper()

	mock := &notification.MockNotifier{}
	manager := notification.NewNotificationManager()
	manager.RegisterNotifier(notification.EmailSystem, mock)
	err := manager.RegisterNotification(notification.TwoFactorCodeNotice, notification.EmailSystem, notification.NoticeTemplate{
		Subject: "Your verification code",
		Text:    "Your verification code is: {{.Code}}",
	})
	require.NoError(t, err)

	resolver := func(ctx context.Context, userID string) (string, error) {
		if userID == "jos" {
			return "jos@example.com", nil
		}
		return "", fmt.Errorf("unknown user: %s", userID)
	}

	provider := NewProvider(prefs.NewInMemRepository(), manager, resolver, opts...)
	return provider, mock
}

func sentCode(t *testing.T, mock *notification.MockNotifier) string {
	t.Helper()
	require.NotEmpty(t, mock.SentNotifications)
	last := mock.SentNotifications[len(mock.SentNotifications)-1]
	code := last.Data["Code"]
	require.Len(t, code, CODE_LENGTH)
	return code
}

func TestSendAndVerifyCode(t *testing.T) {
	provider, mock := newTestProvider(t)
	ctx := context.Background()

	require.NoError(t, provider.SendCode(ctx, "jos"))
	require.Len(t, mock.SentNotifications, 1)
	assert.Equal(t, "jos@example.com", mock.SentNotifications[0].To)

	code := sentCode(t, mock)
	passed, err := provider.VerifyChallenge(ctx, "jos", code)
	require.NoError(t, err)
	assert.True(t, passed)

	t.Run("CodeIsSingleUse", func(t *testing.T) {
		passed, err := provider.VerifyChallenge(ctx, "jos", code)
		require.NoError(t, err)
		assert.False(t, passed)
	})
}

func TestVerifyWrongCode(t *testing.T) {
	provider, mock := newTestProvider(t)
	ctx := context.Background()

	require.NoError(t, provider.SendCode(ctx, "jos"))
	code := sentCode(t, mock)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	passed, err := provider.VerifyChallenge(ctx, "jos", wrong)
	require.NoError(t, err)
	assert.False(t, passed)

	// The right code still works after a wrong attempt
	passed, err = provider.VerifyChallenge(ctx, "jos", code)
	require.NoError(t, err)
	assert.True(t, passed)
}

func TestVerifyWithoutSend(t *testing.T) {
	provider, _ := newTestProvider(t)

	passed, err := provider.VerifyChallenge(context.Background(), "jos", "123456")
	require.NoError(t, err)
	assert.False(t, passed)
}

func TestResendReplacesCode(t *testing.T) {
	provider, mock := newTestProvider(t)
	ctx := context.Background()

	require.NoError(t, provider.SendCode(ctx, "jos"))
	first := sentCode(t, mock)

	require.NoError(t, provider.SendCode(ctx, "jos"))
	second := sentCode(t, mock)

	if first != second {
		passed, err := provider.VerifyChallenge(ctx, "jos", first)
		require.NoError(t, err)
		assert.False(t, passed)
	}

	passed, err := provider.VerifyChallenge(ctx, "jos", second)
	require.NoError(t, err)
	assert.True(t, passed)
}

func TestSendCodeRateLimited(t *testing.T) {
	limiter := ratelimit.NewRateLimiter(2, 0.0001, 0)
	provider, _ := newTestProvider(t, WithRateLimiter(limiter))
	ctx := context.Background()

	require.NoError(t, provider.SendCode(ctx, "jos"))
	require.NoError(t, provider.SendCode(ctx, "jos"))

	err := provider.SendCode(ctx, "jos")
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestSendCodeUnknownUser(t *testing.T) {
	provider, mock := newTestProvider(t)

	err := provider.SendCode(context.Background(), "nobody")
	require.Error(t, err)
	assert.Empty(t, mock.SentNotifications)
}

func TestCodeExpires(t *testing.T) {
	provider, mock := newTestProvider(t, WithCodeTTL(20*time.Millisecond))
	ctx := context.Background()

	require.NoError(t, provider.SendCode(ctx, "jos"))
	code := sentCode(t, mock)

	time.Sleep(50 * time.Millisecond)

	passed, err := provider.VerifyChallenge(ctx, "jos", code)
	require.NoError(t, err)
	assert.False(t, passed)
}

func TestEnablementFlag(t *testing.T) {
	provider, _ := newTestProvider(t)
	ctx := context.Background()

	enabled, err := provider.IsTwoFactorAuthEnabledForUser(ctx, "jos")
	require.NoError(t, err)
	assert.False(t, enabled)

	require.NoError(t, provider.Enable(ctx, "jos"))
	enabled, err = provider.IsTwoFactorAuthEnabledForUser(ctx, "jos")
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, provider.Disable(ctx, "jos"))
	enabled, err = provider.IsTwoFactorAuthEnabledForUser(ctx, "jos")
	require.NoError(t, err)
	assert.False(t, enabled)
}
