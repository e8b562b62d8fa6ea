package twofa

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
)

// VerifyChallenge delegates the submitted challenge to the named
// provider. An unknown or disabled provider id fails the check
// without invoking anything. On success the session is advanced to
// done and the login token's pending marker is deleted; on failure
// all state is left untouched. Both outcomes are published to the
// audit sink, the boolean result alone never tells callers why a
// verification failed.
func (s TwoFaService) VerifyChallenge(ctx context.Context, sess SessionStore, providerID, userID, challenge string) (bool, error) {
	provider, err := s.GetProvider(ctx, userID, providerID)
	if err != nil {
		return false, err
	}
	if provider == nil {
		slog.Debug("Challenge for unknown or disabled provider", "providerId", providerID, "userId", userID)
		return false, nil
	}

	passed, err := provider.VerifyChallenge(ctx, userID, challenge)
	if err != nil {
		return false, fmt.Errorf("provider %s failed verifying challenge: %w", providerID, err)
	}

	if passed {
		// Clear the token marker before touching the session, so a
		// failure here leaves the session in its pending state. The
		// reverse order could advance the session and then error out
		// half done. If the session writes below fail instead, the
		// next NeedsSecondFactor sees the token is no longer pending
		// and stamps the session done itself.
		token, err := s.tokens.GetToken(ctx, sess.ID())
		if err != nil {
			return false, fmt.Errorf("failed to resolve login token for session: %w", err)
		}
		tokenID := strconv.FormatInt(token.GetID(), 10)
		if err := s.prefs.DeleteUserValue(ctx, userID, PREF_APP_LOGIN_TOKEN, tokenID); err != nil {
			return false, fmt.Errorf("failed to clear pending token marker: %w", err)
		}

		if err := sess.Remove(ctx, SESSION_KEY_UID); err != nil {
			return false, fmt.Errorf("failed to clear pending 2FA marker: %w", err)
		}
		if err := sess.Remove(ctx, SESSION_KEY_REMEMBER); err != nil {
			return false, fmt.Errorf("failed to clear remember-login marker: %w", err)
		}
		if err := sess.Set(ctx, SESSION_KEY_UID_DONE, userID); err != nil {
			return false, fmt.Errorf("failed to set 2FA done marker: %w", err)
		}

		s.publishEvent(ctx, userID, SUBJECT_2FA_SUCCESS, map[string]string{"provider": provider.DisplayName()})
	} else {
		s.publishEvent(ctx, userID, SUBJECT_2FA_FAILED, map[string]string{"provider": provider.DisplayName()})
	}

	return passed, nil
}

// publishEvent sends an audit event. Sink failures are logged, never
// propagated into the login flow.
func (s TwoFaService) publishEvent(ctx context.Context, userID, subject string, params map[string]string) {
	event := s.audit.GenerateEvent().
		SetApp(AUDIT_APP).
		SetType(AUDIT_TYPE_SECURITY).
		SetAuthor(userID).
		SetAffectedUser(userID).
		SetSubject(subject, params)

	if err := s.audit.Publish(ctx, event); err != nil {
		slog.Warn("Failed to publish audit event", "subject", subject, "userId", userID, "error", err)
	}
}
