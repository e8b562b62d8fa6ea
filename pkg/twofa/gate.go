package twofa

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// PrepareTwoFactorLogin transitions the session into the pending
// state after primary auth succeeded. Besides the session markers it
// records the current login token as awaiting a second factor, keyed
// under the user's login_token_2fa preferences. That entry is removed
// again by VerifyChallenge on success, which is how later sessions on
// the same token are recognized as already verified.
func (s TwoFaService) PrepareTwoFactorLogin(ctx context.Context, sess SessionStore, userID string, rememberLogin bool) error {
	if err := sess.Set(ctx, SESSION_KEY_UID, userID); err != nil {
		return fmt.Errorf("failed to set pending 2FA marker: %w", err)
	}
	if err := sess.Set(ctx, SESSION_KEY_REMEMBER, rememberLogin); err != nil {
		return fmt.Errorf("failed to set remember-login marker: %w", err)
	}

	token, err := s.tokens.GetToken(ctx, sess.ID())
	if err != nil {
		return fmt.Errorf("failed to resolve login token for session: %w", err)
	}

	tokenID := strconv.FormatInt(token.GetID(), 10)
	now := strconv.FormatInt(time.Now().Unix(), 10)
	if err := s.prefs.SetUserValue(ctx, userID, PREF_APP_LOGIN_TOKEN, tokenID, now); err != nil {
		return fmt.Errorf("failed to record pending token marker: %w", err)
	}

	return nil
}

// NeedsSecondFactor answers whether the current request still has a
// second factor outstanding.
//
// App-password logins bypass the gate entirely. When the session has
// no pending marker the decision falls back to the login token: a
// token absent from the user's pending set has completed 2FA before,
// so the session is marked done and the user passes. A token that
// cannot be resolved is an invalid login context and nothing is
// gated. In every remaining case the factor stays outstanding unless
// no provider is enabled for the user at all.
func (s TwoFaService) NeedsSecondFactor(ctx context.Context, sess SessionStore, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	usingAppPassword, err := sess.Exists(ctx, SESSION_KEY_APP_PASSWORD)
	if err != nil {
		return false, fmt.Errorf("failed to check app-password marker: %w", err)
	}
	if usingAppPassword {
		return false, nil
	}

	pending, err := sess.Exists(ctx, SESSION_KEY_UID)
	if err != nil {
		return false, fmt.Errorf("failed to check pending 2FA marker: %w", err)
	}

	if !pending {
		done, err := sess.Get(ctx, SESSION_KEY_UID_DONE)
		if err != nil {
			return false, fmt.Errorf("failed to read 2FA done marker: %w", err)
		}
		if doneUID, ok := done.(string); ok && doneUID == userID {
			return false, nil
		}

		// The session itself knows nothing, so ask the login token
		// whether it completed 2FA in an earlier session.
		token, err := s.tokens.GetToken(ctx, sess.ID())
		if err != nil {
			slog.Debug("No valid login token for session, nothing to gate", "userId", userID, "error", err)
			return false, nil
		}

		pendingTokens, err := s.prefs.GetUserKeys(ctx, userID, PREF_APP_LOGIN_TOKEN)
		if err != nil {
			return false, fmt.Errorf("failed to read pending token markers: %w", err)
		}

		tokenID := strconv.FormatInt(token.GetID(), 10)
		if !containsString(pendingTokens, tokenID) {
			if err := sess.Set(ctx, SESSION_KEY_UID_DONE, userID); err != nil {
				return false, fmt.Errorf("failed to set 2FA done marker: %w", err)
			}
			return false, nil
		}
	}

	enabled, err := s.IsTwoFactorAuthenticated(ctx, userID)
	if err != nil {
		return false, err
	}
	if !enabled {
		// No second factor exists any more, e.g. all providers were
		// disabled since login. Drop the stale pending marker and let
		// the user pass.
		if err := sess.Remove(ctx, SESSION_KEY_UID); err != nil {
			return false, fmt.Errorf("failed to clear stale pending marker: %w", err)
		}
		return false, nil
	}

	return true, nil
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
