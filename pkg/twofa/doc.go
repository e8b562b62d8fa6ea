// Package twofa coordinates second-factor authentication for a login
// pipeline.
//
// The package decides whether an authenticated login still has to
// present a second factor, keeps the per-user provider enablement
// registry consistent with the providers that can actually run, and
// verifies submitted challenges through pluggable providers. It owns
// no provider implementation and no storage backend; everything it
// touches is injected through small adapter interfaces.
//
// # Overview
//
// The twofa package provides:
//   - A provider state reconciler that merges the durable enablement
//     registry with the providers loadable right now and heals stale
//     registry entries on first use
//   - A second-factor gate tracking the NONE -> PENDING -> DONE state
//     of one login session, including app-password bypass and
//     remember-me across sessions on the same login token
//   - A challenge verifier that delegates to a provider, publishes an
//     audit event for both outcomes and advances the gate on success
//   - A no-op service for deployments without 2FA
//
// # State
//
// Three independent stores are straddled:
//   - **Registry** - durable per (user, provider) enabled flag. An
//     absent entry means "never evaluated" and is distinct from false.
//   - **Session** - volatile markers of one browser session: the
//     pending user id, the remember-login flag and the done marker.
//   - **Token markers** - per-user preference keys under
//     login_token_2fa naming the login tokens that still await a
//     second factor. Verification success deletes the current token's
//     entry, which is how a remembered token skips the prompt in
//     later sessions.
//
// # Basic Usage
//
//	import "github.com/tendant/simple-twofa/pkg/twofa"
//
//	// Create service
//	service := twofa.NewTwoFaService(registry, loader, tokens, prefs, auditSink)
//
//	// After primary auth succeeded
//	if enabled, _ := service.IsTwoFactorAuthenticated(ctx, userID); enabled {
//		err := service.PrepareTwoFactorLogin(ctx, sess, userID, rememberMe)
//		// present providers from service.GetProviderSet(ctx, userID)
//	}
//
//	// On every gated request
//	needed, err := service.NeedsSecondFactor(ctx, sess, userID)
//
//	// When the user submits a challenge
//	ok, err := service.VerifyChallenge(ctx, sess, providerID, userID, challenge)
//
// # Failure Semantics
//
// An unknown or disabled provider is absence, not an error: lookups
// return nil and VerifyChallenge returns false without calling
// anything. An invalid or revoked login token is recovered locally,
// the gate reports that nothing is left to protect. Failures of the
// registry, loader, session or preference store propagate to the
// caller, the gate never guesses security state from partial reads. A
// provider error during verification propagates as well; callers
// should show a generic failure and leave diagnosis to the audit log.
package twofa
