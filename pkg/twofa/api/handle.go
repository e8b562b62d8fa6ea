// Package api exposes the two-factor coordinator over HTTP for the
// demo servers. Requests carry a session token minted by
// logintoken.SessionTokenGenerator, with the user id in "sub" and
// the session id in "session_id".
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-twofa/pkg/session"
	"github.com/tendant/simple-twofa/pkg/twofa"
)

// Handle handles HTTP requests for the two-factor login flow
type Handle struct {
	twoFaService twofa.TwoFactorService
	sessions     session.Manager
}

// NewHandle creates a new two-factor handler
func NewHandle(twoFaService twofa.TwoFactorService, sessions session.Manager) *Handle {
	return &Handle{
		twoFaService: twoFaService,
		sessions:     sessions,
	}
}

// ProviderInfo is one available provider in a list response
type ProviderInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// ListProvidersResponse represents the response body for listing providers
type ListProvidersResponse struct {
	Providers       []ProviderInfo `json:"providers"`
	ProviderMissing bool           `json:"provider_missing"`
}

// PrepareRequest represents the request body for preparing a 2FA login
type PrepareRequest struct {
	RememberLogin bool `json:"remember_login"`
}

// RequiredResponse represents the response body for the required check
type RequiredResponse struct {
	Required bool `json:"required"`
}

// VerifyRequest represents the request body for verifying a challenge
type VerifyRequest struct {
	ProviderID string `json:"provider_id"`
	Challenge  string `json:"challenge"`
}

// VerifyResponse represents the response body for verifying a challenge
type VerifyResponse struct {
	Passed bool `json:"passed"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Routes mounts the 2FA endpoints on a chi router
func (h *Handle) Routes(r chi.Router) {
	r.Get("/providers", h.ListProviders)
	r.Post("/prepare", h.Prepare)
	r.Get("/required", h.Required)
	r.Post("/verify", h.Verify)
}

// ListProviders returns the providers the user can present right now
func (h *Handle) ListProviders(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := h.identity(w, r)
	if !ok {
		return
	}

	set, err := h.twoFaService.GetProviderSet(r.Context(), userID)
	if err != nil {
		slog.Error("Failed to get provider set", "userId", userID, "error", err)
		renderErrorResponse(w, r, http.StatusInternalServerError, "Failed to get providers", err.Error())
		return
	}

	providers := make([]ProviderInfo, 0)
	for _, p := range set.Providers() {
		providers = append(providers, ProviderInfo{
			ID:          p.ID(),
			DisplayName: p.DisplayName(),
		})
	}

	render.JSON(w, r, ListProvidersResponse{
		Providers:       providers,
		ProviderMissing: set.IsProviderMissing(),
	})
}

// Prepare marks the session as awaiting a second factor
func (h *Handle) Prepare(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req PrepareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(w, r, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	sess := h.sessions.Session(sessionID)
	if err := h.twoFaService.PrepareTwoFactorLogin(r.Context(), sess, userID, req.RememberLogin); err != nil {
		slog.Error("Failed to prepare 2FA login", "userId", userID, "error", err)
		renderErrorResponse(w, r, http.StatusInternalServerError, "Failed to prepare two-factor login", err.Error())
		return
	}

	render.NoContent(w, r)
}

// Required answers whether the session still owes a second factor
func (h *Handle) Required(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := h.identity(w, r)
	if !ok {
		return
	}

	sess := h.sessions.Session(sessionID)
	required, err := h.twoFaService.NeedsSecondFactor(r.Context(), sess, userID)
	if err != nil {
		slog.Error("Failed to check second factor", "userId", userID, "error", err)
		renderErrorResponse(w, r, http.StatusInternalServerError, "Failed to check second factor", err.Error())
		return
	}

	render.JSON(w, r, RequiredResponse{Required: required})
}

// Verify checks a submitted challenge against a provider
func (h *Handle) Verify(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(w, r, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if req.ProviderID == "" {
		renderErrorResponse(w, r, http.StatusBadRequest, "provider_id is required", "")
		return
	}

	sess := h.sessions.Session(sessionID)
	passed, err := h.twoFaService.VerifyChallenge(r.Context(), sess, req.ProviderID, userID, req.Challenge)
	if err != nil {
		slog.Error("Failed to verify challenge", "userId", userID, "providerId", req.ProviderID, "error", err)
		renderErrorResponse(w, r, http.StatusInternalServerError, "Failed to verify challenge", err.Error())
		return
	}

	if !passed {
		render.Status(r, http.StatusUnauthorized)
	}
	render.JSON(w, r, VerifyResponse{Passed: passed})
}

// identity pulls the user and session ids out of the request's JWT
// claims. A missing or malformed token ends the request with 401.
func (h *Handle) identity(w http.ResponseWriter, r *http.Request) (userID, sessionID string, ok bool) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		renderErrorResponse(w, r, http.StatusUnauthorized, "Unauthorized", err.Error())
		return "", "", false
	}

	userID, _ = claims["sub"].(string)
	sessionID, _ = claims["session_id"].(string)
	if userID == "" || sessionID == "" {
		renderErrorResponse(w, r, http.StatusUnauthorized, "Token missing sub or session_id claim", "")
		return "", "", false
	}

	return userID, sessionID, true
}

func renderErrorResponse(w http.ResponseWriter, r *http.Request, status int, message, errDetail string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{
		Status:  "error",
		Message: message,
		Error:   errDetail,
	})
}
