// Package main runs the two-factor coordinator with in-memory stores
// only. This is useful for:
// - Quick development and testing
// - Trying the API without database setup
//
// Note: All state is lost when the server stops. For production, use
// cmd/server with PostgreSQL and Redis.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/simple-twofa/pkg/audit"
	"github.com/tendant/simple-twofa/pkg/logintoken"
	"github.com/tendant/simple-twofa/pkg/notification"
	"github.com/tendant/simple-twofa/pkg/prefs"
	"github.com/tendant/simple-twofa/pkg/providers/backupcodes"
	"github.com/tendant/simple-twofa/pkg/providers/emailcode"
	"github.com/tendant/simple-twofa/pkg/providers/totp"
	"github.com/tendant/simple-twofa/pkg/ratelimit"
	"github.com/tendant/simple-twofa/pkg/registry"
	"github.com/tendant/simple-twofa/pkg/session"
	twofaapi "github.com/tendant/simple-twofa/pkg/twofa/api"

	"github.com/tendant/simple-twofa/pkg/twofa"
)

const (
	jwtSecret = "demo-dev-secret-change-in-production"
	demoUser  = "jos"
	demoEmail = "jos@example.com"
)

// logNotifier prints notices to the log instead of delivering them,
// so demo codes show up on the console
type logNotifier struct{}

func (n *logNotifier) Send(noticeType notification.NoticeType, data notification.NotificationData, template notification.NoticeTemplate) error {
	slog.Info("Would send notice", "type", noticeType, "to", data.To, "data", data.Data)
	return nil
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting in-memory two-factor demo (no database required)")

	ctx := context.Background()

	// In-memory stores
	registryRepo := registry.NewInMemRepository()
	prefsRepo := prefs.NewInMemRepository()
	tokenService := logintoken.NewService(logintoken.NewInMemRepository())
	sessions := session.NewMemoryManager(24 * time.Hour)

	// Notification manager logging instead of mailing
	notifier, err := notification.NewNotificationManagerWithOptions(notification.WithDefaultTemplates())
	if err != nil {
		slog.Error("Failed creating notification manager", "error", err)
		os.Exit(-1)
	}
	notifier.RegisterNotifier(notification.EmailSystem, &logNotifier{})

	// Providers
	emailProvider := emailcode.NewProvider(prefsRepo, notifier, func(ctx context.Context, userID string) (string, error) {
		return userID + "@example.com", nil
	})
	totpProvider := totp.NewProvider(prefsRepo)
	backupProvider := backupcodes.NewProvider(prefsRepo)

	// Seed the demo user with the email provider enabled
	if err := emailProvider.Enable(ctx, demoUser); err != nil {
		slog.Error("Failed seeding demo user", "error", err)
		os.Exit(-1)
	}
	slog.Info("Seeded demo user", "userId", demoUser, "email", demoEmail, "provider", emailProvider.ID())

	twoFaService := twofa.NewTwoFaService(
		registryRepo,
		twofa.NewStaticLoader(emailProvider, totpProvider, backupProvider),
		twofa.TokenManagerFunc(func(ctx context.Context, sessionID string) (twofa.Token, error) {
			token, err := tokenService.GetToken(ctx, sessionID)
			if err != nil {
				return nil, err
			}
			return token, nil
		}),
		prefsRepo,
		audit.NewSlogSink(logger),
	)

	tokenAuth := jwtauth.New("HS256", []byte(jwtSecret), nil)
	tokenGen := logintoken.NewSessionTokenGenerator(jwtSecret, "simple-twofa-demo", "simple-twofa")
	handle := twofaapi.NewHandle(twoFaService, sessions)
	limiter := ratelimit.NewMiddleware(ratelimit.DefaultConfig())

	server := app.DefaultApp()
	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	// Demo login: primary auth is assumed to have happened; this mints
	// the session token and arms the gate if 2FA applies.
	server.R.Post("/demo/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID        string `json:"user_id"`
			RememberLogin bool   `json:"remember_login"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
			http.Error(w, "user_id is required", http.StatusBadRequest)
			return
		}

		sessionID := uuid.New().String()
		if _, err := tokenService.CreateToken(r.Context(), req.UserID, sessionID, r.UserAgent(), 0); err != nil {
			slog.Error("Failed creating login token", "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		required, err := twoFaService.IsTwoFactorAuthenticated(r.Context(), req.UserID)
		if err != nil {
			slog.Error("Failed checking 2FA state", "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if required {
			sess := sessions.Session(sessionID)
			if err := twoFaService.PrepareTwoFactorLogin(r.Context(), sess, req.UserID, req.RememberLogin); err != nil {
				slog.Error("Failed preparing 2FA login", "error", err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if err := emailProvider.SendCode(r.Context(), req.UserID); err != nil {
				slog.Warn("Failed sending 2FA code", "error", err)
			}
		}

		tokenString, expiresAt, err := tokenGen.GenerateToken(req.UserID, sessionID, logintoken.DefaultSessionTokenExpiry)
		if err != nil {
			slog.Error("Failed minting session token", "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, map[string]any{
			"token":               tokenString,
			"expires_at":          expiresAt,
			"session_id":          sessionID,
			"two_factor_required": required,
		})
	})

	server.R.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(tokenAuth))
		r.Use(jwtauth.Authenticator(tokenAuth))
		r.Use(limiter.Handler)
		r.Route("/2fa", handle.Routes)
	})

	server.Run()
}
