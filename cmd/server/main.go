package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jinzhu/copier"
	"github.com/redis/go-redis/v9"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"
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
	"github.com/tendant/simple-twofa/pkg/twofa"
	twofaapi "github.com/tendant/simple-twofa/pkg/twofa/api"
)

type TwofaDbConfig struct {
	Host     string `env:"TWOFA_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"TWOFA_PG_PORT" env-default:"5432"`
	Database string `env:"TWOFA_PG_DATABASE" env-default:"twofa_db"`
	User     string `env:"TWOFA_PG_USER" env-default:"twofa"`
	Password string `env:"TWOFA_PG_PASSWORD" env-default:"pwd"`
}

func (d TwofaDbConfig) toDbConfig() dbutils.DbConfig {
	return dbutils.DbConfig{
		Host:     d.Host,
		Port:     d.Port,
		Database: d.Database,
		User:     d.User,
		Password: d.Password,
	}
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD" env-default:""`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

type JwtConfig struct {
	JwtSecret string `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
}

type SmtpConfig struct {
	Host     string `env:"SMTP_HOST" env-default:"localhost"`
	Port     int    `env:"SMTP_PORT" env-default:"1025"`
	TLS      bool   `env:"SMTP_TLS" env-default:"false"`
	Username string `env:"SMTP_USERNAME" env-default:""`
	Password string `env:"SMTP_PASSWORD" env-default:""`
	From     string `env:"SMTP_FROM" env-default:"noreply@example.com"`
}

type SessionConfig struct {
	TTLMinutes int    `env:"SESSION_TTL_MINUTES" env-default:"1440"`
	KeyPrefix  string `env:"SESSION_KEY_PREFIX" env-default:"twofa:session"`
}

type Config struct {
	TwofaDbConfig TwofaDbConfig
	RedisConfig   RedisConfig
	AppConfig     app.AppConfig
	JwtConfig     JwtConfig
	SmtpConfig    SmtpConfig
	SessionConfig SessionConfig
}

func main() {
	config := Config{}
	cleanenv.ReadEnv(&config)

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	dbConfig := config.TwofaDbConfig.toDbConfig()
	pool, err := dbutils.NewDbPool(context.Background(), dbConfig)
	if err != nil {
		slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User)
		os.Exit(-1)
	}

	// Durable stores on Postgres
	registryRepo := registry.NewPostgresRepository(pool)
	prefsRepo := prefs.NewPostgresRepository(pool)
	tokenService := logintoken.NewService(logintoken.NewPostgresRepository(pool))

	// Session state on Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     config.RedisConfig.Addr,
		Password: config.RedisConfig.Password,
		DB:       config.RedisConfig.DB,
	})
	sessionTTL := time.Duration(config.SessionConfig.TTLMinutes) * time.Minute
	sessions := session.NewRedisManager(redisClient, config.SessionConfig.KeyPrefix, sessionTTL)

	// Notification manager mailing through SMTP
	var smtpConfig notification.SMTPConfig
	copier.Copy(&smtpConfig, &config.SmtpConfig)
	notifier, err := notification.NewNotificationManagerWithOptions(
		notification.WithSMTP(smtpConfig),
		notification.WithDefaultTemplates(),
	)
	if err != nil {
		slog.Error("Failed creating notification manager", "error", err)
		os.Exit(-1)
	}

	// Providers
	emailProvider := emailcode.NewProvider(prefsRepo, notifier, func(ctx context.Context, userID string) (string, error) {
		// The address lives in the preference store, maintained by
		// the enclosing IdM when the user verifies their email.
		return prefsRepo.GetUserValue(ctx, userID, "core", "email", "")
	})
	totpProvider := totp.NewProvider(prefsRepo)
	backupProvider := backupcodes.NewProvider(prefsRepo)

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
		audit.NewSlogSink(nil),
	)

	tokenAuth := jwtauth.New("HS256", []byte(config.JwtConfig.JwtSecret), nil)
	handle := twofaapi.NewHandle(twoFaService, sessions)
	limiter := ratelimit.NewMiddleware(ratelimit.DefaultConfig())

	server.R.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(tokenAuth))
		r.Use(jwtauth.Authenticator(tokenAuth))
		r.Use(limiter.Handler)
		r.Route("/2fa", handle.Routes)
	})

	server.Run()
}
