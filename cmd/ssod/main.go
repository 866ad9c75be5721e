package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"

	"github.com/tendant/simple-sso/pkg/config"
	"github.com/tendant/simple-sso/pkg/mapping"
	"github.com/tendant/simple-sso/pkg/profile"
	"github.com/tendant/simple-sso/pkg/resolver"
	"github.com/tendant/simple-sso/pkg/session"
	"github.com/tendant/simple-sso/pkg/strategy"
	"github.com/tendant/simple-sso/pkg/strategy/api"
	"github.com/tendant/simple-sso/pkg/teardown"
)

type SsoDbConfig struct {
	Enabled  bool   `env:"SSO_PG_ENABLED" env-default:"false"`
	Host     string `env:"SSO_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"SSO_PG_PORT" env-default:"5432"`
	Database string `env:"SSO_PG_DATABASE" env-default:"sso_db"`
	User     string `env:"SSO_PG_USER" env-default:"sso"`
	Password string `env:"SSO_PG_PASSWORD" env-default:"pwd"`
}

func (d SsoDbConfig) toDbConfig() dbutils.DbConfig {
	return dbutils.DbConfig{
		Host:     d.Host,
		Port:     d.Port,
		Database: d.Database,
		User:     d.User,
		Password: d.Password,
	}
}

type SessionConfig struct {
	JwtSecret    string `env:"SSO_JWT_SECRET" env-default:"very-secure-jwt-secret"`
	CookieSecure bool   `env:"SSO_COOKIE_SECURE" env-default:"false"`
	SuccessURL   string `env:"SSO_SUCCESS_URL" env-default:"/"`
	FailureURL   string `env:"SSO_FAILURE_URL" env-default:"/login?error=auth_failed"`
}

type ResolverConfig struct {
	AdminGroup     string `env:"SSO_ADMIN_GROUP" env-default:"administrators"`
	RoleGrantFatal bool   `env:"SSO_ROLE_GRANT_FATAL" env-default:"false"`
}

type Config struct {
	Provider       config.ProviderConfig
	ProfileFields  config.ProfileFields
	DbConfig       SsoDbConfig
	SessionConfig  SessionConfig
	ResolverConfig ResolverConfig
}

func main() {
	cfg := Config{}
	cleanenv.ReadEnv(&cfg)

	server := app.DefaultApp()
	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	if err := cfg.Provider.Validate(); err != nil {
		// The process keeps serving health endpoints, but no login
		// strategy exists until configuration is fixed.
		slog.Error("SSO provider disabled", "error", err)
		server.Run()
		return
	}

	var kv mapping.KeyValue
	if cfg.DbConfig.Enabled {
		pool, err := dbutils.NewDbPool(context.Background(), cfg.DbConfig.toDbConfig())
		if err != nil {
			slog.Error("Failed creating dbpool", "db", cfg.DbConfig.Database, "host", cfg.DbConfig.Host)
			os.Exit(-1)
		}
		pg, err := mapping.NewPostgresKeyValue(pool)
		if err != nil {
			slog.Error("Failed creating mapping storage", "error", err)
			os.Exit(-1)
		}
		kv = pg
	} else {
		slog.Warn("Using in-memory mapping storage, mappings are lost on restart")
		kv = mapping.NewInMemoryKeyValue()
	}

	mappings := mapping.NewStore(kv, cfg.Provider.MappingKey())

	// The in-memory stores stand in for the host application's user and
	// group storage. An embedding host wires its own implementations here.
	users := resolver.NewInMemoryUserStore()
	groups := resolver.NewInMemoryGroupStore()

	resolve := resolver.NewService(mappings, users, groups, cfg.Provider.UserIDField(),
		resolver.WithAdminGroup(cfg.ResolverConfig.AdminGroup),
		resolver.WithFatalRoleGrant(cfg.ResolverConfig.RoleGrantFatal),
	)

	normalizer := profile.NewNormalizer(cfg.Provider.Name, cfg.ProfileFields)
	adapter := strategy.NewAdapter(&cfg.Provider, normalizer, resolve)

	registry := strategy.NewRegistry()
	if err := adapter.Register(registry); err != nil {
		slog.Error("Failed to register login strategy", "error", err)
		os.Exit(-1)
	}

	states := strategy.NewInMemoryStateStore()
	go func() {
		ticker := time.NewTicker(time.Hour)
		for range ticker.C {
			if err := states.CleanupExpired(); err != nil {
				slog.Warn("State cleanup failed", "error", err)
			}
		}
	}()

	notifier := session.NewJWTCookieNotifier(cfg.SessionConfig.JwtSecret,
		session.WithSecureCookie(cfg.SessionConfig.CookieSecure),
	)

	handle := api.NewHandle(registry, states, notifier,
		api.WithSuccessURL(cfg.SessionConfig.SuccessURL),
		api.WithFailureURL(cfg.SessionConfig.FailureURL),
	)
	handle.Routes(server.R)

	// Compliance hook: the host calls this when it deletes a user.
	teardownService := teardown.NewService(mappings, users, cfg.Provider.UserIDField())
	server.R.Delete("/api/sso/users/{userID}/mapping", func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
		if err != nil {
			http.Error(w, "invalid user id", http.StatusBadRequest)
			return
		}
		if err := teardownService.OnUserDeletion(r.Context(), userID); err != nil {
			http.Error(w, "teardown failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	slog.Info("SSO adapter ready", "provider", cfg.Provider.Name, "auth_url", cfg.Provider.AuthPath())
	server.Run()
}
