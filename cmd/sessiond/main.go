package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	cachememory "github.com/filmlot/sessiond/internal/cache/memory"
	cacheredis "github.com/filmlot/sessiond/internal/cache/redis"

	"github.com/filmlot/sessiond/internal/cache"
	"github.com/filmlot/sessiond/internal/config"
	"github.com/filmlot/sessiond/internal/domain"
	"github.com/filmlot/sessiond/internal/http/router"
	"github.com/filmlot/sessiond/internal/http/server"
	"github.com/filmlot/sessiond/internal/metrics"
	"github.com/filmlot/sessiond/internal/observability/logger"
	"github.com/filmlot/sessiond/internal/session"
	"github.com/filmlot/sessiond/internal/store"
	storememory "github.com/filmlot/sessiond/internal/store/memory"
	storepg "github.com/filmlot/sessiond/internal/store/pg"
	"github.com/filmlot/sessiond/internal/token"
)

const version = "0.3.0"

// devSigningSecret solo se usa con storage memory y sin secreto configurado.
const devSigningSecret = "sessiond-dev-signing-secret-not-for-prod"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "sessiond:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.dev")

	var configPath string
	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_PATH"), "path al config YAML")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.App.LogLevel,
		ServiceName: "sessiond",
		Version:     version,
	})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	core := metrics.New(prometheus.DefaultRegisterer)

	secret := cfg.Session.SigningSecret
	if secret == "" && cfg.Storage.Driver == "memory" {
		log.Warn("no signing secret configured, using dev default")
		secret = devSigningSecret
	}
	issuer, err := token.NewIssuer(secret, cfg.Session.Issuer, cfg.Session.TTL)
	if err != nil {
		return err
	}

	ids, cleanup, err := buildStore(cfg, issuer)
	if err != nil {
		return err
	}
	defer cleanup()

	manager := session.NewManager(session.Deps{Store: ids, Metrics: core})
	defer manager.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Bootstrap: restaurar sesión persistida y resolver el perfil antes de
	// empezar a servir; el guard responde 503 mientras loading sea true.
	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	manager.Initialize(initCtx)
	cancel()

	handler := router.New(router.Deps{
		Manager:    manager,
		Store:      ids,
		Metrics:    core,
		SignInPath: cfg.Server.SignInPath,
		Version:    version,
	})

	srv := server.New(server.Config{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, handler)

	log.Info("sessiond starting",
		logger.String("env", cfg.App.Env),
		logger.String("storage", cfg.Storage.Driver),
		logger.String("cache", cfg.Cache.Kind),
	)
	return srv.Run(ctx)
}

// buildStore arma el identity store según el driver configurado.
func buildStore(cfg *config.Config, issuer *token.Issuer) (store.IdentityStore, func(), error) {
	switch cfg.Storage.Driver {
	case "postgres":
		c, closeCache, err := buildCache(cfg)
		if err != nil {
			return nil, nil, err
		}
		lifetime, _ := time.ParseDuration(cfg.Storage.Postgres.ConnMaxLifetime)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		st, err := storepg.New(ctx, storepg.Config{
			DSN:             cfg.Storage.Postgres.DSN,
			MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Storage.Postgres.MaxIdleConns,
			ConnMaxLifetime: lifetime,
		}, c, issuer)
		if err != nil {
			closeCache()
			return nil, nil, err
		}
		if err := st.EnsureSchema(ctx); err != nil {
			st.Close()
			closeCache()
			return nil, nil, err
		}
		return st, func() { st.Close(); closeCache() }, nil

	case "memory", "":
		st := storememory.New(storememory.Options{Issuer: issuer})
		seedDev(st)
		return st, func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func buildCache(cfg *config.Config) (cache.Cache, func(), error) {
	switch cfg.Cache.Kind {
	case "redis":
		c, err := cacheredis.New(cfg.Cache.Redis.Addr, cfg.Cache.Redis.DB, cfg.Cache.Redis.Prefix)
		if err != nil {
			return nil, nil, err
		}
		return c, func() { _ = c.Close() }, nil
	case "memory", "":
		c := cachememory.New(cfg.Cache.Memory.DefaultTTL)
		return c, func() { _ = c.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache kind %q", cfg.Cache.Kind)
	}
}

// seedDev deja un usuario admin utilizable en modo memory.
func seedDev(st *storememory.Store) {
	email := os.Getenv("DEV_SEED_EMAIL")
	pass := os.Getenv("DEV_SEED_PASSWORD")
	if email == "" || pass == "" {
		return
	}
	id, err := st.SeedIdentity(email, pass, "Dev Admin")
	if err != nil {
		logger.L().Warn("dev seed failed", logger.Err(err))
		return
	}
	st.SeedProfile(&domain.UserProfile{
		IdentityID:  id,
		Email:       email,
		DisplayName: "Dev Admin",
		Role:        domain.RoleAdmin,
		Active:      true,
	})
	logger.L().Info("dev identity seeded", logger.Email(email))
}
