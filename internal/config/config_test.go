package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Env != "dev" || cfg.App.LogLevel != "info" {
		t.Fatalf("bad app defaults: %+v", cfg.App)
	}
	if cfg.Server.Addr != ":8080" || cfg.Server.SignInPath != "/login" {
		t.Fatalf("bad server defaults: %+v", cfg.Server)
	}
	if cfg.Storage.Driver != "memory" || cfg.Cache.Kind != "memory" {
		t.Fatalf("bad storage/cache defaults: %s / %s", cfg.Storage.Driver, cfg.Cache.Kind)
	}
	if cfg.Session.TTL != 24*time.Hour || cfg.Session.Issuer != "sessiond" {
		t.Fatalf("bad session defaults: %+v", cfg.Session)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
app:
  env: prod
  log_level: warn
server:
  addr: ":9090"
  sign_in_path: /auth/sign-in
storage:
  driver: postgres
  postgres:
    dsn: postgres://app@db/sessiond
session:
  ttl: 1h
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Env != "prod" || cfg.App.LogLevel != "warn" {
		t.Fatalf("bad app: %+v", cfg.App)
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.SignInPath != "/auth/sign-in" {
		t.Fatalf("bad server: %+v", cfg.Server)
	}
	if cfg.Storage.Driver != "postgres" || cfg.Storage.Postgres.DSN != "postgres://app@db/sessiond" {
		t.Fatalf("bad storage: %+v", cfg.Storage)
	}
	if cfg.Session.TTL != time.Hour {
		t.Fatalf("bad ttl: %v", cfg.Session.TTL)
	}
	// Lo no seteado conserva defaults.
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Fatalf("bad read timeout: %v", cfg.Server.ReadTimeout)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("app:\n  env: dev\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Setenv("APP_ENV", "staging")
	t.Setenv("SERVER_ADDR", ":7070")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Env != "staging" {
		t.Fatalf("env override lost: %s", cfg.App.Env)
	}
	if cfg.Server.Addr != ":7070" {
		t.Fatalf("addr override lost: %s", cfg.Server.Addr)
	}
	if cfg.Session.TTL != 30*time.Minute {
		t.Fatalf("ttl override lost: %v", cfg.Session.TTL)
	}
	if cfg.Cache.Redis.DB != 3 {
		t.Fatalf("redis db override lost: %d", cfg.Cache.Redis.DB)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/does/not/exist.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
