package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/gymdesk-go/internal/infra/confloader"
)

func validConfig(t *testing.T) *ServerConfig {
	t.Helper()
	cfg := Default()
	cfg.Storage.DataDir = t.TempDir()
	return cfg
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.HTTP.Addr != DefaultHTTPAddr {
		t.Errorf("HTTP.Addr = %q, want %q", cfg.Server.HTTP.Addr, DefaultHTTPAddr)
	}
	if cfg.Storage.Engine != "badger" {
		t.Errorf("Storage.Engine = %q, want badger", cfg.Storage.Engine)
	}
	if cfg.Session.TTL != 0 {
		t.Errorf("Session.TTL = %v, sessions should not expire by default", cfg.Session.TTL)
	}
	if cfg.Auth.PasswordHash != "argon2id" || !cfg.Auth.RevokeOnPasswordChange {
		t.Errorf("Auth = %+v", cfg.Auth)
	}
	if cfg.Log.Level != DefaultLogLevel || cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Server.HTTP.TLSEnabled() {
		t.Error("TLS should be disabled by default")
	}
}

func TestVerify_Default(t *testing.T) {
	if err := Verify(validConfig(t)); err != nil {
		t.Fatalf("Verify(default) error = %v", err)
	}
}

func TestVerify_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ServerConfig)
		want   string
	}{
		{"bad addr", func(c *ServerConfig) { c.Server.HTTP.Addr = "no-port" }, "server.http.addr"},
		{"half tls", func(c *ServerConfig) { c.Server.HTTP.TLSCertFile = "cert.pem" }, "set together"},
		{"missing cert", func(c *ServerConfig) {
			c.Server.HTTP.TLSCertFile = "/nonexistent/cert.pem"
			c.Server.HTTP.TLSKeyFile = "/nonexistent/key.pem"
		}, "tls_cert_file"},
		{"negative rate", func(c *ServerConfig) { c.Server.HTTP.RateLimit = -1 }, "rate_limit"},
		{"zero burst", func(c *ServerConfig) { c.Server.HTTP.RateBurst = 0 }, "rate_burst"},
		{"bad allow list", func(c *ServerConfig) { c.Server.HTTP.MetricsAllowList = []string{"10.0.0.0/33"} }, "metrics_allow_list"},
		{"bad trusted proxy", func(c *ServerConfig) { c.Server.HTTP.TrustedProxies = []string{"10.0.0.1", "gateway"} }, "trusted_proxies"},
		{"unknown engine", func(c *ServerConfig) { c.Storage.Engine = "redis" }, "storage.engine"},
		{"badger no dir", func(c *ServerConfig) { c.Storage.DataDir = "" }, "data_dir"},
		{"badger threshold", func(c *ServerConfig) { c.Storage.Badger.GCThreshold = 1.5 }, "gc_threshold"},
		{"postgres no dsn", func(c *ServerConfig) { c.Storage.Engine = "postgres" }, "dsn"},
		{"negative ttl", func(c *ServerConfig) { c.Session.TTL = -time.Second }, "session durations"},
		{"negative quota", func(c *ServerConfig) { c.Session.MaxPerUser = -1 }, "max_per_user"},
		{"bad hash", func(c *ServerConfig) { c.Auth.PasswordHash = "md5" }, "password_hash"},
		{"bad level", func(c *ServerConfig) { c.Log.Level = "trace" }, "log.level"},
		{"bad format", func(c *ServerConfig) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			err := Verify(cfg)
			if err == nil {
				t.Fatal("Verify() should fail")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Verify() error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestVerify_MemoryEngineNeedsNoDir(t *testing.T) {
	cfg := Default()
	cfg.Storage.Engine = "memory"
	cfg.Storage.DataDir = ""
	if err := Verify(cfg); err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
}

func TestVerify_ReportsAllProblems(t *testing.T) {
	cfg := validConfig(t)
	cfg.Log.Level = "trace"
	cfg.Auth.PasswordHash = "md5"

	err := Verify(cfg)
	if err == nil || !strings.Contains(err.Error(), "log.level") || !strings.Contains(err.Error(), "password_hash") {
		t.Fatalf("Verify() error = %v, want both problems", err)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		dsn, want string
	}{
		{"postgres://gym:s3cret@db:5432/gymdesk?sslmode=disable", "postgres://gym:xxxxx@db:5432/gymdesk?sslmode=disable"},
		{"host=db user=gym password=s3cret dbname=gymdesk", "host=db user=gym password=**** dbname=gymdesk"},
		{"postgres://db/gymdesk", "postgres://db/gymdesk"},
	}

	for _, tt := range tests {
		cfg := Default()
		cfg.Storage.Postgres.DSN = tt.dsn
		got := Sanitize(cfg)

		if got.Storage.Postgres.DSN != tt.want {
			t.Errorf("Sanitize(%q) DSN = %q, want %q", tt.dsn, got.Storage.Postgres.DSN, tt.want)
		}
		if cfg.Storage.Postgres.DSN != tt.dsn {
			t.Error("Sanitize() modified the original config")
		}
	}
}

func TestDefaultMap_LoadsIntoDefault(t *testing.T) {
	var cfg ServerConfig
	if err := confloader.NewLoader(confloader.WithDefaults(DefaultMap())).Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Default()
	if cfg.Server.HTTP.Addr != want.Server.HTTP.Addr || cfg.Server.HTTP.RateBurst != want.Server.HTTP.RateBurst {
		t.Errorf("HTTP = %+v", cfg.Server.HTTP)
	}
	if cfg.Server.HTTP.ShutdownTimeout != want.Server.HTTP.ShutdownTimeout {
		t.Errorf("ShutdownTimeout = %v", cfg.Server.HTTP.ShutdownTimeout)
	}
	if cfg.Storage.Badger != want.Storage.Badger {
		t.Errorf("Badger = %+v, want %+v", cfg.Storage.Badger, want.Storage.Badger)
	}
	if cfg.Session != want.Session {
		t.Errorf("Session = %+v, want %+v", cfg.Session, want.Session)
	}
	if cfg.Auth != want.Auth {
		t.Errorf("Auth = %+v, want %+v", cfg.Auth, want.Auth)
	}
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	content := `
server:
  http:
    trusted_proxies:
      - 10.0.0.0/8
storage:
  engine: memory
session:
  ttl: 30m
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("GYMDESK_SESSION_IDLE_TIMEOUT", "10m")
	t.Setenv("GYMDESK_SERVER_HTTP_ADDR", "0.0.0.0:9090")

	var cfg ServerConfig
	l := confloader.NewLoader(confloader.WithDefaults(DefaultMap()), confloader.WithConfigFile(path))
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Storage.Engine != "memory" || cfg.Session.TTL != 30*time.Minute || cfg.Log.Level != "debug" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Session.IdleTimeout != 10*time.Minute {
		t.Errorf("IdleTimeout = %v, want 10m from env", cfg.Session.IdleTimeout)
	}
	if cfg.Server.HTTP.Addr != "0.0.0.0:9090" {
		t.Errorf("Addr = %q, want env override", cfg.Server.HTTP.Addr)
	}
	if len(cfg.Server.HTTP.TrustedProxies) != 1 || cfg.Server.HTTP.TrustedProxies[0] != "10.0.0.0/8" {
		t.Errorf("TrustedProxies = %v, want [10.0.0.0/8]", cfg.Server.HTTP.TrustedProxies)
	}
	if err := Verify(&cfg); err != nil {
		t.Errorf("Verify() error = %v", err)
	}
}
