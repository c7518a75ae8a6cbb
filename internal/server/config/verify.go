package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/yndnr/gymdesk-go/internal/telemetry/logger"
)

// Verify validates the configuration. All problems are reported together.
func Verify(cfg *ServerConfig) error {
	var errs []error
	errs = append(errs, verifyServer(&cfg.Server)...)
	errs = append(errs, verifyStorage(&cfg.Storage)...)
	errs = append(errs, verifySession(&cfg.Session)...)
	errs = append(errs, verifyAuth(&cfg.Auth)...)
	errs = append(errs, verifyLog(&cfg.Log)...)
	return errors.Join(errs...)
}

func verifyServer(cfg *ServerSection) []error {
	var errs []error
	h := cfg.HTTP
	if _, _, err := net.SplitHostPort(h.Addr); err != nil {
		errs = append(errs, fmt.Errorf("server.http.addr %q: %w", h.Addr, err))
	}
	if (h.TLSCertFile == "") != (h.TLSKeyFile == "") {
		errs = append(errs, errors.New("server.http.tls_cert_file and tls_key_file must be set together"))
	}
	for _, f := range []struct{ key, path string }{
		{"server.http.tls_cert_file", h.TLSCertFile},
		{"server.http.tls_key_file", h.TLSKeyFile},
	} {
		if f.path == "" {
			continue
		}
		if _, err := os.Stat(f.path); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.key, err))
		}
	}
	if h.RateLimit < 0 {
		errs = append(errs, errors.New("server.http.rate_limit must not be negative"))
	}
	if h.RateLimit > 0 && h.RateBurst < 1 {
		errs = append(errs, errors.New("server.http.rate_burst must be at least 1 when rate_limit is set"))
	}
	if h.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.http.shutdown_timeout must be positive"))
	}
	errs = append(errs, verifyIPList("server.http.metrics_allow_list", h.MetricsAllowList)...)
	errs = append(errs, verifyIPList("server.http.trusted_proxies", h.TrustedProxies)...)
	return errs
}

// verifyIPList checks that every entry is an IP address or CIDR block.
func verifyIPList(key string, entries []string) []error {
	var errs []error
	for _, entry := range entries {
		if strings.Contains(entry, "/") {
			if _, _, err := net.ParseCIDR(entry); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
			}
		} else if net.ParseIP(entry) == nil {
			errs = append(errs, fmt.Errorf("%s: invalid IP %q", key, entry))
		}
	}
	return errs
}

func verifyStorage(cfg *StorageSection) []error {
	var errs []error
	switch cfg.Engine {
	case "memory":
	case "badger":
		if cfg.DataDir == "" {
			errs = append(errs, errors.New("storage.data_dir is required for the badger engine"))
		} else if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
			errs = append(errs, fmt.Errorf("cannot create data directory: %w", err))
		}
		if cfg.Badger.GCThreshold <= 0 || cfg.Badger.GCThreshold >= 1 {
			errs = append(errs, errors.New("storage.badger.gc_threshold must be between 0 and 1"))
		}
	case "postgres":
		if cfg.Postgres.DSN == "" {
			errs = append(errs, errors.New("storage.postgres.dsn is required for the postgres engine"))
		}
		if cfg.Postgres.MaxOpenConns < 0 || cfg.Postgres.MaxIdleConns < 0 {
			errs = append(errs, errors.New("storage.postgres connection limits must not be negative"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.engine %q: must be badger, memory or postgres", cfg.Engine))
	}
	return errs
}

func verifySession(cfg *SessionSection) []error {
	var errs []error
	if cfg.TTL < 0 || cfg.IdleTimeout < 0 || cfg.CleanupInterval < 0 {
		errs = append(errs, errors.New("session durations must not be negative"))
	}
	if cfg.MaxPerUser < 0 {
		errs = append(errs, errors.New("session.max_per_user must not be negative"))
	}
	return errs
}

func verifyAuth(cfg *AuthSection) []error {
	var errs []error
	if cfg.LoginRate < 0 {
		errs = append(errs, errors.New("auth.login_rate must not be negative"))
	}
	switch strings.ToLower(cfg.PasswordHash) {
	case "", "argon2id", "bcrypt":
	default:
		errs = append(errs, fmt.Errorf("auth.password_hash %q: must be argon2id or bcrypt", cfg.PasswordHash))
	}
	return errs
}

func verifyLog(cfg *LogSection) []error {
	var errs []error
	if !logger.ValidLevel(cfg.Level) {
		errs = append(errs, fmt.Errorf("log.level %q: must be debug, info, warn or error", cfg.Level))
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format %q: must be json or text", cfg.Format))
	}
	return errs
}
