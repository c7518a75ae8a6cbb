package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr        = "127.0.0.1:8080"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultRateLimit       = 50
	DefaultRateBurst       = 100

	DefaultStorageEngine = "badger"
	DefaultDataDir       = "/var/lib/gymdesk-server/data"
	DefaultGCInterval    = 10 * time.Minute
	DefaultGCThreshold   = 0.5
	DefaultCacheSize     = 64 << 20

	DefaultPGMaxOpenConns    = 10
	DefaultPGMaxIdleConns    = 5
	DefaultPGConnMaxLifetime = 30 * time.Minute

	DefaultCleanupInterval = time.Minute

	DefaultLoginRate    = 1.0 / 12
	DefaultLoginBurst   = 5
	DefaultPasswordHash = "argon2id"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:            DefaultHTTPAddr,
				ReadTimeout:     DefaultReadTimeout,
				WriteTimeout:    DefaultWriteTimeout,
				IdleTimeout:     DefaultIdleTimeout,
				ShutdownTimeout: DefaultShutdownTimeout,
				RateLimit:       DefaultRateLimit,
				RateBurst:       DefaultRateBurst,
				MetricsEnabled:  true,
			},
		},
		Storage: StorageSection{
			Engine:  DefaultStorageEngine,
			DataDir: DefaultDataDir,
			Badger: BadgerConfig{
				GCInterval:  DefaultGCInterval,
				GCThreshold: DefaultGCThreshold,
				CacheSize:   DefaultCacheSize,
				SyncWrites:  true,
			},
			Postgres: PostgresConfig{
				MaxOpenConns:    DefaultPGMaxOpenConns,
				MaxIdleConns:    DefaultPGMaxIdleConns,
				ConnMaxLifetime: DefaultPGConnMaxLifetime,
				AutoMigrate:     true,
			},
			SeedTrainingTypes: true,
		},
		Session: SessionSection{
			CleanupInterval: DefaultCleanupInterval,
		},
		Auth: AuthSection{
			LoginRate:              DefaultLoginRate,
			LoginBurst:             DefaultLoginBurst,
			PasswordHash:           DefaultPasswordHash,
			RevokeOnPasswordChange: true,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// DefaultMap returns Default flattened to dotted koanf keys, the lowest
// priority layer for confloader.
func DefaultMap() map[string]any {
	d := Default()
	return map[string]any{
		"server.http.addr":               d.Server.HTTP.Addr,
		"server.http.tls_cert_file":      d.Server.HTTP.TLSCertFile,
		"server.http.tls_key_file":       d.Server.HTTP.TLSKeyFile,
		"server.http.read_timeout":       d.Server.HTTP.ReadTimeout.String(),
		"server.http.write_timeout":      d.Server.HTTP.WriteTimeout.String(),
		"server.http.idle_timeout":       d.Server.HTTP.IdleTimeout.String(),
		"server.http.shutdown_timeout":   d.Server.HTTP.ShutdownTimeout.String(),
		"server.http.rate_limit":         d.Server.HTTP.RateLimit,
		"server.http.rate_burst":         d.Server.HTTP.RateBurst,
		"server.http.cors_origins":       []string{},
		"server.http.metrics_enabled":    d.Server.HTTP.MetricsEnabled,
		"server.http.metrics_allow_list": []string{},
		"server.http.trusted_proxies":    []string{},

		"storage.engine":                     d.Storage.Engine,
		"storage.data_dir":                   d.Storage.DataDir,
		"storage.seed_training_types":        d.Storage.SeedTrainingTypes,
		"storage.badger.gc_interval":         d.Storage.Badger.GCInterval.String(),
		"storage.badger.gc_threshold":        d.Storage.Badger.GCThreshold,
		"storage.badger.cache_size":          d.Storage.Badger.CacheSize,
		"storage.badger.sync_writes":         d.Storage.Badger.SyncWrites,
		"storage.postgres.dsn":               d.Storage.Postgres.DSN,
		"storage.postgres.max_open_conns":    d.Storage.Postgres.MaxOpenConns,
		"storage.postgres.max_idle_conns":    d.Storage.Postgres.MaxIdleConns,
		"storage.postgres.conn_max_lifetime": d.Storage.Postgres.ConnMaxLifetime.String(),
		"storage.postgres.auto_migrate":      d.Storage.Postgres.AutoMigrate,

		"session.ttl":              d.Session.TTL.String(),
		"session.idle_timeout":     d.Session.IdleTimeout.String(),
		"session.cleanup_interval": d.Session.CleanupInterval.String(),
		"session.max_per_user":     d.Session.MaxPerUser,

		"auth.login_rate":                d.Auth.LoginRate,
		"auth.login_burst":               d.Auth.LoginBurst,
		"auth.password_hash":             d.Auth.PasswordHash,
		"auth.revoke_on_password_change": d.Auth.RevokeOnPasswordChange,

		"log.level":      d.Log.Level,
		"log.format":     d.Log.Format,
		"log.add_source": d.Log.AddSource,
	}
}
