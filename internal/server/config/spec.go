package config

import "time"

// ServerConfig is the root configuration for gymdesk-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server" yaml:"server"`
	Storage StorageSection `koanf:"storage" yaml:"storage"`
	Session SessionSection `koanf:"session" yaml:"session"`
	Auth    AuthSection    `koanf:"auth" yaml:"auth"`
	Log     LogSection     `koanf:"log" yaml:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP HTTPConfig `koanf:"http" yaml:"http"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr        string `koanf:"addr" yaml:"addr"`
	TLSCertFile string `koanf:"tls_cert_file" yaml:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file" yaml:"tls_key_file"`

	ReadTimeout     time.Duration `koanf:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" yaml:"shutdown_timeout"`

	// RateLimit is the sustained requests per second allowed per client
	// IP. Zero disables the limit.
	RateLimit float64 `koanf:"rate_limit" yaml:"rate_limit"`
	RateBurst int     `koanf:"rate_burst" yaml:"rate_burst"`

	// CORSOrigins lists allowed origins; "*" allows any.
	CORSOrigins []string `koanf:"cors_origins" yaml:"cors_origins"`

	// MetricsEnabled exposes /metrics.
	MetricsEnabled bool `koanf:"metrics_enabled" yaml:"metrics_enabled"`

	// MetricsAllowList restricts /metrics to these IPs or CIDR blocks.
	// Empty allows any client.
	MetricsAllowList []string `koanf:"metrics_allow_list" yaml:"metrics_allow_list"`

	// TrustedProxies lists the IPs or CIDR blocks of reverse proxies whose
	// X-Forwarded-For and X-Real-IP headers are believed. Empty means the
	// client address is always the connecting peer.
	TrustedProxies []string `koanf:"trusted_proxies" yaml:"trusted_proxies"`
}

// TLSEnabled reports whether both certificate and key are configured.
func (c HTTPConfig) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// StorageSection configures the persistence backend for gym data.
type StorageSection struct {
	// Engine is one of "badger", "memory" or "postgres".
	Engine   string         `koanf:"engine" yaml:"engine"`
	DataDir  string         `koanf:"data_dir" yaml:"data_dir"`
	Badger   BadgerConfig   `koanf:"badger" yaml:"badger"`
	Postgres PostgresConfig `koanf:"postgres" yaml:"postgres"`

	// SeedTrainingTypes inserts the built-in training types at startup.
	SeedTrainingTypes bool `koanf:"seed_training_types" yaml:"seed_training_types"`
}

// BadgerConfig tunes the embedded Badger engine.
type BadgerConfig struct {
	GCInterval  time.Duration `koanf:"gc_interval" yaml:"gc_interval"`
	GCThreshold float64       `koanf:"gc_threshold" yaml:"gc_threshold"`
	CacheSize   int64         `koanf:"cache_size" yaml:"cache_size"`
	SyncWrites  bool          `koanf:"sync_writes" yaml:"sync_writes"`
}

// PostgresConfig configures the PostgreSQL backend.
type PostgresConfig struct {
	DSN             string        `koanf:"dsn" yaml:"dsn"`
	MaxOpenConns    int           `koanf:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" yaml:"conn_max_lifetime"`
	AutoMigrate     bool          `koanf:"auto_migrate" yaml:"auto_migrate"`
}

// SessionSection configures token sessions.
type SessionSection struct {
	// TTL is the absolute session lifetime. Zero means sessions live
	// until logout.
	TTL             time.Duration `koanf:"ttl" yaml:"ttl"`
	IdleTimeout     time.Duration `koanf:"idle_timeout" yaml:"idle_timeout"`
	CleanupInterval time.Duration `koanf:"cleanup_interval" yaml:"cleanup_interval"`

	// MaxPerUser caps concurrent sessions per user. Zero is unlimited.
	MaxPerUser int `koanf:"max_per_user" yaml:"max_per_user"`
}

// AuthSection configures login and password handling.
type AuthSection struct {
	LoginRate              float64 `koanf:"login_rate" yaml:"login_rate"`
	LoginBurst             int     `koanf:"login_burst" yaml:"login_burst"`
	PasswordHash           string  `koanf:"password_hash" yaml:"password_hash"`
	RevokeOnPasswordChange bool    `koanf:"revoke_on_password_change" yaml:"revoke_on_password_change"`
}

// LogSection configures logging.
type LogSection struct {
	Level     string `koanf:"level" yaml:"level"`
	Format    string `koanf:"format" yaml:"format"`
	AddSource bool   `koanf:"add_source" yaml:"add_source"`
}
