package config

import (
	"net/url"
	"strings"
)

// Sanitize returns a copy of the config with sensitive fields masked.
//
// This is used for logging configuration without exposing secrets.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg
	sanitized.Server.HTTP.CORSOrigins = append([]string(nil), cfg.Server.HTTP.CORSOrigins...)
	sanitized.Server.HTTP.MetricsAllowList = append([]string(nil), cfg.Server.HTTP.MetricsAllowList...)
	sanitized.Server.HTTP.TrustedProxies = append([]string(nil), cfg.Server.HTTP.TrustedProxies...)

	if sanitized.Storage.Postgres.DSN != "" {
		sanitized.Storage.Postgres.DSN = maskDSN(sanitized.Storage.Postgres.DSN)
	}

	return &sanitized
}

// maskDSN hides the password of a URL-style DSN, or the password=
// field of a keyword/value DSN.
func maskDSN(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" && u.User != nil {
		return u.Redacted()
	}

	fields := strings.Fields(dsn)
	for i, f := range fields {
		if strings.HasPrefix(strings.ToLower(f), "password=") {
			fields[i] = "password=****"
		}
	}
	return strings.Join(fields, " ")
}
