// Package main provides the entry point for gymdesk-server.
//
// The server exposes the gym management API over HTTP:
//
//   - Trainee, trainer and training management
//   - Token login, logout and validation (X-Auth-Token header)
//   - Health, readiness and Prometheus metrics endpoints
//
// Usage:
//
//	gymdesk-server [flags]
//	gymdesk-server -config /path/to/config.yaml
//	gymdesk-server -config /path/to/config.yaml -migrate up
//
// The server loads configuration, opens the configured storage engine,
// wires the services and serves until SIGINT or SIGTERM.
package main
