// Package logger provides structured logging for GymDesk.
//
// The package is organised as:
//
//   - logger.go: slog handler configuration and the package-level default
//   - context.go: context-aware logging with request IDs and usernames
//   - redact.go: sensitive data redaction
//
// Features:
//
//   - JSON and text output formats
//   - Log level filtering with runtime changes
//   - Automatic sensitive data masking
package logger
