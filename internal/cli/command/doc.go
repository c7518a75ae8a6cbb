// Package command provides CLI command definitions for gymdesk-cli.
//
// This package defines all CLI commands using urfave/cli/v2:
//
//   - root.go: App, global flags and the per-invocation environment
//   - auth.go: login, logout and whoami
//   - trainee.go: trainee subcommand group
//   - trainer.go: trainer subcommand group
//   - training.go: training creation and the training type catalogue
//   - version.go: build information
//
// Commands follow a consistent pattern of parsing flags, calling the
// server through connection.HTTPClient, and formatting output.
package command
