// Package config provides gymdesk-cli configuration.
//
// The CLI keeps a small YAML file, ~/.gymdesk/cli.yaml, holding the
// server URL, the preferred output format and the token of the last
// login. Flags and GYMDESK_* environment variables override the file.
package config
