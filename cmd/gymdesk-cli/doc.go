// Package main provides the entry point for gymdesk-cli.
//
// The CLI talks to gymdesk-server over HTTP:
//
//   - login, logout and whoami
//   - trainee and trainer registration and profiles
//   - training scheduling and listing
//
// Usage:
//
//	gymdesk-cli [global flags] command [flags]
//	gymdesk-cli --server http://127.0.0.1:8080 login -u john.smith
//	gymdesk-cli -o json trainee trainings --from 2024-01-01
package main
