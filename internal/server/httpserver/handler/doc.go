// Package handler provides HTTP request handlers for the gymdesk API.
//
// Handlers are grouped by resource:
//
//   - auth.go: login, logout, token validation and password change
//   - trainee.go: trainee registration, profile and trainings
//   - trainer.go: trainer registration, profile and trainings
//   - training.go: trainings and training types
//   - health.go: health and readiness checks
//
// All handlers follow a consistent pattern: parse the request, call a
// core service, then write the envelope or map the DomainError code to
// an HTTP status.
package handler
