// Package domain defines the core domain models for GymDesk.
//
// Domain models are plain values without IO dependencies or framework
// coupling. This package contains:
//
//   - Session: binding between a hashed bearer token and a username
//   - User, Trainee, Trainer: gym members and staff
//   - Training, TrainingType: scheduled sessions and their catalogue
//   - Errors: coded DomainError values shared by every layer
//
// Entities validate themselves; persistence and transport live elsewhere.
package domain
