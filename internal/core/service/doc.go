// Package service provides the domain services of GymDesk.
//
// Services hold business rules and orchestrate domain models. They
// declare the storage interfaces they depend on, so storage engines are
// injected and tests can swap them out.
//
// This package contains:
//
//   - SessionService: opaque bearer token issue, validation, resolution
//     and revocation
//   - AuthService: login, logout, token introspection, password change
//   - CredentialService: username and password generation, hashing
//   - TraineeService, TrainerService, TrainingService,
//     TrainingTypeService: gym profile and schedule operations
//
// Services are safe for concurrent use.
package service
