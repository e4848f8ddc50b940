// Package service provides domain services for SnapKeep.
//
// Domain services contain the business logic and orchestrate operations
// across storage components. They define interfaces for their storage
// dependencies, allowing for dependency injection and testability.
//
// This package contains:
//
//   - BackupService: backup lifecycle orchestration, restore, deletion,
//     retention and stuck-attempt reporting
//
// Services are safe for concurrent use. All state lives in the ledger and
// the artifact directory; nothing is cached between calls.
package service
