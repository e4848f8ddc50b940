// Package domain defines the core domain models for SnapKeep.
//
// Domain models are pure value objects without IO dependencies or
// framework coupling. This package contains:
//
//   - BackupRecord: one ledger entry per backup attempt, with its
//     status state machine and terminal-field invariant
//   - SnapshotDocument: the in-memory aggregation of all data stores
//   - Envelope: the on-disk wrapper of an encrypted artifact
//   - Errors: coded domain errors shared by service and transport layers
package domain
