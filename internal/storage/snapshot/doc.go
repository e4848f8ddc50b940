// Package snapshot builds point-in-time snapshots of the data documents and
// persists them as backup artifacts.
//
// An artifact is one file in the backup directory:
//
//	backup-<RFC3339Nano UTC, ':' and '.' replaced by '-'>-<id[:8]>.json
//
// holding either the snapshot JSON verbatim or, for encrypted backups, an
// envelope {"encrypted": hex, "iv": hex, "checksum": hex}. Artifacts are
// written to a temporary file, synced and renamed into place so a reader
// never observes a partial file.
package snapshot
